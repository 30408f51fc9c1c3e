// Package storage defines role-addressed access to the object stores that
// hold source clips, published renditions, and supporting material.
//
// Callers never name buckets directly; they address objects by logical
// Role, resolved through the bucket mapping loaded at process start.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Role identifies a logical category of storage bucket.
type Role string

const (
	RoleAssets      Role = "assets"
	RoleLongVideos  Role = "long_videos"
	RoleShortsReels Role = "shorts_reels"
	RoleConfig      Role = "config"
)

// SourceRoles are the roles scanned for publishable clips, in discovery order.
var SourceRoles = []Role{RoleLongVideos, RoleShortsReels}

// ErrRoleNotMapped indicates a role has no bucket configured.
var ErrRoleNotMapped = errors.New("storage role not mapped to a bucket")

// Object describes one stored object within a role.
type Object struct {
	Role Role
	Key  string
	Size int64
}

// ObjectStore is the role-addressed storage contract the pipeline consumes.
type ObjectStore interface {
	// List returns the objects under prefix within the role's bucket.
	List(ctx context.Context, role Role, prefix string) ([]Object, error)
	// Download fetches an object to localPath, creating parent directories.
	Download(ctx context.Context, role Role, key, localPath string) error
	// Upload stores localPath under key in the role's bucket.
	Upload(ctx context.Context, role Role, key, localPath string) error
}

// RoleMap resolves roles to physical bucket names. It is populated once
// from configuration and immutable afterwards.
type RoleMap map[Role]string

// Bucket returns the bucket for role or ErrRoleNotMapped.
func (m RoleMap) Bucket(role Role) (string, error) {
	bucket, ok := m[role]
	if !ok || bucket == "" {
		return "", fmt.Errorf("%w: %s", ErrRoleNotMapped, role)
	}
	return bucket, nil
}

// Validate confirms every known role resolves.
func (m RoleMap) Validate() error {
	for _, role := range []Role{RoleAssets, RoleLongVideos, RoleShortsReels, RoleConfig} {
		if _, err := m.Bucket(role); err != nil {
			return err
		}
	}
	return nil
}
