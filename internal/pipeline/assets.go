package pipeline

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"autopost/internal/services/ffmpeg"
	"autopost/internal/storage"
)

// Asset tracks one source object through the run: discovered, downloaded,
// transformed, uploaded.
type Asset struct {
	Role            storage.Role
	Key             string
	LocalPath       string
	TransformedPath string
	DestKey         string
}

// ID identifies the asset in logs and failure summaries.
func (a Asset) ID() string {
	return string(a.Role) + "/" + a.Key
}

type assetFailure struct {
	asset Asset
	stage string
	err   error
}

func (f assetFailure) String() string {
	return fmt.Sprintf("%s: %s: %v", f.asset.ID(), f.stage, f.err)
}

// localName derives a unique download name for an asset. The role prefix
// keeps same-named keys from different roles apart; percent-escaping the
// key keeps distinct keys apart even when they differ only in slash
// placement.
func localName(role storage.Role, key string) string {
	return string(role) + "__" + url.PathEscape(strings.TrimPrefix(key, "/"))
}

// DestinationKey derives the deterministic destination key for a source
// object. Re-running the same source always yields the same key.
func DestinationKey(destPrefix string, role storage.Role, sourceKey string) string {
	base := path.Base(sourceKey)
	stem := strings.TrimSuffix(base, path.Ext(base))
	suffix := "-long.mp4"
	if role == storage.RoleShortsReels {
		suffix = "-short.mp4"
	}
	return destPrefix + stem + suffix
}

func profileForRole(role storage.Role) ffmpeg.Profile {
	if role == storage.RoleShortsReels {
		return ffmpeg.ProfileShort
	}
	return ffmpeg.ProfileLong
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
}

func isVideoKey(key string) bool {
	_, ok := videoExtensions[strings.ToLower(path.Ext(key))]
	return ok
}
