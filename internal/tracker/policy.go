package tracker

import (
	"context"

	"autopost/internal/storage"
)

// Eligible implements the pipeline selection policy: a source is eligible
// when it has never been published.
func (s *Store) Eligible(ctx context.Context, role storage.Role, key string) (bool, error) {
	published, err := s.IsPublished(ctx, role, key)
	if err != nil {
		return false, err
	}
	return !published, nil
}
