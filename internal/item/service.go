// Package item orchestrates record writes with asset store operations so
// that every create, update, and delete either fully commits (record plus
// asset) or fully rolls back, leaving the prior committed state untouched.
package item

import (
	"context"
	"errors"
	"path"

	"github.com/rs/zerolog/log"

	"github.com/mkoblar/sizzle/internal/asset"
	"github.com/mkoblar/sizzle/internal/model"
	"github.com/mkoblar/sizzle/internal/vote"
)

// ErrImageRequired is returned when a create arrives without a staged asset.
var ErrImageRequired = errors.New("image required")

// RecordStore is the keyed document store holding item records. Writes of a
// single record are atomic; there is no cross-record transaction, so the
// service sequences asset operations around record writes instead.
type RecordStore interface {
	Find(ctx context.Context, id string) (*model.Item, error)
	Create(ctx context.Context, item *model.Item) (*model.Item, error)
	Save(ctx context.Context, item *model.Item) (*model.Item, error)
	Delete(ctx context.Context, id string) error
}

// Service is the item lifecycle manager.
type Service struct {
	records RecordStore
	assets  *asset.Store
}

// NewService creates a Service over the given record and asset stores.
func NewService(records RecordStore, assets *asset.Store) *Service {
	return &Service{records: records, assets: assets}
}

// Create persists a new item owned by ownerID with zeroed vote state. The
// staged asset is committed only after the record write succeeds; on a failed
// write it is discarded so no orphan remains.
func (s *Service) Create(ctx context.Context, ownerID string, draft model.Item, staged *asset.Staged) (*model.Item, error) {
	if staged == nil {
		return nil, ErrImageRequired
	}

	draft.ID = ""
	draft.OwnerID = ownerID
	draft.ImagePath = imagePath(staged.Name)
	draft.ImageHash = staged.Hash
	draft.Likes = 0
	draft.Dislikes = 0
	draft.LikedBy = []string{}
	draft.DislikedBy = []string{}

	created, err := s.records.Create(ctx, &draft)
	if err != nil {
		s.discard(staged.Name)
		return nil, err
	}

	if err := s.assets.Commit(staged.Name); err != nil {
		return nil, err
	}

	return created, nil
}

// Update merges the patch into current and persists the result. With a new
// staged asset, the new image is committed and the old one removed only after
// the record save succeeds; a failed save discards the staged asset and
// leaves both the record and the old committed asset untouched.
func (s *Service) Update(ctx context.Context, current *model.Item, patch model.ItemPatch, staged *asset.Staged) (*model.Item, error) {
	updated := *current
	patch.Apply(&updated)

	if staged == nil {
		return s.records.Save(ctx, &updated)
	}

	oldName := path.Base(current.ImagePath)
	updated.ImagePath = imagePath(staged.Name)
	updated.ImageHash = staged.Hash

	saved, err := s.records.Save(ctx, &updated)
	if err != nil {
		s.discard(staged.Name)
		return nil, err
	}

	if err := s.assets.Commit(staged.Name); err != nil {
		return nil, err
	}
	if err := s.assets.Remove(oldName); err != nil {
		log.Warn().Err(err).Str("asset", oldName).Msg("failed to remove replaced asset")
	}

	return saved, nil
}

// Delete removes the committed asset, then the record. If the process dies
// between the two steps the record survives pointing at a removed asset;
// that window is accepted rather than guarded.
func (s *Service) Delete(ctx context.Context, current *model.Item) error {
	if err := s.assets.Remove(path.Base(current.ImagePath)); err != nil {
		return err
	}
	return s.records.Delete(ctx, current.ID)
}

// Vote applies the caller's vote to the item and persists the result. A
// failed save discards the in-memory transition; nothing is retried.
func (s *Service) Vote(ctx context.Context, current *model.Item, callerID string, v vote.Vote) (*model.Item, string, error) {
	updated, msg, err := vote.Apply(*current, callerID, v)
	if err != nil {
		return nil, "", err
	}

	saved, err := s.records.Save(ctx, &updated)
	if err != nil {
		return nil, "", err
	}

	return saved, msg, nil
}

func (s *Service) discard(name string) {
	if err := s.assets.Discard(name); err != nil {
		log.Warn().Err(err).Str("asset", name).Msg("failed to discard staged asset")
	}
}

func imagePath(name string) string {
	return "/images/" + name
}
