// Package store implements the item record store on SQLite. Each row is
// read and written as a whole document keyed by id; SQLite's per-statement
// atomicity serializes individual writes, but two concurrent read-modify-write
// sequences on the same item can still lose one of the updates. That race is
// accepted by the callers.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkoblar/sizzle/internal/model"
)

// ErrNotFound is returned when no item exists under the requested id.
var ErrNotFound = errors.New("item not found")

// Items is a document-style item store backed by SQLite.
type Items struct {
	DB *sql.DB
}

const itemColumns = `id, owner_id, name, manufacturer, description, category, intensity,
	image_path, image_hash, likes, dislikes, liked_by, disliked_by, created_at, updated_at`

// Find returns the item with the given id.
func (s *Items) Find(ctx context.Context, id string) (*model.Item, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// List returns all items, newest first.
func (s *Items) List(ctx context.Context) ([]model.Item, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Create validates and inserts a new item, assigning it an id.
func (s *Items) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	item.ID = uuid.NewString()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	likedBy, dislikedBy, err := marshalSets(item)
	if err != nil {
		return nil, err
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OwnerID, item.Name, item.Manufacturer, item.Description,
		item.Category, item.Intensity, item.ImagePath, item.ImageHash,
		item.Likes, item.Dislikes, likedBy, dislikedBy, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return s.Find(ctx, item.ID)
}

// Save validates and overwrites the stored document for item.ID.
func (s *Items) Save(ctx context.Context, item *model.Item) (*model.Item, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	likedBy, dislikedBy, err := marshalSets(item)
	if err != nil {
		return nil, err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE items SET name = ?, manufacturer = ?, description = ?, category = ?,
		 intensity = ?, image_path = ?, image_hash = ?, likes = ?, dislikes = ?,
		 liked_by = ?, disliked_by = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name, item.Manufacturer, item.Description, item.Category,
		item.Intensity, item.ImagePath, item.ImageHash, item.Likes, item.Dislikes,
		likedBy, dislikedBy, time.Now().UTC(), item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("saving item: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, item.ID)
	}

	return s.Find(ctx, item.ID)
}

// Delete removes the item record.
func (s *Items) Delete(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var likedBy, dislikedBy string
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.Manufacturer, &item.Description,
		&item.Category, &item.Intensity, &item.ImagePath, &item.ImageHash,
		&item.Likes, &item.Dislikes, &likedBy, &dislikedBy,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(likedBy), &item.LikedBy); err != nil {
		return nil, fmt.Errorf("decoding liked_by: %w", err)
	}
	if err := json.Unmarshal([]byte(dislikedBy), &item.DislikedBy); err != nil {
		return nil, fmt.Errorf("decoding disliked_by: %w", err)
	}
	if item.LikedBy == nil {
		item.LikedBy = []string{}
	}
	if item.DislikedBy == nil {
		item.DislikedBy = []string{}
	}
	return item, nil
}

func marshalSets(item *model.Item) (string, string, error) {
	likedBy, err := marshalSet(item.LikedBy)
	if err != nil {
		return "", "", err
	}
	dislikedBy, err := marshalSet(item.DislikedBy)
	if err != nil {
		return "", "", err
	}
	return likedBy, dislikedBy, nil
}

func marshalSet(set []string) (string, error) {
	if set == nil {
		set = []string{}
	}
	data, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("encoding membership set: %w", err)
	}
	return string(data), nil
}
