package store

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/mkoblar/sizzle/internal/db"
	"github.com/mkoblar/sizzle/internal/model"
)

func validItem() *model.Item {
	return &model.Item{
		OwnerID:      "alice",
		Name:         "Inferno",
		Manufacturer: "Hot Stuff Co",
		Description:  "Very hot indeed",
		Category:     "habanero",
		Intensity:    8,
		ImagePath:    "/images/item_1_abc.jpg",
		LikedBy:      []string{},
		DislikedBy:   []string{},
	}
}

func TestCreateAndFindItem(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}
	ctx := context.Background()

	created, err := items.Create(ctx, validItem())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected store-assigned id")
	}

	found, err := items.Find(ctx, created.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.Name != "Inferno" || found.OwnerID != "alice" {
		t.Errorf("unexpected item: %+v", found)
	}
	if found.Likes != 0 || found.Dislikes != 0 {
		t.Errorf("expected zeroed counters, got %+v", found)
	}
	if found.LikedBy == nil || found.DislikedBy == nil {
		t.Error("expected non-nil membership sets")
	}
}

func TestFindMissingItem(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}

	_, err := items.Find(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsInvalidItem(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}
	ctx := context.Background()

	bad := validItem()
	bad.Name = ""
	if _, err := items.Create(ctx, bad); !errors.Is(err, model.ErrValidation) {
		t.Errorf("missing name: expected ErrValidation, got %v", err)
	}

	bad = validItem()
	bad.Intensity = 11
	if _, err := items.Create(ctx, bad); !errors.Is(err, model.ErrValidation) {
		t.Errorf("intensity out of range: expected ErrValidation, got %v", err)
	}

	bad = validItem()
	bad.Name = "Inferno <script>"
	if _, err := items.Create(ctx, bad); !errors.Is(err, model.ErrValidation) {
		t.Errorf("disallowed characters: expected ErrValidation, got %v", err)
	}

	all, _ := items.List(ctx)
	if len(all) != 0 {
		t.Errorf("rejected creates left %d records behind", len(all))
	}
}

func TestSaveRoundTripsMembershipSets(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}
	ctx := context.Background()

	created, _ := items.Create(ctx, validItem())
	created.Likes = 2
	created.LikedBy = []string{"A", "B"}
	created.Dislikes = 1
	created.DislikedBy = []string{"C"}

	if _, err := items.Save(ctx, created); err != nil {
		t.Fatalf("Save: %v", err)
	}

	found, err := items.Find(ctx, created.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.Likes != 2 || !slices.Equal(found.LikedBy, []string{"A", "B"}) {
		t.Errorf("liked membership lost: %+v", found)
	}
	if found.Dislikes != 1 || !slices.Equal(found.DislikedBy, []string{"C"}) {
		t.Errorf("disliked membership lost: %+v", found)
	}
}

func TestSaveRejectsInconsistentVoteState(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}
	ctx := context.Background()

	created, _ := items.Create(ctx, validItem())
	created.Likes = 3 // no matching membership

	if _, err := items.Save(ctx, created); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation for desynced counters, got %v", err)
	}
}

func TestSaveMissingItem(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}

	ghost := validItem()
	ghost.ID = "no-such-id"
	if _, err := items.Save(context.Background(), ghost); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}
	ctx := context.Background()

	created, _ := items.Create(ctx, validItem())
	if err := items.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := items.Find(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := items.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestListItems(t *testing.T) {
	items := &Items{DB: db.NewTestDB(t)}
	ctx := context.Background()

	first := validItem()
	first.Name = "First"
	items.Create(ctx, first)

	second := validItem()
	second.Name = "Second"
	items.Create(ctx, second)

	all, err := items.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}
}
