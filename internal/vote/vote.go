// Package vote implements the like/dislike state machine for items.
//
// A caller holds at most one vote state per item. Every transition into a
// vote state first clears the opposite membership, so the liked and disliked
// sets never overlap, and repeating the same vote is a no-op.
package vote

import (
	"errors"
	"slices"

	"github.com/mkoblar/sizzle/internal/model"
)

// Vote is a caller's requested vote state. Request bodies encode it as an
// integer: 1 like, -1 dislike, 0 neutral.
type Vote int

const (
	Dislike Vote = -1
	Neutral Vote = 0
	Like    Vote = 1
)

// ErrInvalidVote is returned for a vote value outside {-1, 0, 1}.
var ErrInvalidVote = errors.New("invalid vote value")

// Parse validates a raw vote value from a request body.
func Parse(raw int) (Vote, error) {
	switch Vote(raw) {
	case Like, Dislike, Neutral:
		return Vote(raw), nil
	}
	return 0, ErrInvalidVote
}

// Apply folds the caller's requested vote into a copy of the item and returns
// it along with a human-facing status message. The input item is never
// mutated; persistence is the caller's concern.
func Apply(item model.Item, callerID string, v Vote) (model.Item, string, error) {
	item.LikedBy = slices.Clone(item.LikedBy)
	item.DislikedBy = slices.Clone(item.DislikedBy)

	switch v {
	case Like:
		if slices.Contains(item.LikedBy, callerID) {
			return item, "item already liked", nil
		}
		if slices.Contains(item.DislikedBy, callerID) {
			removeDislike(&item, callerID)
		}
		item.LikedBy = append(item.LikedBy, callerID)
		item.Likes++
		return item, "item liked", nil

	case Dislike:
		if slices.Contains(item.DislikedBy, callerID) {
			return item, "item already disliked", nil
		}
		if slices.Contains(item.LikedBy, callerID) {
			removeLike(&item, callerID)
		}
		item.DislikedBy = append(item.DislikedBy, callerID)
		item.Dislikes++
		return item, "item disliked", nil

	case Neutral:
		if slices.Contains(item.LikedBy, callerID) {
			removeLike(&item, callerID)
			return item, "like removed", nil
		}
		if slices.Contains(item.DislikedBy, callerID) {
			removeDislike(&item, callerID)
			return item, "dislike removed", nil
		}
		return item, "no existing vote", nil
	}

	return item, "", ErrInvalidVote
}

func removeLike(item *model.Item, callerID string) {
	item.LikedBy = slices.DeleteFunc(item.LikedBy, func(id string) bool { return id == callerID })
	item.Likes--
}

func removeDislike(item *model.Item, callerID string) {
	item.DislikedBy = slices.DeleteFunc(item.DislikedBy, func(id string) bool { return id == callerID })
	item.Dislikes--
}
