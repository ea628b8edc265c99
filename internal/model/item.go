package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrValidation marks a client-caused field error. The record store rejects
// writes that fail validation with an error wrapping this sentinel.
var ErrValidation = errors.New("validation failed")

// Item represents a user-submitted rateable record with an attached image.
// Likes/Dislikes mirror the sizes of LikedBy/DislikedBy, and the two sets are
// disjoint; only the vote engine mutates them.
type Item struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"userId"`
	Name         string    `json:"name"`
	Manufacturer string    `json:"manufacturer"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Intensity    int       `json:"intensity"`
	ImagePath    string    `json:"imageUrl"`
	ImageHash    string    `json:"-"`
	Likes        int       `json:"likes"`
	Dislikes     int       `json:"dislikes"`
	LikedBy      []string  `json:"usersLiked"`
	DislikedBy   []string  `json:"usersDisliked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Field length limits.
const (
	MaxNameLen        = 50
	MaxDescriptionLen = 500
)

var (
	nameChars         = regexp.MustCompile(`^[a-zA-Z0-9 '-]*$`)
	manufacturerChars = regexp.MustCompile(`^[a-zA-Z0-9 '()-]*$`)
)

// Validate checks the field constraints and the vote invariants. It returns
// an error wrapping ErrValidation on the first violation.
func (i *Item) Validate() error {
	if i.OwnerID == "" {
		return fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if err := checkText("name", i.Name, MaxNameLen, nameChars); err != nil {
		return err
	}
	if err := checkText("manufacturer", i.Manufacturer, MaxNameLen, manufacturerChars); err != nil {
		return err
	}
	if i.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if len(i.Description) > MaxDescriptionLen {
		return fmt.Errorf("%w: description must not exceed %d characters", ErrValidation, MaxDescriptionLen)
	}
	if err := checkText("category", i.Category, MaxNameLen, nameChars); err != nil {
		return err
	}
	if i.Intensity < 1 || i.Intensity > 10 {
		return fmt.Errorf("%w: intensity must be between 1 and 10", ErrValidation)
	}
	if i.ImagePath == "" {
		return fmt.Errorf("%w: image is required", ErrValidation)
	}
	if i.Likes != len(i.LikedBy) || i.Dislikes != len(i.DislikedBy) {
		return fmt.Errorf("%w: vote counters out of sync with membership", ErrValidation)
	}
	for _, id := range i.LikedBy {
		for _, other := range i.DislikedBy {
			if id == other {
				return fmt.Errorf("%w: caller %s holds both vote states", ErrValidation, id)
			}
		}
	}
	return nil
}

func checkText(field, value string, maxLen int, allowed *regexp.Regexp) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrValidation, field, maxLen)
	}
	if !allowed.MatchString(value) {
		return fmt.Errorf("%w: %s contains invalid characters", ErrValidation, field)
	}
	return nil
}
