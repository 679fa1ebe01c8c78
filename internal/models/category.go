package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType is the fixed top-level taxonomy bucket. A category's
// parent, when set, must belong to the same type, so the three buckets
// form disjoint trees.
type CategoryType string

const (
	CategoryPrinted        CategoryType = "printed_publications"
	CategoryAudioVideo     CategoryType = "audio_video_publications"
	CategorySocialArtistic CategoryType = "social_artistic_publications"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryPrinted, CategoryAudioVideo, CategorySocialArtistic:
		return true
	}
	return false
}

// Category represents a node in the hierarchical content taxonomy.
// Publications can have at most one category assigned.
type Category struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Description  string       `json:"description"`
	CategoryType CategoryType `json:"category_type"`
	ParentID     *uuid.UUID   `json:"parent_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children         []Category `json:"children,omitempty"`
	Depth            int        `json:"depth"`
	PublicationCount int        `json:"publication_count"`
}
