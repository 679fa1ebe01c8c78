package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus represents the moderation state of a comment. New
// comments always start pending and are moderated to approved or
// rejected by an admin.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

// Valid reports whether s is a known comment status.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentPending, CommentApproved, CommentRejected:
		return true
	}
	return false
}

// MaxCommentLen is the maximum accepted comment length in characters.
const MaxCommentLen = 1000

// Comment is a threaded comment on a publication. Identity is exactly
// one of: a registered user (UserID set) or a guest (AuthorName set,
// email/website optional). ParentID, when set, references a comment on
// the same publication.
type Comment struct {
	ID            uuid.UUID     `json:"id"`
	PublicationID uuid.UUID     `json:"publication_id"`
	ParentID      *uuid.UUID    `json:"parent_id,omitempty"`
	UserID        *uuid.UUID    `json:"user_id,omitempty"`
	AuthorName    *string       `json:"author_name,omitempty"`
	AuthorEmail   *string       `json:"author_email,omitempty"`
	AuthorWebsite *string       `json:"author_website,omitempty"`
	Content       string        `json:"content"`
	Status        CommentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Virtual field populated by store listing methods: direct replies,
	// nested by ParentID.
	Replies []Comment `json:"replies,omitempty"`
}

// IsGuest returns true if the comment was left by an anonymous visitor.
func (c *Comment) IsGuest() bool {
	return c.UserID == nil
}
