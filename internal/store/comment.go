package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"kalem/internal/models"
)

// CommentStore manages threaded comments and their moderation state.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, publication_id, parent_id, user_id,
	author_name, author_email, author_website, content, status,
	created_at, updated_at`

// scanComment scans a row into a Comment struct.
func scanComment(scanner interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.PublicationID, &c.ParentID, &c.UserID,
		&c.AuthorName, &c.AuthorEmail, &c.AuthorWebsite, &c.Content, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new comment. Comments always start in pending status
// regardless of what the caller set, and authenticated comments never
// carry guest contact fields.
func (s *CommentStore) Create(c *models.Comment) (*models.Comment, error) {
	if !c.IsGuest() {
		c.AuthorEmail = nil
		c.AuthorWebsite = nil
	}
	row := s.db.QueryRow(`
		INSERT INTO comments (publication_id, parent_id, user_id,
			author_name, author_email, author_website, content, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING `+commentColumns,
		c.PublicationID, c.ParentID, c.UserID,
		c.AuthorName, c.AuthorEmail, c.AuthorWebsite, c.Content,
	)
	result, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return result, nil
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// SetStatus sets a comment's moderation status. Moderating a comment to
// the status it already has is a no-op, not an error.
func (s *CommentStore) SetStatus(id uuid.UUID, status models.CommentStatus) error {
	_, err := s.db.Exec(`
		UPDATE comments SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status <> $1
	`, status, id)
	if err != nil {
		return fmt.Errorf("set comment status: %w", err)
	}
	return nil
}

// ListForPublication returns the comment tree for a publication, oldest
// first. Public callers get approved comments only; admins may include
// unapproved ones. Replies whose parent is missing from the result set
// (deleted, or filtered out by moderation) are promoted to top level.
func (s *CommentStore) ListForPublication(publicationID uuid.UUID, includeUnapproved bool) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE publication_id = $1`
	if !includeUnapproved {
		query += ` AND status = 'approved'`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.Query(query, publicationID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var flat []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		flat = append(flat, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nestComments(flat), nil
}

// nestComments assembles a flat, chronologically ordered slice into a
// tree keyed on ParentID. Orphans become top-level comments. A reply is
// always created after its parent, so walking the slice in reverse
// attaches each comment to its parent with its own replies already
// complete.
func nestComments(flat []models.Comment) []models.Comment {
	index := make(map[uuid.UUID]int, len(flat))
	for i := range flat {
		index[flat[i].ID] = i
	}

	var rootIdx []int
	for i := len(flat) - 1; i >= 0; i-- {
		c := flat[i]
		if c.ParentID != nil {
			if j, ok := index[*c.ParentID]; ok && j != i {
				// Prepend to keep replies in chronological order.
				flat[j].Replies = append([]models.Comment{c}, flat[j].Replies...)
				continue
			}
		}
		rootIdx = append(rootIdx, i)
	}

	result := make([]models.Comment, 0, len(rootIdx))
	for k := len(rootIdx) - 1; k >= 0; k-- {
		result = append(result, flat[rootIdx[k]])
	}
	return result
}

// Delete removes a comment by ID. Replies are promoted to top level by
// the schema's ON DELETE SET NULL on parent_id.
func (s *CommentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// CountPending returns the number of comments awaiting moderation.
func (s *CommentStore) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending comments: %w", err)
	}
	return count, nil
}
