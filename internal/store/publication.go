package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kalem/internal/models"
)

// PublicationStore handles all publication-related database operations.
// The five publication kinds share the unified publications table,
// differentiated by the kind column; only the payload columns belonging
// to a row's kind are populated.
type PublicationStore struct {
	db *sql.DB
}

// NewPublicationStore creates a new PublicationStore with the given
// database connection.
func NewPublicationStore(db *sql.DB) *PublicationStore {
	return &PublicationStore{db: db}
}

const publicationColumns = `id, kind, title, subtitle, slug, content, status, tags,
	allow_comments, is_featured, view_count, category_id,
	book_type, paper_type, media_type, work_type, article_type,
	pdf_file, conference, conference_date, youtube_url, duration,
	meter, rhyme_scheme, word_count, reading_time, venue, event_date, video_url, audio_url,
	doi, journal, published_date, authors, keywords, like_count,
	created_at, updated_at`

// payload carries the kind-specific column values in flat form, as they
// are stored. flattenPayload and assemblePayload convert between this
// and the tagged-union shape on models.Publication.
type payload struct {
	bookType       *string
	paperType      *string
	mediaType      *string
	workType       *string
	articleType    *string
	pdfFile        *string
	conference     *string
	conferenceDate *time.Time
	youtubeURL     *string
	duration       *string
	meter          *string
	rhymeScheme    *string
	wordCount      *int
	readingTime    *int
	venue          *string
	eventDate      *time.Time
	videoURL       *string
	audioURL       *string
	doi            *string
	journal        *string
	publishedDate  *time.Time
	authorsJSON    []byte
	keywordsJSON   []byte
	likeCount      int64
}

// flattenPayload extracts the kind payload from p into flat column values.
func flattenPayload(p *models.Publication) (payload, error) {
	var pl payload
	switch p.Kind {
	case models.KindBook:
		if p.Book == nil {
			return pl, fmt.Errorf("book payload missing")
		}
		t := string(p.Book.BookType)
		pl.bookType = &t
		pl.pdfFile = p.Book.PDFFile
	case models.KindPaper:
		if p.Paper == nil {
			return pl, fmt.Errorf("paper payload missing")
		}
		t := string(p.Paper.PaperType)
		pl.paperType = &t
		pl.pdfFile = p.Paper.PDFFile
		pl.conference = p.Paper.Conference
		pl.conferenceDate = p.Paper.ConferenceDate
	case models.KindMediaPublication:
		if p.Media == nil {
			return pl, fmt.Errorf("media payload missing")
		}
		t := string(p.Media.MediaType)
		pl.mediaType = &t
		pl.youtubeURL = &p.Media.YouTubeURL
		pl.duration = p.Media.Duration
	case models.KindCreativeWork:
		if p.CreativeWork == nil {
			return pl, fmt.Errorf("creative work payload missing")
		}
		w := p.CreativeWork
		t := string(w.WorkType)
		pl.workType = &t
		pl.meter = w.Meter
		pl.rhymeScheme = w.RhymeScheme
		pl.wordCount = w.WordCount
		pl.readingTime = w.ReadingTime
		pl.venue = w.Venue
		pl.eventDate = w.EventDate
		pl.pdfFile = w.PDFFile
		pl.videoURL = w.VideoURL
		pl.audioURL = w.AudioURL
	case models.KindArticle:
		if p.Article == nil {
			return pl, fmt.Errorf("article payload missing")
		}
		a := p.Article
		t := string(a.ArticleType)
		pl.articleType = &t
		pl.doi = a.DOI
		pl.journal = a.Journal
		pl.publishedDate = a.PublishedDate
		pl.likeCount = a.LikeCount
		var err error
		if pl.authorsJSON, err = marshalStrings(a.Authors); err != nil {
			return pl, err
		}
		if pl.keywordsJSON, err = marshalStrings(a.Keywords); err != nil {
			return pl, err
		}
	default:
		return pl, fmt.Errorf("unknown publication kind %q", p.Kind)
	}
	return pl, nil
}

// assemblePayload builds the kind payload struct on p from flat column values.
func assemblePayload(p *models.Publication, pl payload) error {
	switch p.Kind {
	case models.KindBook:
		p.Book = &models.BookFields{PDFFile: pl.pdfFile}
		if pl.bookType != nil {
			p.Book.BookType = models.BookType(*pl.bookType)
		}
	case models.KindPaper:
		p.Paper = &models.PaperFields{
			PDFFile:        pl.pdfFile,
			Conference:     pl.conference,
			ConferenceDate: pl.conferenceDate,
		}
		if pl.paperType != nil {
			p.Paper.PaperType = models.PaperType(*pl.paperType)
		}
	case models.KindMediaPublication:
		p.Media = &models.MediaFields{Duration: pl.duration}
		if pl.mediaType != nil {
			p.Media.MediaType = models.MediaType(*pl.mediaType)
		}
		if pl.youtubeURL != nil {
			p.Media.YouTubeURL = *pl.youtubeURL
		}
	case models.KindCreativeWork:
		p.CreativeWork = &models.CreativeWorkFields{
			Meter:       pl.meter,
			RhymeScheme: pl.rhymeScheme,
			WordCount:   pl.wordCount,
			ReadingTime: pl.readingTime,
			Venue:       pl.venue,
			EventDate:   pl.eventDate,
			PDFFile:     pl.pdfFile,
			VideoURL:    pl.videoURL,
			AudioURL:    pl.audioURL,
		}
		if pl.workType != nil {
			p.CreativeWork.WorkType = models.WorkType(*pl.workType)
		}
	case models.KindArticle:
		authors, err := unmarshalStrings(pl.authorsJSON)
		if err != nil {
			return err
		}
		keywords, err := unmarshalStrings(pl.keywordsJSON)
		if err != nil {
			return err
		}
		p.Article = &models.ArticleFields{
			DOI:           pl.doi,
			Journal:       pl.journal,
			PublishedDate: pl.publishedDate,
			Authors:       authors,
			Keywords:      keywords,
			LikeCount:     pl.likeCount,
		}
		if pl.articleType != nil {
			p.Article.ArticleType = models.ArticleType(*pl.articleType)
		}
	default:
		return fmt.Errorf("unknown publication kind %q", p.Kind)
	}
	return nil
}

// marshalStrings encodes a string slice as JSONB, normalizing nil to [].
func marshalStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return data, nil
}

// unmarshalStrings decodes a JSONB string list, treating NULL as empty.
func unmarshalStrings(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	return values, nil
}

// scanPublication scans a full publications row into a Publication with
// its kind payload assembled.
func scanPublication(scanner interface{ Scan(...any) error }) (*models.Publication, error) {
	var (
		p        models.Publication
		tagsJSON []byte
		pl       payload
	)
	err := scanner.Scan(
		&p.ID, &p.Kind, &p.Title, &p.Subtitle, &p.Slug, &p.Content, &p.Status, &tagsJSON,
		&p.AllowComments, &p.IsFeatured, &p.ViewCount, &p.CategoryID,
		&pl.bookType, &pl.paperType, &pl.mediaType, &pl.workType, &pl.articleType,
		&pl.pdfFile, &pl.conference, &pl.conferenceDate, &pl.youtubeURL, &pl.duration,
		&pl.meter, &pl.rhymeScheme, &pl.wordCount, &pl.readingTime, &pl.venue, &pl.eventDate, &pl.videoURL, &pl.audioURL,
		&pl.doi, &pl.journal, &pl.publishedDate, &pl.authorsJSON, &pl.keywordsJSON, &pl.likeCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if err := assemblePayload(&p, pl); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new publication and returns it with the generated ID.
// The caller is responsible for ensuring the kind payload matches Kind.
func (s *PublicationStore) Create(p *models.Publication) (*models.Publication, error) {
	pl, err := flattenPayload(p)
	if err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}
	tagsJSON, err := marshalStrings(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO publications (
			kind, title, subtitle, slug, content, status, tags,
			allow_comments, is_featured, category_id,
			book_type, paper_type, media_type, work_type, article_type,
			pdf_file, conference, conference_date, youtube_url, duration,
			meter, rhyme_scheme, word_count, reading_time, venue, event_date, video_url, audio_url,
			doi, journal, published_date, authors, keywords, like_count
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34
		)
		RETURNING `+publicationColumns,
		p.Kind, p.Title, p.Subtitle, p.Slug, p.Content, p.Status, tagsJSON,
		p.AllowComments, p.IsFeatured, p.CategoryID,
		pl.bookType, pl.paperType, pl.mediaType, pl.workType, pl.articleType,
		pl.pdfFile, pl.conference, pl.conferenceDate, pl.youtubeURL, pl.duration,
		pl.meter, pl.rhymeScheme, pl.wordCount, pl.readingTime, pl.venue, pl.eventDate, pl.videoURL, pl.audioURL,
		pl.doi, pl.journal, pl.publishedDate, pl.authorsJSON, pl.keywordsJSON, pl.likeCount,
	)
	result, err := scanPublication(row)
	if err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}
	return result, nil
}

// Update modifies an existing publication's editable fields and payload.
// Status is intentionally not updated here; status changes go through
// SetStatus so the transition guard is a single atomic statement.
func (s *PublicationStore) Update(p *models.Publication) error {
	pl, err := flattenPayload(p)
	if err != nil {
		return fmt.Errorf("update publication: %w", err)
	}
	tagsJSON, err := marshalStrings(p.Tags)
	if err != nil {
		return fmt.Errorf("update publication: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE publications SET
			title = $1, subtitle = $2, slug = $3, content = $4, tags = $5,
			allow_comments = $6, is_featured = $7, category_id = $8,
			book_type = $9, paper_type = $10, media_type = $11, work_type = $12, article_type = $13,
			pdf_file = $14, conference = $15, conference_date = $16, youtube_url = $17, duration = $18,
			meter = $19, rhyme_scheme = $20, word_count = $21, reading_time = $22,
			venue = $23, event_date = $24, video_url = $25, audio_url = $26,
			doi = $27, journal = $28, published_date = $29, authors = $30, keywords = $31,
			updated_at = NOW()
		WHERE id = $32
	`, p.Title, p.Subtitle, p.Slug, p.Content, tagsJSON,
		p.AllowComments, p.IsFeatured, p.CategoryID,
		pl.bookType, pl.paperType, pl.mediaType, pl.workType, pl.articleType,
		pl.pdfFile, pl.conference, pl.conferenceDate, pl.youtubeURL, pl.duration,
		pl.meter, pl.rhymeScheme, pl.wordCount, pl.readingTime,
		pl.venue, pl.eventDate, pl.videoURL, pl.audioURL,
		pl.doi, pl.journal, pl.publishedDate, pl.authorsJSON, pl.keywordsJSON,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update publication: %w", err)
	}
	return nil
}

// FindByID retrieves a publication by its UUID regardless of status.
// Returns nil if not found.
func (s *PublicationStore) FindByID(id uuid.UUID) (*models.Publication, error) {
	row := s.db.QueryRow(`SELECT `+publicationColumns+` FROM publications WHERE id = $1`, id)
	p, err := scanPublication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find publication by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a publication by its slug regardless of status.
// Returns nil if not found.
func (s *PublicationStore) FindBySlug(slug string) (*models.Publication, error) {
	row := s.db.QueryRow(`SELECT `+publicationColumns+` FROM publications WHERE slug = $1`, slug)
	p, err := scanPublication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find publication by slug: %w", err)
	}
	return p, nil
}

// Delete removes a publication by ID. Comments cascade at the schema level.
func (s *PublicationStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM publications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}
	return nil
}

// SetStatus moves a publication to status "to", but only if its current
// status is one of "from". The guard lives in the WHERE clause so a
// concurrent transition can never partially apply. Returns true when the
// row was updated.
func (s *PublicationStore) SetStatus(id uuid.UUID, to models.PublicationStatus, from ...models.PublicationStatus) (bool, error) {
	if len(from) == 0 {
		return false, fmt.Errorf("set status: no source statuses given")
	}

	args := []any{to, id}
	placeholders := make([]string, len(from))
	for i, st := range from {
		args = append(args, st)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}

	res, err := s.db.Exec(`
		UPDATE publications SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN (`+strings.Join(placeholders, ", ")+`)
	`, args...)
	if err != nil {
		return false, fmt.Errorf("set publication status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set publication status: %w", err)
	}
	return n > 0, nil
}

// IncrementViewCount bumps the view counter by one. The increment happens
// inside the UPDATE so concurrent public reads never lose updates.
func (s *PublicationStore) IncrementViewCount(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE publications SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// IncrementLikeCount bumps an article's like counter by one, atomically.
// Returns false if the id does not reference an article.
func (s *PublicationStore) IncrementLikeCount(id uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE publications SET like_count = like_count + 1
		WHERE id = $1 AND kind = 'article'
	`, id)
	if err != nil {
		return false, fmt.Errorf("increment like count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment like count: %w", err)
	}
	return n > 0, nil
}

// Filter narrows a publication listing. Zero values mean "no constraint"
// except Kind, which is always required.
type Filter struct {
	Kind       models.PublicationKind
	Status     models.PublicationStatus
	CategoryID *uuid.UUID
	Subtype    string // matched against the kind's discriminator column
	Search     string // case-insensitive match on title/subtitle/content
	Featured   *bool
	Page       int // 1-based; values < 1 are treated as 1
	Limit      int
}

// subtypeColumn maps a publication kind to its discriminator column.
func subtypeColumn(kind models.PublicationKind) string {
	switch kind {
	case models.KindBook:
		return "book_type"
	case models.KindPaper:
		return "paper_type"
	case models.KindMediaPublication:
		return "media_type"
	case models.KindCreativeWork:
		return "work_type"
	case models.KindArticle:
		return "article_type"
	}
	return ""
}

// List returns a page of publications matching the filter, newest first,
// along with the total number of matches.
func (s *PublicationStore) List(f Filter) ([]models.Publication, int, error) {
	where := []string{"kind = $1"}
	args := []any{f.Kind}

	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.Subtype != "" {
		if col := subtypeColumn(f.Kind); col != "" {
			args = append(args, f.Subtype)
			where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(title ILIKE $%d OR subtitle ILIKE $%d OR content ILIKE $%d)", n, n, n))
	}
	if f.Featured != nil {
		args = append(args, *f.Featured)
		where = append(where, fmt.Sprintf("is_featured = $%d", len(args)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM publications WHERE `+clause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count publications: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.Query(
		`SELECT `+publicationColumns+` FROM publications WHERE `+clause+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list publications: %w", err)
	}
	defer rows.Close()

	var items []models.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan publication: %w", err)
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

// DefaultPageSize is the listing page size when the caller omits a limit.
const DefaultPageSize = 20

// MaxPageSize caps the listing page size.
const MaxPageSize = 100
