package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PublicationKind discriminates the five publication types sharing the
// unified publications table. Exactly one kind payload on Publication is
// non-nil, matching this field.
type PublicationKind string

const (
	KindArticle          PublicationKind = "article"
	KindBook             PublicationKind = "book"
	KindPaper            PublicationKind = "paper"
	KindMediaPublication PublicationKind = "media_publication"
	KindCreativeWork     PublicationKind = "creative_work"
)

// Valid reports whether k is a known publication kind.
func (k PublicationKind) Valid() bool {
	switch k {
	case KindArticle, KindBook, KindPaper, KindMediaPublication, KindCreativeWork:
		return true
	}
	return false
}

// PublicationStatus represents the publishing state of a publication.
// The pipeline is one-way: draft → published → archived (or draft →
// archived directly). Nothing leaves archived.
type PublicationStatus string

const (
	StatusDraft     PublicationStatus = "draft"
	StatusPublished PublicationStatus = "published"
	StatusArchived  PublicationStatus = "archived"
)

// Valid reports whether s is a known publication status.
func (s PublicationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine permits moving from
// s to next.
func (s PublicationStatus) CanTransitionTo(next PublicationStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusPublished || next == StatusArchived
	case StatusPublished:
		return next == StatusArchived
	}
	return false
}

// BookType categorizes books.
type BookType string

const (
	BookTheoretical BookType = "theoretical"
	BookText        BookType = "text"
	BookTranslation BookType = "translation"
	BookDiaryMemoir BookType = "diary_memoir"
	BookEBook       BookType = "e_book"
)

// Valid reports whether t is a known book type.
func (t BookType) Valid() bool {
	switch t {
	case BookTheoretical, BookText, BookTranslation, BookDiaryMemoir, BookEBook:
		return true
	}
	return false
}

// PaperType categorizes academic papers.
type PaperType string

const (
	PaperMethodologyHistory PaperType = "methodology_history"
	PaperSocialSciences     PaperType = "social_sciences"
	PaperCriticism          PaperType = "criticism"
)

// Valid reports whether t is a known paper type.
func (t PaperType) Valid() bool {
	switch t {
	case PaperMethodologyHistory, PaperSocialSciences, PaperCriticism:
		return true
	}
	return false
}

// MediaType categorizes media publications.
type MediaType string

const (
	MediaTVShow       MediaType = "tv_show"
	MediaRadioShow    MediaType = "radio_show"
	MediaMosqueLesson MediaType = "mosque_lesson"
)

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTVShow, MediaRadioShow, MediaMosqueLesson:
		return true
	}
	return false
}

// WorkType categorizes creative works.
type WorkType string

const (
	WorkPoem         WorkType = "poem"
	WorkEssay        WorkType = "essay"
	WorkPresentation WorkType = "presentation"
)

// Valid reports whether t is a known creative work type.
func (t WorkType) Valid() bool {
	switch t {
	case WorkPoem, WorkEssay, WorkPresentation:
		return true
	}
	return false
}

// ArticleType categorizes articles.
type ArticleType string

const (
	ArticleAcademicPaper ArticleType = "academic_paper"
	ArticleBlogPost      ArticleType = "blog_post"
	ArticleResearch      ArticleType = "research"
	ArticleEssay         ArticleType = "essay"
	ArticleReview        ArticleType = "review"
)

// Valid reports whether t is a known article type.
func (t ArticleType) Valid() bool {
	switch t {
	case ArticleAcademicPaper, ArticleBlogPost, ArticleResearch, ArticleEssay, ArticleReview:
		return true
	}
	return false
}

// BookFields holds the book-specific payload.
type BookFields struct {
	BookType BookType `json:"book_type"`
	PDFFile  *string  `json:"pdf_file,omitempty"`
}

// PaperFields holds the paper-specific payload.
type PaperFields struct {
	PaperType      PaperType  `json:"paper_type"`
	PDFFile        *string    `json:"pdf_file,omitempty"`
	Conference     *string    `json:"conference,omitempty"`
	ConferenceDate *time.Time `json:"conference_date,omitempty"`
}

// MediaFields holds the media-publication payload. YouTubeURL is the
// primary content of a media publication; a media publication cannot be
// published without it.
type MediaFields struct {
	MediaType  MediaType `json:"media_type"`
	YouTubeURL string    `json:"youtube_url"`
	Duration   *string   `json:"duration,omitempty"`
}

// CreativeWorkFields holds the creative-work payload. Which optional
// fields apply depends on WorkType: poems carry meter and rhyme scheme,
// essays carry derived reading stats, presentations carry event details
// and media links.
type CreativeWorkFields struct {
	WorkType    WorkType   `json:"work_type"`
	Meter       *string    `json:"meter,omitempty"`
	RhymeScheme *string    `json:"rhyme_scheme,omitempty"`
	WordCount   *int       `json:"word_count,omitempty"`
	ReadingTime *int       `json:"reading_time,omitempty"`
	Venue       *string    `json:"venue,omitempty"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	PDFFile     *string    `json:"pdf_file,omitempty"`
	VideoURL    *string    `json:"video_url,omitempty"`
	AudioURL    *string    `json:"audio_url,omitempty"`
}

// ArticleFields holds the article-specific payload.
type ArticleFields struct {
	ArticleType   ArticleType `json:"article_type"`
	DOI           *string     `json:"doi,omitempty"`
	Journal       *string     `json:"journal,omitempty"`
	PublishedDate *time.Time  `json:"published_date,omitempty"`
	Authors       []string    `json:"authors,omitempty"`
	Keywords      []string    `json:"keywords,omitempty"`
	LikeCount     int64       `json:"like_count"`
}

// Publication is the tagged union over all publication kinds. Common
// fields live at the top level; exactly one of Book, Paper, Media,
// CreativeWork, Article is non-nil, matching Kind.
type Publication struct {
	ID            uuid.UUID         `json:"id"`
	Kind          PublicationKind   `json:"kind"`
	Title         string            `json:"title"`
	Subtitle      *string           `json:"subtitle,omitempty"`
	Slug          string            `json:"slug"`
	Content       string            `json:"content"`
	Status        PublicationStatus `json:"status"`
	Tags          []string          `json:"tags"`
	AllowComments bool              `json:"allow_comments"`
	IsFeatured    bool              `json:"is_featured"`
	ViewCount     int64             `json:"view_count"`
	CategoryID    *uuid.UUID        `json:"category_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	Book         *BookFields         `json:"book,omitempty"`
	Paper        *PaperFields        `json:"paper,omitempty"`
	Media        *MediaFields        `json:"media,omitempty"`
	CreativeWork *CreativeWorkFields `json:"creative_work,omitempty"`
	Article      *ArticleFields      `json:"article,omitempty"`

	// Virtual field populated by detail handlers: the content rendered
	// to HTML. Never stored.
	ContentHTML string `json:"content_html,omitempty"`
}

// IsPublished returns true if the publication is in published status.
func (p *Publication) IsPublished() bool {
	return p.Status == StatusPublished
}

// PublishBlocker returns an empty string when the publication has
// everything it needs to be published, or a human-readable reason why
// publishing must fail. Title is always required; the primary content is
// the body text for most kinds and the YouTube URL for media publications.
func (p *Publication) PublishBlocker() string {
	if strings.TrimSpace(p.Title) == "" {
		return "title is required to publish"
	}
	if p.Kind == KindMediaPublication {
		if p.Media == nil || strings.TrimSpace(p.Media.YouTubeURL) == "" {
			return "youtube_url is required to publish a media publication"
		}
		return ""
	}
	if strings.TrimSpace(p.Content) == "" {
		return "content is required to publish"
	}
	return ""
}

// wordsPerMinute is the reading speed used to derive essay reading time.
const wordsPerMinute = 200

// ComputeReadingStats derives the word count (whitespace-separated
// tokens) and reading time in minutes (ceil of words/200) for essay
// content. Both are recomputed on every write, never edited directly.
func ComputeReadingStats(content string) (wordCount, readingTime int) {
	wordCount = len(strings.Fields(content))
	if wordCount == 0 {
		return 0, 0
	}
	readingTime = int(math.Ceil(float64(wordCount) / float64(wordsPerMinute)))
	return wordCount, readingTime
}
