package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"kalem/internal/apperr"
	"kalem/internal/models"
)

// Validation limits for publication and taxonomy fields.
const (
	maxTitleLen    = 300
	maxSubtitleLen = 300
	maxContentLen  = 500_000
	maxTagLen      = 100
	maxTagCount    = 30
	maxNameLen     = 200
	maxDescLen     = 2_000
	maxURLLen      = 2_000
	minPasswordLen = 8
)

// validatePublication checks the common publication fields. Kind-specific
// payload checks live in validatePayload.
func validatePublication(p *models.Publication) error {
	if strings.TrimSpace(p.Title) == "" {
		return apperr.ValidationField("title", "title is required")
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return apperr.ValidationField("title", "title is too long (max 300 characters)")
	}
	if p.Subtitle != nil && utf8.RuneCountInString(*p.Subtitle) > maxSubtitleLen {
		return apperr.ValidationField("subtitle", "subtitle is too long (max 300 characters)")
	}
	if utf8.RuneCountInString(p.Content) > maxContentLen {
		return apperr.ValidationField("content", "content is too long (max 500,000 characters)")
	}
	if len(p.Tags) > maxTagCount {
		return apperr.ValidationField("tags", "too many tags (max 30)")
	}
	for _, tag := range p.Tags {
		if strings.TrimSpace(tag) == "" {
			return apperr.ValidationField("tags", "tags must not be empty")
		}
		if utf8.RuneCountInString(tag) > maxTagLen {
			return apperr.ValidationField("tags", "tag is too long (max 100 characters)")
		}
	}
	return validatePayload(p)
}

// validatePayload checks that the payload matching the publication's kind
// is present and carries a valid subtype discriminator.
func validatePayload(p *models.Publication) error {
	switch p.Kind {
	case models.KindBook:
		if p.Book == nil {
			return apperr.ValidationField("book", "book payload is required")
		}
		if !p.Book.BookType.Valid() {
			return apperr.ValidationField("book_type", "unknown book type")
		}
	case models.KindPaper:
		if p.Paper == nil {
			return apperr.ValidationField("paper", "paper payload is required")
		}
		if !p.Paper.PaperType.Valid() {
			return apperr.ValidationField("paper_type", "unknown paper type")
		}
	case models.KindMediaPublication:
		if p.Media == nil {
			return apperr.ValidationField("media", "media payload is required")
		}
		if !p.Media.MediaType.Valid() {
			return apperr.ValidationField("media_type", "unknown media type")
		}
		if utf8.RuneCountInString(p.Media.YouTubeURL) > maxURLLen {
			return apperr.ValidationField("youtube_url", "URL is too long")
		}
	case models.KindCreativeWork:
		if p.CreativeWork == nil {
			return apperr.ValidationField("creative_work", "creative work payload is required")
		}
		if !p.CreativeWork.WorkType.Valid() {
			return apperr.ValidationField("work_type", "unknown work type")
		}
	case models.KindArticle:
		if p.Article == nil {
			return apperr.ValidationField("article", "article payload is required")
		}
		if !p.Article.ArticleType.Valid() {
			return apperr.ValidationField("article_type", "unknown article type")
		}
	default:
		return apperr.ValidationField("kind", "unknown publication kind")
	}
	return nil
}

// validateCategory checks category inputs. Parent/type consistency is
// checked separately against the stored parent.
func validateCategory(name string, categoryType models.CategoryType) error {
	if strings.TrimSpace(name) == "" {
		return apperr.ValidationField("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return apperr.ValidationField("name", "name is too long (max 200 characters)")
	}
	if !categoryType.Valid() {
		return apperr.ValidationField("category_type", "unknown category type")
	}
	return nil
}

// validateComment checks comment content and identity fields.
func validateComment(content string, authorName, authorEmail *string, isGuest bool) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return apperr.ValidationField("content", "content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLen {
		return apperr.ValidationField("content", "comment is too long (max 1000 characters)")
	}
	if isGuest {
		if authorName == nil || strings.TrimSpace(*authorName) == "" {
			return apperr.ValidationField("author_name", "author name is required for guest comments")
		}
		if utf8.RuneCountInString(*authorName) > maxNameLen {
			return apperr.ValidationField("author_name", "author name is too long (max 200 characters)")
		}
	}
	if authorEmail != nil && *authorEmail != "" {
		if _, err := mail.ParseAddress(*authorEmail); err != nil {
			return apperr.ValidationField("author_email", "invalid email address")
		}
	}
	return nil
}

// validateUser checks registration and account update inputs. Password
// rules apply only when a password is being set.
func validateUser(email, password, firstName string, checkPassword bool) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.ValidationField("email", "invalid email address")
	}
	if checkPassword && utf8.RuneCountInString(password) < minPasswordLen {
		return apperr.ValidationField("password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(firstName) == "" {
		return apperr.ValidationField("first_name", "first name is required")
	}
	if utf8.RuneCountInString(firstName) > maxNameLen {
		return apperr.ValidationField("first_name", "first name is too long (max 200 characters)")
	}
	return nil
}
