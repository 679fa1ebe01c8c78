package handlers

import (
	"strings"
	"testing"

	"kalem/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidatePublication(t *testing.T) {
	tests := []struct {
		name      string
		pub       models.Publication
		wantError bool
	}{
		{
			"valid book",
			models.Publication{Kind: models.KindBook, Title: "Deneme", Book: &models.BookFields{BookType: models.BookTheoretical}},
			false,
		},
		{
			"empty title",
			models.Publication{Kind: models.KindBook, Title: "  ", Book: &models.BookFields{BookType: models.BookText}},
			true,
		},
		{
			"title too long",
			models.Publication{Kind: models.KindBook, Title: strings.Repeat("a", 301), Book: &models.BookFields{BookType: models.BookText}},
			true,
		},
		{
			"missing payload",
			models.Publication{Kind: models.KindPaper, Title: "Paper"},
			true,
		},
		{
			"wrong kind for payload",
			models.Publication{Kind: models.KindPaper, Title: "Paper", Book: &models.BookFields{BookType: models.BookText}},
			true,
		},
		{
			"invalid subtype",
			models.Publication{Kind: models.KindBook, Title: "Book", Book: &models.BookFields{BookType: "novel"}},
			true,
		},
		{
			"too many tags",
			models.Publication{
				Kind: models.KindArticle, Title: "Tagged",
				Tags:    make([]string, 31),
				Article: &models.ArticleFields{ArticleType: models.ArticleBlogPost},
			},
			true,
		},
		{
			"empty tag",
			models.Publication{
				Kind: models.KindArticle, Title: "Tagged",
				Tags:    []string{"ok", " "},
				Article: &models.ArticleFields{ArticleType: models.ArticleBlogPost},
			},
			true,
		},
		{
			"valid media",
			models.Publication{
				Kind: models.KindMediaPublication, Title: "Show",
				Media: &models.MediaFields{MediaType: models.MediaTVShow, YouTubeURL: "https://youtube.com/watch?v=x"},
			},
			false,
		},
		{
			"unknown kind",
			models.Publication{Kind: "podcast", Title: "x"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePublication(&tt.pub)
			if tt.wantError && err == nil {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		author    *string
		email     *string
		isGuest   bool
		wantError bool
	}{
		{"user comment", "Nice article", nil, nil, false, false},
		{"guest with name", "Nice article", strPtr("Guest"), nil, true, false},
		{"guest without name", "Nice article", nil, nil, true, true},
		{"guest blank name", "Nice article", strPtr("  "), nil, true, true},
		{"empty content", "  ", strPtr("Guest"), nil, true, true},
		{"too long", strings.Repeat("a", 1001), strPtr("Guest"), nil, true, true},
		{"exactly max", strings.Repeat("a", 1000), strPtr("Guest"), nil, true, false},
		{"bad email", "Hello", strPtr("Guest"), strPtr("not-an-email"), true, true},
		{"good email", "Hello", strPtr("Guest"), strPtr("guest@example.com"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateComment(tt.content, tt.author, tt.email, tt.isGuest)
			if tt.wantError && err == nil {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateCategory(t *testing.T) {
	if err := validateCategory("Books", models.CategoryPrinted); err != nil {
		t.Errorf("valid category rejected: %v", err)
	}
	if err := validateCategory("", models.CategoryPrinted); err == nil {
		t.Error("empty name accepted")
	}
	if err := validateCategory("Books", "fiction"); err == nil {
		t.Error("unknown category type accepted")
	}
}

func TestValidateUser(t *testing.T) {
	if err := validateUser("user@example.com", "long enough pw", "Ada", true); err != nil {
		t.Errorf("valid user rejected: %v", err)
	}
	if err := validateUser("not-an-email", "long enough pw", "Ada", true); err == nil {
		t.Error("bad email accepted")
	}
	if err := validateUser("user@example.com", "short", "Ada", true); err == nil {
		t.Error("short password accepted")
	}
	if err := validateUser("user@example.com", "", "Ada", false); err != nil {
		t.Errorf("password skipped but still rejected: %v", err)
	}
	if err := validateUser("user@example.com", "long enough pw", "", true); err == nil {
		t.Error("missing first name accepted")
	}
}
