package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"kalem/internal/models"
)

func TestNestComments(t *testing.T) {
	rootA := uuid.New()
	rootB := uuid.New()
	replyA1 := uuid.New()
	replyA2 := uuid.New()
	replyA1a := uuid.New()
	orphan := uuid.New()
	missing := uuid.New()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(minutes int) time.Time { return base.Add(time.Duration(minutes) * time.Minute) }

	flat := []models.Comment{
		{ID: rootA, CreatedAt: at(0)},
		{ID: rootB, CreatedAt: at(1)},
		{ID: replyA1, ParentID: &rootA, CreatedAt: at(2)},
		{ID: replyA2, ParentID: &rootA, CreatedAt: at(3)},
		{ID: replyA1a, ParentID: &replyA1, CreatedAt: at(4)},
		{ID: orphan, ParentID: &missing, CreatedAt: at(5)},
	}

	tree := nestComments(flat)

	if len(tree) != 3 {
		t.Fatalf("top level = %d comments, want 3 (two roots plus promoted orphan)", len(tree))
	}
	if tree[0].ID != rootA || tree[1].ID != rootB || tree[2].ID != orphan {
		t.Fatal("top-level order is not chronological")
	}

	a := tree[0]
	if len(a.Replies) != 2 {
		t.Fatalf("rootA replies = %d, want 2", len(a.Replies))
	}
	if a.Replies[0].ID != replyA1 || a.Replies[1].ID != replyA2 {
		t.Error("replies are not in chronological order")
	}
	if len(a.Replies[0].Replies) != 1 || a.Replies[0].Replies[0].ID != replyA1a {
		t.Error("nested reply missing from its parent")
	}
}

func TestNestCommentsEmpty(t *testing.T) {
	if got := nestComments(nil); len(got) != 0 {
		t.Errorf("nesting nil = %v, want empty", got)
	}
}

func TestCommentLifecycle(t *testing.T) {
	db := testDB(t)
	pubs := NewPublicationStore(db)
	comments := NewCommentStore(db)

	slug := "test-comment-lifecycle"
	cleanPublications(t, db, slug)
	t.Cleanup(func() { cleanPublications(t, db, slug) })

	pub, err := pubs.Create(&models.Publication{
		Kind:    models.KindArticle,
		Title:   "Commented Article",
		Slug:    slug,
		Content: "Body.",
		Status:  models.StatusPublished,
		Article: &models.ArticleFields{ArticleType: models.ArticleBlogPost},
	})
	if err != nil {
		t.Fatalf("create publication: %v", err)
	}

	name := "Guest Reader"
	created, err := comments.Create(&models.Comment{
		PublicationID: pub.ID,
		AuthorName:    &name,
		Content:       "First!",
		Status:        models.CommentApproved, // must be ignored
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if created.Status != models.CommentPending {
		t.Errorf("new comment status = %s, want pending", created.Status)
	}

	// Pending comments are invisible to the public listing.
	visible, err := comments.ListForPublication(pub.ID, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("public listing shows %d comments before approval, want 0", len(visible))
	}

	if err := comments.SetStatus(created.ID, models.CommentApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// Approving again is a no-op.
	if err := comments.SetStatus(created.ID, models.CommentApproved); err != nil {
		t.Fatalf("re-approve: %v", err)
	}

	visible, err = comments.ListForPublication(pub.ID, false)
	if err != nil {
		t.Fatalf("list after approval: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != created.ID {
		t.Fatalf("public listing = %v, want the approved comment", visible)
	}

	// Deleting the publication cascades to its comments.
	if err := pubs.Delete(pub.ID); err != nil {
		t.Fatalf("delete publication: %v", err)
	}
	gone, err := comments.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find after cascade: %v", err)
	}
	if gone != nil {
		t.Error("comment survived publication deletion")
	}
}

func TestCommentDeletePromotesReplies(t *testing.T) {
	db := testDB(t)
	pubs := NewPublicationStore(db)
	comments := NewCommentStore(db)

	slug := "test-comment-promotion"
	cleanPublications(t, db, slug)
	t.Cleanup(func() { cleanPublications(t, db, slug) })

	pub, err := pubs.Create(&models.Publication{
		Kind:    models.KindArticle,
		Title:   "Threaded Article",
		Slug:    slug,
		Content: "Body.",
		Status:  models.StatusPublished,
		Article: &models.ArticleFields{ArticleType: models.ArticleBlogPost},
	})
	if err != nil {
		t.Fatalf("create publication: %v", err)
	}

	name := "Guest"
	parent, err := comments.Create(&models.Comment{
		PublicationID: pub.ID,
		AuthorName:    &name,
		Content:       "Parent comment",
	})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	reply, err := comments.Create(&models.Comment{
		PublicationID: pub.ID,
		ParentID:      &parent.ID,
		AuthorName:    &name,
		Content:       "Reply comment",
	})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}

	if err := comments.Delete(parent.ID); err != nil {
		t.Fatalf("delete parent: %v", err)
	}

	got, err := comments.FindByID(reply.ID)
	if err != nil {
		t.Fatalf("find reply: %v", err)
	}
	if got == nil {
		t.Fatal("reply deleted along with its parent")
	}
	if got.ParentID != nil {
		t.Error("reply still references the deleted parent")
	}
}
