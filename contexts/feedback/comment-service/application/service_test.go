package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fidbaq/contexts/feedback/comment-service/adapters/memory"
	"fidbaq/contexts/feedback/comment-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/comment-service/domain/errors"
	"fidbaq/contexts/feedback/comment-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func newFixture(now time.Time) (Service, *memory.Store) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1", BoardID: "board-1", BoardOwnerID: "owner-1", BoardPublic: true})
	return Service{Repo: store, Clock: fixedClock{now: now}, IDGen: store}, store
}

func TestCreateCommentContentBounds(t *testing.T) {
	service, _ := newFixture(time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC))
	author := entities.Author{UserID: "user-1", Email: "u1@example.com", Name: "U1"}

	for name, content := range map[string]string{
		"blank":    "   ",
		"too long": strings.Repeat("x", entities.MaxContentLength+1),
	} {
		if _, err := service.CreateComment(context.Background(), "post-1", author, ports.CreateCommentInput{Content: content}); !errors.Is(err, domainerrors.ErrInvalidCommentInput) {
			t.Fatalf("%s: expected ErrInvalidCommentInput, got %v", name, err)
		}
	}

	comment, err := service.CreateComment(context.Background(), "post-1", author, ports.CreateCommentInput{
		Content: "  " + strings.Repeat("y", entities.MaxContentLength) + "  ",
	})
	if err != nil {
		t.Fatalf("500-character comment must be accepted: %v", err)
	}
	if len(comment.Content) != entities.MaxContentLength || comment.Author.Email != "u1@example.com" {
		t.Fatalf("unexpected comment %+v", comment)
	}
}

func TestCreateCommentAnonymousNeedsName(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())
	if _, err := service.CreateComment(context.Background(), "post-1", entities.Author{}, ports.CreateCommentInput{Content: "hi"}); !errors.Is(err, domainerrors.ErrInvalidCommentInput) {
		t.Fatalf("expected ErrInvalidCommentInput, got %v", err)
	}
	comment, err := service.CreateComment(context.Background(), "post-1", entities.Author{}, ports.CreateCommentInput{
		Content:    "hi",
		AuthorName: "Visitor",
	})
	if err != nil {
		t.Fatalf("anonymous comment failed: %v", err)
	}
	if !comment.Author.Anonymous() || comment.Author.Name != "Visitor" || comment.Author.Email != "" {
		t.Fatalf("unexpected author %+v", comment.Author)
	}
	if _, err := service.CreateComment(context.Background(), "missing", entities.Author{UserID: "u"}, ports.CreateCommentInput{Content: "hi"}); !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestListCommentsOldestFirst(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1", BoardID: "board-1", BoardOwnerID: "owner-1", BoardPublic: true})
	base := time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC)
	for i, content := range []string{"first", "second", "third"} {
		service := Service{Repo: store, Clock: fixedClock{now: base.Add(time.Duration(i) * time.Minute)}, IDGen: store}
		if _, err := service.CreateComment(context.Background(), "post-1", entities.Author{UserID: "u"}, ports.CreateCommentInput{Content: content}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	items, err := Service{Repo: store}.ListComments(context.Background(), "post-1", "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 3 || items[0].Content != "first" || items[2].Content != "third" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestNonAuthorCannotChangeComment(t *testing.T) {
	created := time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC)
	service, store := newFixture(created)
	comment, err := service.CreateComment(context.Background(), "post-1", entities.Author{UserID: "author"}, ports.CreateCommentInput{Content: "original"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := service.DeleteComment(context.Background(), comment.CommentID, "intruder"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
	if _, err := service.UpdateComment(context.Background(), comment.CommentID, "intruder", "hijacked"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on update, got %v", err)
	}
	if err := service.DeleteComment(context.Background(), comment.CommentID, ""); !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	stored, err := store.GetComment(context.Background(), comment.CommentID)
	if err != nil {
		t.Fatalf("comment must still exist: %v", err)
	}
	if stored != comment {
		t.Fatalf("comment row changed: %+v vs %+v", stored, comment)
	}
}

func TestAuthorEditsAndDeletes(t *testing.T) {
	service, store := newFixture(time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC))
	comment, _ := service.CreateComment(context.Background(), "post-1", entities.Author{UserID: "author"}, ports.CreateCommentInput{Content: "draft"})

	later := Service{Repo: store, Clock: fixedClock{now: time.Date(2026, time.May, 4, 13, 0, 0, 0, time.UTC)}, IDGen: store}
	updated, err := later.UpdateComment(context.Background(), comment.CommentID, "author", "  final  ")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Content != "final" || !updated.UpdatedAt.After(comment.UpdatedAt) {
		t.Fatalf("unexpected update %+v", updated)
	}
	if err := later.DeleteComment(context.Background(), comment.CommentID, "author"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := later.DeleteComment(context.Background(), comment.CommentID, "author"); !errors.Is(err, domainerrors.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound on second delete, got %v", err)
	}
}

func TestPrivateBoardCommentsHiddenFromNonOwners(t *testing.T) {
	service, store := newFixture(time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC))
	store.SetPost(entities.PostRef{PostID: "post-private", BoardID: "board-private", BoardOwnerID: "owner-1"})

	if _, err := service.CreateComment(context.Background(), "post-private", entities.Author{}, ports.CreateCommentInput{Content: "hi", AuthorName: "Visitor"}); !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("anonymous create on private board: expected ErrPostNotFound, got %v", err)
	}
	if _, err := service.CreateComment(context.Background(), "post-private", entities.Author{UserID: "user-3"}, ports.CreateCommentInput{Content: "hi"}); !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("non-owner create on private board: expected ErrPostNotFound, got %v", err)
	}
	if _, err := service.ListComments(context.Background(), "post-private", "user-3"); !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("non-owner list on private board: expected ErrPostNotFound, got %v", err)
	}

	if _, err := service.CreateComment(context.Background(), "post-private", entities.Author{UserID: "owner-1"}, ports.CreateCommentInput{Content: "note to self"}); err != nil {
		t.Fatalf("owner create failed: %v", err)
	}
	items, err := service.ListComments(context.Background(), "post-private", "owner-1")
	if err != nil {
		t.Fatalf("owner list failed: %v", err)
	}
	if len(items) != 1 || items[0].Content != "note to self" {
		t.Fatalf("unexpected items %+v", items)
	}
}
