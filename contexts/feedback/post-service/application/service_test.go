package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fidbaq/contexts/feedback/post-service/adapters/memory"
	"fidbaq/contexts/feedback/post-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/post-service/domain/errors"
	"fidbaq/contexts/feedback/post-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func newFixture() (Service, *memory.Store) {
	store := memory.NewStore(nil)
	store.SetBoard(entities.BoardRef{BoardID: "public", OwnerID: "owner-1", IsPublic: true})
	store.SetBoard(entities.BoardRef{BoardID: "private", OwnerID: "owner-1", IsPublic: false})
	return Service{
		Repo:  store,
		Clock: fixedClock{now: time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)},
		IDGen: store,
	}, store
}

func TestCreatePostAnonymousRequiresName(t *testing.T) {
	service, _ := newFixture()
	_, err := service.CreatePost(context.Background(), "public", entities.Author{}, ports.CreatePostInput{Title: "Dark mode"})
	if !errors.Is(err, domainerrors.ErrInvalidPostInput) {
		t.Fatalf("expected ErrInvalidPostInput, got %v", err)
	}

	post, err := service.CreatePost(context.Background(), "public", entities.Author{}, ports.CreatePostInput{
		Title:       " Dark mode ",
		AuthorName:  "Sam",
		AuthorEmail: "sam@example.com",
	})
	if err != nil {
		t.Fatalf("anonymous create failed: %v", err)
	}
	if post.Title != "Dark mode" || post.Status != entities.StatusPending || post.VoteCount != 0 {
		t.Fatalf("unexpected post %+v", post)
	}
	if !post.Author.Anonymous() || post.Author.Name != "Sam" {
		t.Fatalf("unexpected author %+v", post.Author)
	}
}

func TestCreatePostSignedInIgnoresTypedName(t *testing.T) {
	service, _ := newFixture()
	post, err := service.CreatePost(context.Background(), "public", entities.Author{UserID: "user-7"}, ports.CreatePostInput{
		Title:      "Export to CSV",
		AuthorName: "Someone Else",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if post.Author.UserID != "user-7" || post.Author.Name != "" {
		t.Fatalf("signed-in authors are stored by reference only, got %+v", post.Author)
	}
}

func TestCreatePostValidation(t *testing.T) {
	service, _ := newFixture()
	author := entities.Author{UserID: "user-1"}
	cases := map[string]ports.CreatePostInput{
		"empty title":      {Title: "  "},
		"long title":       {Title: strings.Repeat("t", entities.MaxTitleLength+1)},
		"long description": {Title: "ok", Description: strings.Repeat("d", entities.MaxDescriptionLength+1)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := service.CreatePost(context.Background(), "public", author, input); !errors.Is(err, domainerrors.ErrInvalidPostInput) {
				t.Fatalf("expected ErrInvalidPostInput, got %v", err)
			}
		})
	}
	if _, err := service.CreatePost(context.Background(), "private", author, ports.CreatePostInput{Title: "x"}); !errors.Is(err, domainerrors.ErrBoardNotFound) {
		t.Fatalf("expected private board to be hidden, got %v", err)
	}
}

func TestUpdatePostStatusOwnerOnly(t *testing.T) {
	service, store := newFixture()
	post, err := service.CreatePost(context.Background(), "public", entities.Author{UserID: "user-1"}, ports.CreatePostInput{Title: "Idea"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.UpdatePostStatus(context.Background(), post.PostID, "user-1", "completed"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for post author, got %v", err)
	}
	if _, err := service.UpdatePostStatus(context.Background(), post.PostID, "", "completed"); !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := service.UpdatePostStatus(context.Background(), post.PostID, "owner-1", "shipped"); !errors.Is(err, domainerrors.ErrInvalidPostInput) {
		t.Fatalf("expected ErrInvalidPostInput for unknown status, got %v", err)
	}
	if _, err := service.UpdatePostStatus(context.Background(), "missing", "owner-1", "completed"); !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}

	updated, err := service.UpdatePostStatus(context.Background(), post.PostID, "owner-1", "in_progress")
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	stored, _ := store.GetPost(context.Background(), post.PostID)
	if updated.Status != entities.StatusInProgress || stored.Status != entities.StatusInProgress {
		t.Fatalf("status not persisted: %+v", stored)
	}
}

func TestDeletePostOwnerOnly(t *testing.T) {
	service, store := newFixture()
	post, _ := service.CreatePost(context.Background(), "public", entities.Author{}, ports.CreatePostInput{Title: "Idea", AuthorName: "Ana"})

	if err := service.DeletePost(context.Background(), post.PostID, "user-2"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.DeletePost(context.Background(), post.PostID, "owner-1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := store.GetPost(context.Background(), post.PostID); !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("post should be gone, got %v", err)
	}
}
