package postgresadapter

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"fidbaq/contexts/feedback/comment-service/domain/entities"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement gorm builds so tests can assert on
// column names without a live database.
type sqlRecorder struct {
	mu         sync.Mutex
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T, prefix string) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.statements) - 1; i >= 0; i-- {
		if strings.HasPrefix(r.statements[i], prefix) {
			return r.statements[i]
		}
	}
	t.Fatalf("no %q statement recorded in %v", prefix, r.statements)
	return ""
}

func newDryRunRepository(t *testing.T) (*Repository, *sqlRecorder) {
	t.Helper()
	recorder := &sqlRecorder{}
	gdb, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=fidbaq dbname=fidbaq sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               recorder,
	})
	if err != nil {
		t.Fatalf("open dry-run gorm: %v", err)
	}
	return NewRepository(gdb, nil), recorder
}

func TestCommentWritesUseAuthorColumns(t *testing.T) {
	repo, recorder := newDryRunRepository(t)
	ctx := context.Background()
	created := time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC)

	err := repo.CreateComment(ctx, entities.Comment{
		CommentID: "comment-1",
		PostID:    "post-1",
		Content:   "hello",
		Author:    entities.Author{UserID: "user-1", Email: "u1@example.com", Name: "U1"},
		CreatedAt: created,
		UpdatedAt: created,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	insert := recorder.last(t, "INSERT")
	for _, column := range []string{`"author_id"`, `"author_name"`, `"author_email"`} {
		if !strings.Contains(insert, column) {
			t.Fatalf("insert must write %s: %s", column, insert)
		}
	}
	if strings.Contains(insert, "user_") {
		t.Fatalf("insert must not reference user_* columns: %s", insert)
	}

	_ = repo.UpdateCommentContent(ctx, "comment-1", "user-1", "edited", created)
	if update := recorder.last(t, "UPDATE"); !strings.Contains(update, "author_id = ") {
		t.Fatalf("update must be scoped by author_id: %s", update)
	}

	_ = repo.DeleteComment(ctx, "comment-1", "user-1")
	if del := recorder.last(t, "DELETE"); !strings.Contains(del, "author_id = ") {
		t.Fatalf("delete must be scoped by author_id: %s", del)
	}
}

func TestGetPostJoinsBoardVisibility(t *testing.T) {
	repo, recorder := newDryRunRepository(t)
	if _, err := repo.GetPost(context.Background(), "post-1"); err != nil {
		t.Fatalf("get post: %v", err)
	}
	query := recorder.last(t, "SELECT")
	for _, fragment := range []string{"boards.owner_id", "boards.is_public", "JOIN boards ON boards.id = posts.board_id"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("post lookup must select %q: %s", fragment, query)
		}
	}
}

func TestCommentModelRoundTripsAuthor(t *testing.T) {
	signedIn := commentModelFromEntity(entities.Comment{
		CommentID: "c1",
		Author:    entities.Author{UserID: "user-1", Email: "u1@example.com", Name: "U1"},
	}).toEntity()
	if signedIn.Author.UserID != "user-1" || signedIn.Author.Name != "U1" || signedIn.Author.Email != "u1@example.com" {
		t.Fatalf("unexpected signed-in author %+v", signedIn.Author)
	}

	anonymous := commentModelFromEntity(entities.Comment{
		CommentID: "c2",
		Author:    entities.Author{Name: "Visitor"},
	})
	if anonymous.AuthorID != nil || deref(anonymous.AuthorName) != "Visitor" {
		t.Fatalf("unexpected anonymous row %+v", anonymous)
	}
	if !anonymous.toEntity().Author.Anonymous() {
		t.Fatal("row without author_id must read back as anonymous")
	}
}
