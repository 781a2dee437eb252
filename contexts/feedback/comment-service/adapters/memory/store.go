package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fidbaq/contexts/feedback/comment-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/comment-service/domain/errors"
	"fidbaq/contexts/feedback/comment-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	comments map[string]entities.Comment
	posts    map[string]entities.PostRef
}

func NewStore(seed []entities.Comment) *Store {
	comments := make(map[string]entities.Comment, len(seed))
	for _, comment := range seed {
		comments[comment.CommentID] = comment
	}
	return &Store{
		comments: comments,
		posts:    make(map[string]entities.PostRef),
	}
}

// SetPost seeds the post projection comments attach to.
func (s *Store) SetPost(post entities.PostRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.PostID = strings.TrimSpace(post.PostID)
	s.posts[post.PostID] = post
}

func (s *Store) GetPost(_ context.Context, postID string) (entities.PostRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[strings.TrimSpace(postID)]
	if !ok {
		return entities.PostRef{}, domainerrors.ErrPostNotFound
	}
	return post, nil
}

func (s *Store) ListCommentsByPost(_ context.Context, postID string) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.PostID == strings.TrimSpace(postID) {
			items = append(items, comment)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CommentID < items[j].CommentID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetComment(_ context.Context, commentID string) (entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[strings.TrimSpace(commentID)]
	if !ok {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	return comment, nil
}

func (s *Store) CreateComment(_ context.Context, comment entities.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[comment.PostID]; !ok {
		return domainerrors.ErrPostNotFound
	}
	if _, exists := s.comments[comment.CommentID]; exists {
		return domainerrors.ErrInvalidCommentInput
	}
	s.comments[comment.CommentID] = comment
	return nil
}

func (s *Store) UpdateCommentContent(_ context.Context, commentID string, authorID string, content string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, err := s.authoredLocked(commentID, authorID)
	if err != nil {
		return err
	}
	comment.Content = content
	comment.UpdatedAt = updatedAt.UTC()
	s.comments[comment.CommentID] = comment
	return nil
}

func (s *Store) DeleteComment(_ context.Context, commentID string, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, err := s.authoredLocked(commentID, authorID)
	if err != nil {
		return err
	}
	delete(s.comments, comment.CommentID)
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) authoredLocked(commentID string, authorID string) (entities.Comment, error) {
	comment, ok := s.comments[strings.TrimSpace(commentID)]
	if !ok {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	if !comment.WrittenBy(authorID) {
		return entities.Comment{}, domainerrors.ErrForbidden
	}
	return comment, nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
