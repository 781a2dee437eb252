package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fidbaq/contexts/feedback/post-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/post-service/domain/errors"
	"fidbaq/contexts/feedback/post-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu     sync.RWMutex
	posts  map[string]entities.Post
	boards map[string]entities.BoardRef
}

func NewStore(seed []entities.Post) *Store {
	posts := make(map[string]entities.Post, len(seed))
	for _, post := range seed {
		posts[post.PostID] = post
	}
	return &Store{
		posts:  posts,
		boards: make(map[string]entities.BoardRef),
	}
}

// SetBoard seeds the board projection used for access checks.
func (s *Store) SetBoard(board entities.BoardRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board.BoardID = strings.TrimSpace(board.BoardID)
	board.OwnerID = strings.TrimSpace(board.OwnerID)
	s.boards[board.BoardID] = board
}

func (s *Store) GetBoard(_ context.Context, boardID string) (entities.BoardRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[strings.TrimSpace(boardID)]
	if !ok {
		return entities.BoardRef{}, domainerrors.ErrBoardNotFound
	}
	return board, nil
}

func (s *Store) ListPostsByBoard(_ context.Context, boardID string) ([]entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Post, 0)
	for _, post := range s.posts {
		if post.BoardID == strings.TrimSpace(boardID) {
			items = append(items, post)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].PostID > items[j].PostID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetPost(_ context.Context, postID string) (entities.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[strings.TrimSpace(postID)]
	if !ok {
		return entities.Post{}, domainerrors.ErrPostNotFound
	}
	return post, nil
}

func (s *Store) CreatePost(_ context.Context, post entities.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[post.BoardID]; !ok {
		return domainerrors.ErrBoardNotFound
	}
	if _, exists := s.posts[post.PostID]; exists {
		return domainerrors.ErrInvalidPostInput
	}
	s.posts[post.PostID] = post
	return nil
}

func (s *Store) UpdatePostStatus(_ context.Context, postID string, status entities.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[strings.TrimSpace(postID)]
	if !ok {
		return domainerrors.ErrPostNotFound
	}
	post.Status = status
	s.posts[post.PostID] = post
	return nil
}

func (s *Store) DeletePost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[strings.TrimSpace(postID)]; !ok {
		return domainerrors.ErrPostNotFound
	}
	delete(s.posts, strings.TrimSpace(postID))
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
