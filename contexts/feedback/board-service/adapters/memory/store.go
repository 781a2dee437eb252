package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fidbaq/contexts/feedback/board-service/domain/entities"
	domainerrors "fidbaq/contexts/feedback/board-service/domain/errors"
	"fidbaq/contexts/feedback/board-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu     sync.RWMutex
	boards map[string]entities.Board
}

func NewStore(seed []entities.Board) *Store {
	boards := make(map[string]entities.Board, len(seed))
	for _, board := range seed {
		boards[board.BoardID] = board
	}
	return &Store{boards: boards}
}

func (s *Store) ListBoardsByOwner(_ context.Context, ownerID string) ([]entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Board, 0)
	for _, board := range s.boards {
		if board.OwnerID == strings.TrimSpace(ownerID) {
			items = append(items, board)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].BoardID > items[j].BoardID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetBoard(_ context.Context, boardID string) (entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[strings.TrimSpace(boardID)]
	if !ok {
		return entities.Board{}, domainerrors.ErrBoardNotFound
	}
	return board, nil
}

func (s *Store) GetBoardByPublicLink(_ context.Context, publicLink string) (entities.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, board := range s.boards {
		if board.PublicLink == strings.TrimSpace(publicLink) {
			return board, nil
		}
	}
	return entities.Board{}, domainerrors.ErrBoardNotFound
}

func (s *Store) CountBoardsByOwner(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, board := range s.boards {
		if board.OwnerID == strings.TrimSpace(ownerID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateBoard(_ context.Context, board entities.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.boards[board.BoardID]; exists {
		return domainerrors.ErrInvalidBoardInput
	}
	for _, existing := range s.boards {
		if existing.PublicLink == board.PublicLink {
			return domainerrors.ErrPublicLinkConflict
		}
	}
	s.boards[board.BoardID] = board
	return nil
}

func (s *Store) UpdateBoard(_ context.Context, board entities.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.boards[board.BoardID]
	if !ok || existing.OwnerID != board.OwnerID {
		return domainerrors.ErrBoardNotFound
	}
	board.PublicLink = existing.PublicLink
	board.CreatedAt = existing.CreatedAt
	s.boards[board.BoardID] = board
	return nil
}

func (s *Store) DeleteBoard(_ context.Context, boardID string, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.boards[strings.TrimSpace(boardID)]
	if !ok || existing.OwnerID != strings.TrimSpace(ownerID) {
		return domainerrors.ErrBoardNotFound
	}
	delete(s.boards, existing.BoardID)
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
