package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	domainerrors "fidbaq/contexts/feedback/voting-engine/domain/errors"
	"fidbaq/contexts/feedback/voting-engine/ports"

	"github.com/google/uuid"
)

// Store keeps votes and post counters in maps. WithinPostLock holds the
// store mutex for the whole callback and stages writes on copies, so a failed
// callback leaves nothing behind.
type Store struct {
	mu sync.RWMutex

	votes map[string]entities.Vote
	posts map[string]entities.PostRef

	// FailCount, when set, is returned by CountUpvotes inside a lock.
	FailCount error
}

func NewStore(seed []entities.Vote) *Store {
	votes := make(map[string]entities.Vote, len(seed))
	for _, vote := range seed {
		votes[vote.VoteID] = vote
	}
	return &Store{
		votes: votes,
		posts: make(map[string]entities.PostRef),
	}
}

// SetPost seeds the post projection the engine locks and updates.
func (s *Store) SetPost(post entities.PostRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.PostID = strings.TrimSpace(post.PostID)
	post.BoardID = strings.TrimSpace(post.BoardID)
	s.posts[post.PostID] = post
}

func (s *Store) DeletePost(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	postID = strings.TrimSpace(postID)
	delete(s.posts, postID)
	for id, vote := range s.votes {
		if vote.PostID == postID {
			delete(s.votes, id)
		}
	}
}

// Post returns the stored projection, including the cached counter.
func (s *Store) Post(postID string) (entities.PostRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post, ok := s.posts[strings.TrimSpace(postID)]
	return post, ok
}

func (s *Store) VoteRows(postID string) []entities.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.votesForPostLocked(s.votes, strings.TrimSpace(postID))
}

func (s *Store) WithinPostLock(
	ctx context.Context,
	postID string,
	fn func(post entities.PostRef, tx ports.VoteTx) error,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[strings.TrimSpace(postID)]
	if !ok {
		return domainerrors.ErrPostNotFound
	}
	tx := &storeTx{
		store: s,
		votes: make(map[string]entities.Vote, len(s.votes)),
		posts: make(map[string]entities.PostRef, len(s.posts)),
	}
	for id, vote := range s.votes {
		tx.votes[id] = vote
	}
	for id, item := range s.posts {
		tx.posts[id] = item
	}
	if err := fn(post, tx); err != nil {
		return err
	}
	s.votes = tx.votes
	s.posts = tx.posts
	return nil
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

func (s *Store) GetVoteByIdentity(_ context.Context, postID string, userID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := findVote(s.votes, postID, userID)
	return vote, ok, nil
}

func (s *Store) CountUpvotes(_ context.Context, postID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entities.CountUpvotes(s.votesForPostLocked(s.votes, strings.TrimSpace(postID))), nil
}

func (s *Store) ListPostIDs(_ context.Context, afterID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.posts))
	for id := range s.posts {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) votesForPostLocked(votes map[string]entities.Vote, postID string) []entities.Vote {
	items := make([]entities.Vote, 0)
	for _, vote := range votes {
		if vote.PostID == postID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items
}

type storeTx struct {
	store *Store
	votes map[string]entities.Vote
	posts map[string]entities.PostRef
}

func (t *storeTx) GetVoteByIdentity(_ context.Context, postID string, userID string) (entities.Vote, bool, error) {
	vote, ok := findVote(t.votes, postID, userID)
	return vote, ok, nil
}

func (t *storeTx) CreateVote(_ context.Context, vote entities.Vote) error {
	if _, ok := findVote(t.votes, vote.PostID, vote.UserID); ok {
		return domainerrors.ErrVoteConflict
	}
	t.votes[vote.VoteID] = vote
	return nil
}

func (t *storeTx) UpdateVoteType(_ context.Context, voteID string, voteType entities.VoteType, updatedAt time.Time) error {
	vote, ok := t.votes[voteID]
	if !ok {
		return domainerrors.ErrVoteConflict
	}
	vote.VoteType = voteType
	vote.UpdatedAt = updatedAt.UTC()
	t.votes[voteID] = vote
	return nil
}

func (t *storeTx) DeleteVote(_ context.Context, voteID string) error {
	if _, ok := t.votes[voteID]; !ok {
		return domainerrors.ErrVoteConflict
	}
	delete(t.votes, voteID)
	return nil
}

func (t *storeTx) CountUpvotes(_ context.Context, postID string) (int, error) {
	if t.store.FailCount != nil {
		return 0, t.store.FailCount
	}
	return entities.CountUpvotes(t.store.votesForPostLocked(t.votes, strings.TrimSpace(postID))), nil
}

func (t *storeTx) SetPostVoteCount(_ context.Context, postID string, count int) error {
	post, ok := t.posts[strings.TrimSpace(postID)]
	if !ok {
		return domainerrors.ErrPostNotFound
	}
	post.VoteCount = count
	t.posts[post.PostID] = post
	return nil
}

func findVote(votes map[string]entities.Vote, postID string, userID string) (entities.Vote, bool) {
	postID = strings.TrimSpace(postID)
	userID = strings.TrimSpace(userID)
	for _, vote := range votes {
		if vote.PostID == postID && vote.UserID == userID {
			return vote, true
		}
	}
	return entities.Vote{}, false
}

var _ ports.VoteRepository = (*Store)(nil)
var _ ports.VoteTx = (*storeTx)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
