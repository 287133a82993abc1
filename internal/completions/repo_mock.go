package completions

import (
	"context"
	"sort"
	"sync"
	"time"
)

type repoMock struct {
	mutex        sync.Mutex
	completions  map[int]Completion
	displayNames map[int]string
	sessionTitle map[int]string
	nextID       int
}

func newRepoMock() *repoMock {
	return &repoMock{
		completions:  make(map[int]Completion),
		displayNames: make(map[int]string),
		sessionTitle: make(map[int]string),
		nextID:       1,
	}
}

func (r *repoMock) Record(_ context.Context, completion Completion) (*Completion, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	completion.ID = r.nextID
	r.nextID++
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now()
	}
	r.completions[completion.ID] = completion
	return &completion, nil
}

func (r *repoMock) ListByUser(_ context.Context, userID int) ([]Completion, error) {
	return r.filter(func(c Completion) bool { return c.UserID == userID }), nil
}

func (r *repoMock) ListByProgram(_ context.Context, programID int) ([]Completion, error) {
	return r.filter(func(c Completion) bool { return c.ProgramID == programID }), nil
}

func (r *repoMock) ListBySession(_ context.Context, sessionID int) ([]Completion, error) {
	return r.filter(func(c Completion) bool { return c.SessionID == sessionID }), nil
}

func (r *repoMock) filter(keep func(Completion) bool) []Completion {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	completions := make([]Completion, 0)
	for _, c := range r.completions {
		if keep(c) {
			completions = append(completions, c)
		}
	}
	sort.Slice(completions, func(i, j int) bool {
		return completions[i].CompletedAt.After(completions[j].CompletedAt)
	})
	return completions
}

func (r *repoMock) UserProgramStats(_ context.Context, userID, programID int) (*UserProgramStats, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stats := UserProgramStats{}
	uniqueSessions := make(map[int]bool)
	for _, c := range r.completions {
		if c.UserID != userID || c.ProgramID != programID {
			continue
		}
		stats.TotalCompletions++
		uniqueSessions[c.SessionID] = true
		if c.DurationMinutes != nil {
			stats.TotalMinutes += *c.DurationMinutes
		}
		if stats.LastCompletion == nil || c.CompletedAt.After(*stats.LastCompletion) {
			completedAt := c.CompletedAt
			stats.LastCompletion = &completedAt
		}
	}
	stats.UniqueSessionsCompleted = len(uniqueSessions)
	return &stats, nil
}

func (r *repoMock) ActivityFeed(_ context.Context, programID, limit int) ([]FeedItem, error) {
	completions := r.filter(func(c Completion) bool { return c.ProgramID == programID })

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(completions) > limit {
		completions = completions[:limit]
	}
	feed := make([]FeedItem, 0, len(completions))
	for _, c := range completions {
		feed = append(feed, FeedItem{
			CompletionID:    c.ID,
			UserID:          c.UserID,
			UserDisplayName: r.displayNames[c.UserID],
			SessionID:       c.SessionID,
			SessionTitle:    r.sessionTitle[c.SessionID],
			CompletedAt:     c.CompletedAt,
			DurationMinutes: c.DurationMinutes,
			Feeling:         c.Feeling,
		})
	}
	return feed, nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.completions[id]; !ok {
		return ErrCompletionNotFound
	}
	delete(r.completions, id)
	return nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Completion, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	completion, ok := r.completions[id]
	if !ok {
		return nil, ErrCompletionNotFound
	}
	return &completion, nil
}
