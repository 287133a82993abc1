package programs

import (
	"context"
	"sort"
	"sync"
	"time"
)

type repoMock struct {
	mutex         sync.Mutex
	programs      map[int]Program
	sessions      map[int]Session
	nextProgramID int
	nextSessionID int
}

func newRepoMock() *repoMock {
	return &repoMock{
		programs:      make(map[int]Program),
		sessions:      make(map[int]Session),
		nextProgramID: 1,
		nextSessionID: 1,
	}
}

func (r *repoMock) AddProgram(_ context.Context, program Program) (*Program, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	program.ID = r.nextProgramID
	r.nextProgramID++
	if program.CreatedAt.IsZero() {
		program.CreatedAt = time.Now()
	}
	r.programs[program.ID] = program
	return &program, nil
}

func (r *repoMock) GetProgram(_ context.Context, id int) (*Program, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	program, ok := r.programs[id]
	if !ok {
		return nil, ErrProgramNotFound
	}
	return &program, nil
}

func (r *repoMock) ListPrograms(_ context.Context) ([]Program, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	programs := make([]Program, 0, len(r.programs))
	for _, program := range r.programs {
		programs = append(programs, program)
	}
	sort.Slice(programs, func(i, j int) bool {
		return programs[i].CreatedAt.After(programs[j].CreatedAt)
	})
	return programs, nil
}

func (r *repoMock) UpdateProgram(_ context.Context, program Program) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, ok := r.programs[program.ID]
	if !ok {
		return ErrProgramNotFound
	}
	program.CoachID = existing.CoachID
	program.CreatedAt = existing.CreatedAt
	r.programs[program.ID] = program
	return nil
}

func (r *repoMock) DeleteProgram(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.programs[id]; !ok {
		return ErrProgramNotFound
	}
	delete(r.programs, id)
	return nil
}

func (r *repoMock) AddSession(_ context.Context, session Session) (*Session, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	session.ID = r.nextSessionID
	r.nextSessionID++
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.sessions[session.ID] = session
	return &session, nil
}

func (r *repoMock) ListSessions(_ context.Context, programID int) ([]Session, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	sessions := make([]Session, 0)
	for _, session := range r.sessions {
		if session.ProgramID == programID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].DayNumber < sessions[j].DayNumber
	})
	return sessions, nil
}

func (r *repoMock) DeleteSession(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *repoMock) SessionsCount(_ context.Context, programID int) (int, error) {
	sessions, _ := r.ListSessions(context.Background(), programID)
	return len(sessions), nil
}
