package users

import (
	"context"
	"sync"

	"github.com/azelenovic/fitcoach/internal/auth"
)

type repoMock struct {
	mutex  sync.Mutex
	users  map[int]User
	nextID int
}

func newRepoMock() *repoMock {
	return &repoMock{
		users:  make(map[int]User),
		nextID: 1,
	}
}

func (r *repoMock) Add(_ context.Context, user User) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, ErrUserExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return &user, nil
}

func (r *repoMock) Get(_ context.Context, id int) (*User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *repoMock) GetAccountByEmail(_ context.Context, email string) (*auth.UserAccount, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			return &auth.UserAccount{
				ID:           user.ID,
				Email:        user.Email,
				DisplayName:  user.DisplayName,
				PasswordHash: user.PasswordHash,
				Role:         user.Role,
			}, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) List(_ context.Context) ([]User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	users := make([]User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, nil
}

func (r *repoMock) UpdateRole(_ context.Context, id int, role auth.Role) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Role = role
	r.users[id] = user
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
