package badges

import (
	"context"
	"sync"
	"time"
)

type awardKey struct {
	userID  int
	badgeID int
}

type repoMock struct {
	mutex  sync.Mutex
	badges map[int]Badge
	awards map[awardKey]UserBadge
	nextID int
}

func newRepoMock() *repoMock {
	return &repoMock{
		badges: make(map[int]Badge),
		awards: make(map[awardKey]UserBadge),
		nextID: 1,
	}
}

func (r *repoMock) Add(_ context.Context, badge Badge) (*Badge, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	badge.ID = r.nextID
	r.nextID++
	if badge.CreatedAt.IsZero() {
		badge.CreatedAt = time.Now()
	}
	r.badges[badge.ID] = badge
	return &badge, nil
}

func (r *repoMock) List(_ context.Context) ([]Badge, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	badges := make([]Badge, 0, len(r.badges))
	for _, badge := range r.badges {
		badges = append(badges, badge)
	}
	return badges, nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.badges[id]; !ok {
		return ErrBadgeNotFound
	}
	delete(r.badges, id)
	return nil
}

func (r *repoMock) Award(_ context.Context, badgeID, userID, awardedBy int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	badge, ok := r.badges[badgeID]
	if !ok {
		return ErrBadgeNotFound
	}

	key := awardKey{userID: userID, badgeID: badgeID}
	if _, held := r.awards[key]; held {
		return ErrDuplicateAward
	}

	r.awards[key] = UserBadge{
		BadgeID:     badgeID,
		Name:        badge.Name,
		Description: badge.Description,
		IconURL:     badge.IconURL,
		AwardedAt:   time.Now(),
		AwardedBy:   awardedBy,
	}
	return nil
}

func (r *repoMock) ListForUser(_ context.Context, userID int) ([]UserBadge, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	userBadges := make([]UserBadge, 0)
	for key, ub := range r.awards {
		if key.userID == userID {
			userBadges = append(userBadges, ub)
		}
	}
	return userBadges, nil
}
