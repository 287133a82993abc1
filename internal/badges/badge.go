package badges

import (
	"errors"
	"time"
)

var (
	ErrBadgeNotFound  = errors.New("badge not found")
	ErrDuplicateAward = errors.New("badge already awarded to user")
	ErrUserNotFound   = errors.New("user not found")
)

type Badge struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"iconUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserBadge is one awarded badge in a user's trophy listing.
type UserBadge struct {
	BadgeID     int       `json:"badgeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IconURL     string    `json:"iconUrl,omitempty"`
	AwardedAt   time.Time `json:"awardedAt"`
	AwardedBy   int       `json:"awardedBy"`
}
