package users

import (
	"time"

	"github.com/azelenovic/fitcoach/internal/auth"
)

type User struct {
	ID          int       `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        auth.Role `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`

	// never serialized
	PasswordHash string `json:"-"`
}
