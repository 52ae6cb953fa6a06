package model

import (
	"time"

	"github.com/kbediako/rentpadi/internal/domain/enums"
)

type User struct {
	ID           int64      `json:"id"`
	Phone        string     `json:"phone"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	Role         enums.Role `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
