package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kbediako/rentpadi/internal/domain/model"
	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
)

type UserRepo struct {
	mu      sync.Mutex
	users   map[int64]model.User
	byPhone map[string]int64
	nextID  int64
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		users:   make(map[int64]model.User),
		byPhone: make(map[string]int64),
		nextID:  1,
	}
}

func (r *UserRepo) CreateUser(_ context.Context, user model.User, now time.Time) (model.User, error) {
	phone := strings.TrimSpace(user.Phone)
	if phone == "" || user.PasswordHash == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byPhone[phone]; taken {
		return model.User{}, authsvc.ErrPhoneTaken
	}

	user.ID = r.nextID
	r.nextID++
	user.Phone = phone
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	r.byPhone[phone] = user.ID
	return user, nil
}

func (r *UserRepo) GetUserByPhone(_ context.Context, phone string) (model.User, bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return model.User{}, false, fmt.Errorf("phone is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byPhone[phone]
	if !ok {
		return model.User{}, false, nil
	}
	return r.users[id], true, nil
}

func (r *UserRepo) GetUserByID(_ context.Context, userID int64) (model.User, bool, error) {
	if userID <= 0 {
		return model.User{}, false, fmt.Errorf("invalid user id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	return user, ok, nil
}
