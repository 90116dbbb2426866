package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"profilehub/internal/model"
)

// MemoryUserRepository keeps users in process memory. It backs the "memory"
// storage driver for local runs and the service tests.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
	order   []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	stored := cloneUser(user)
	r.byID[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	r.order = append(r.order, stored.ID)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryUserRepository) Search(_ context.Context, filter SearchFilter) ([]model.User, error) {
	f := filter.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.order))
	for _, id := range r.order {
		u := r.byID[id]
		if f.Name != "" && !containsFold(u.Name, f.Name) {
			continue
		}
		if f.TechStack != "" && !anyContainsFold(u.TechStack, f.TechStack) {
			continue
		}
		if f.Bio != "" && !containsFold(u.Bio, f.Bio) {
			continue
		}
		users = append(users, *cloneUser(u))
	}
	return users, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id string, patch model.ProfilePatch) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	user.ApplyPatch(patch)
	user.UpdatedAt = time.Now().UTC()
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) SetGravatar(_ context.Context, id, gravatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		user.Gravatar = gravatarURL
	}
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	delete(r.byID, id)
	delete(r.byEmail, user.Email)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *MemoryUserRepository) Ping(context.Context) error { return nil }

func cloneUser(u *model.User) *model.User {
	c := *u
	c.TechStack = append([]string(nil), u.TechStack...)
	c.FieldOfInterest = append([]string(nil), u.FieldOfInterest...)
	c.Seeking = append([]string(nil), u.Seeking...)
	return &c
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func anyContainsFold(values []string, substr string) bool {
	for _, v := range values {
		if containsFold(v, substr) {
			return true
		}
	}
	return false
}
