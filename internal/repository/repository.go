package repository

import (
	"context"
	"errors"
	"strings"

	"profilehub/internal/model"
)

// ErrDuplicateEmail is returned by Create when the store's unique email index rejects the insert.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository is the credential and profile store. Lookups return (nil, nil)
// when no document matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Search(ctx context.Context, filter SearchFilter) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, patch model.ProfilePatch) (*model.User, error)
	SetGravatar(ctx context.Context, id, gravatarURL string) error
	Delete(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}

// SearchFilter holds case-insensitive substring constraints. Empty fields match everything.
type SearchFilter struct {
	Name      string
	TechStack string
	Bio       string
}

func (f SearchFilter) Normalize() SearchFilter {
	return SearchFilter{
		Name:      strings.TrimSpace(f.Name),
		TechStack: strings.TrimSpace(f.TechStack),
		Bio:       strings.TrimSpace(f.Bio),
	}
}

func (f SearchFilter) IsEmpty() bool {
	n := f.Normalize()
	return n.Name == "" && n.TechStack == "" && n.Bio == ""
}
