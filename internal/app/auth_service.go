package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"profilehub/internal/model"
	"profilehub/internal/pkg/jwtutil"
	"profilehub/internal/pkg/password"
	"profilehub/internal/repository"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// AvatarSource supplies the avatar URL stored on newly registered users.
type AvatarSource interface {
	FallbackURL(email string) string
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	avatars  AvatarSource
	events   eventEmitter
	tokens   TokenConfig
	logger   *slog.Logger

	decoyOnce sync.Once
	decoyHash string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *model.User
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	avatars AvatarSource,
	publisher EventPublisher,
	tokens TokenConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		avatars:  avatars,
		events:   eventEmitter{publisher: publisher, logger: logger},
		tokens:   tokens,
		logger:   logger,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)

	missing := map[string]string{}
	if name == "" {
		missing["name"] = "Name is required"
	}
	if email == "" {
		missing["email"] = "Email is required"
	}
	if input.Password == "" {
		missing["password"] = "Password is required"
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Message: "provide all the required input", Fields: missing}
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, &ValidationError{
				Message: "provide all the required input",
				Fields:  map[string]string{"password": "Password must be at most 72 bytes"},
			}
		}
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.avatars != nil {
		user.Gravatar = s.avatars.FallbackURL(email)
	}
	user.NormalizeLists()

	// The pre-check above is advisory; the unique index decides concurrent registrations.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.tokens.Secret, s.tokens.TTL, user.ID)
	if err != nil {
		return nil, err
	}

	s.events.emit(ctx, model.EventUserRegistered, user)
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// Login fails with ErrInvalidCredential for an unknown email and for a wrong
// password alike. Unknown emails still pay for one hash comparison.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredential
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Verify(s.decoy(), input.Password)
		return nil, ErrInvalidCredential
	}

	if !s.hasher.Verify(user.PasswordHash, input.Password) {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.tokens.Secret, s.tokens.TTL, user.ID)
	if err != nil {
		return nil, err
	}
	user.NormalizeLists()
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate verifies a bearer token and resolves it to a stored user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := jwtutil.ParseToken(s.tokens.Secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash("decoy-password-for-unknown-accounts")
		if err == nil {
			s.decoyHash = hash
		}
	})
	return s.decoyHash
}
