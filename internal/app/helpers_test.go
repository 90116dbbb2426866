package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"profilehub/internal/model"
	"profilehub/internal/pkg/gravatar"
	"profilehub/internal/pkg/password"
	"profilehub/internal/repository"
)

const testSecret = "test-secret"

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.UserEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.UserEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// racingRepo hides existing users from the email pre-check so Create hits the unique index.
type racingRepo struct {
	*repository.MemoryUserRepository
}

func (r racingRepo) GetByEmail(context.Context, string) (*model.User, error) { return nil, nil }

type failingRepo struct {
	*repository.MemoryUserRepository
}

var errStoreDown = errors.New("store down")

func (failingRepo) Search(context.Context, repository.SearchFilter) ([]model.User, error) {
	return nil, errStoreDown
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	repo      repository.UserRepository
	publisher *recordingPublisher
	auth      *AuthService
	profiles  *ProfileService
}

func newFixture(t *testing.T, repo repository.UserRepository) *fixture {
	t.Helper()
	if repo == nil {
		repo = repository.NewMemoryUserRepository()
	}
	pub := &recordingPublisher{}
	logger := testLogger()
	return &fixture{
		repo:      repo,
		publisher: pub,
		auth: NewAuthService(
			repo,
			password.NewBcryptHasher(bcrypt.MinCost),
			gravatar.NewClient("https://avatars.example/avatar/", time.Second),
			pub,
			TokenConfig{Secret: testSecret, TTL: time.Hour},
			logger,
		),
		profiles: NewProfileService(repo, pub, logger),
	}
}

func (f *fixture) register(t *testing.T, name, email, pw string) *AuthResult {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: pw})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res
}

func strPtr(s string) *string { return &s }

func listPtr(v ...string) *[]string { return &v }
