package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/model"
	"profilehub/internal/pkg/jwtutil"
	"profilehub/internal/repository"
)

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	res := f.register(t, " John ", "John@X.com ", "pw123")

	require.NotEmpty(t, res.User.ID)
	assert.Equal(t, "John", res.User.Name)
	assert.Equal(t, "john@x.com", res.User.Email)
	assert.NotEqual(t, "pw123", res.User.PasswordHash)
	assert.Contains(t, res.User.Gravatar, "https://avatars.example/avatar/")
	assert.Equal(t, []string{}, res.User.TechStack)

	claims, err := jwtutil.ParseToken(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	assert.Equal(t, []string{model.EventUserRegistered}, f.publisher.types())
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.auth.Register(context.Background(), RegisterInput{Name: "  ", Email: "", Password: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "provide all the required input", verr.Message)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestRegister_DuplicateEmailRegardlessOfOtherFields(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.register(t, "John", "john@x.com", "pw123")

	for _, in := range []RegisterInput{
		{Name: "John", Email: "john@x.com", Password: "pw123"},
		{Name: "Someone Else", Email: "JOHN@x.com", Password: "different"},
	} {
		_, err := f.auth.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrEmailExists)
	}
}

func TestRegister_LostRaceIsConflict(t *testing.T) {
	t.Parallel()
	mem := repository.NewMemoryUserRepository()
	require.NoError(t, mem.Create(context.Background(), &model.User{Name: "John", Email: "john@x.com"}))

	f := newFixture(t, racingRepo{mem})
	_, err := f.auth.Register(context.Background(), RegisterInput{Name: "J", Email: "john@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Empty(t, f.publisher.types())
}

func TestRegister_PublisherFailureDoesNotFail(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.publisher.err = errors.New("broker down")

	res := f.register(t, "John", "john@x.com", "pw123")
	assert.NotEmpty(t, res.Token)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	reg := f.register(t, "John", "john@x.com", "pw123")

	res, err := f.auth.Login(context.Background(), LoginInput{Email: "JOHN@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	cases := []LoginInput{
		{Email: "john@x.com", Password: "wrong"},
		{Email: "nobody@x.com", Password: "pw123"},
		{Email: "", Password: "pw123"},
		{Email: "john@x.com", Password: ""},
	}
	for _, in := range cases {
		_, err := f.auth.Login(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidCredential, "input %+v", in)
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	reg := f.register(t, "John", "john@x.com", "pw123")
	ctx := context.Background()

	user, err := f.auth.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	expired, err := jwtutil.GenerateToken(testSecret, -time.Second, reg.User.ID)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, expired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	foreign, err := jwtutil.GenerateToken("other-secret", time.Hour, reg.User.ID)
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, f.profiles.DeleteOwn(ctx, user, user.ID))
	_, err = f.auth.Authenticate(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
