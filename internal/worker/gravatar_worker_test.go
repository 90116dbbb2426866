package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/model"
)

type fakeProber struct {
	exists bool
	err    error
	probed []string
}

func (f *fakeProber) Exists(_ context.Context, email string) (bool, error) {
	f.probed = append(f.probed, email)
	return f.exists, f.err
}

func (f *fakeProber) AvatarURL(email string) string { return "https://avatar/" + email }

type fakeStore struct {
	set map[string]string
	err error
}

func (f *fakeStore) SetGravatar(_ context.Context, id, url string) error {
	if f.err != nil {
		return f.err
	}
	if f.set == nil {
		f.set = map[string]string{}
	}
	f.set[id] = url
	return nil
}

func newTestWorker(prober *fakeProber, store *fakeStore) *GravatarWorker {
	return NewGravatarWorker(nil, store, prober, "profilehub.users", "profilehub.gravatar",
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func eventBody(t *testing.T, eventType, userID, email string) []byte {
	t.Helper()
	body, err := json.Marshal(model.UserEvent{Type: eventType, UserID: userID, Email: email, OccurredAt: time.Now()})
	require.NoError(t, err)
	return body
}

func TestGravatarWorker_HandleStoresAvatarWhenPresent(t *testing.T) {
	prober := &fakeProber{exists: true}
	store := &fakeStore{}
	w := newTestWorker(prober, store)

	require.NoError(t, w.handle(context.Background(), eventBody(t, model.EventUserRegistered, "u1", "john@x.com")))
	assert.Equal(t, map[string]string{"u1": "https://avatar/john@x.com"}, store.set)
}

func TestGravatarWorker_HandleKeepsFallbackWithoutAvatar(t *testing.T) {
	prober := &fakeProber{exists: false}
	store := &fakeStore{}
	w := newTestWorker(prober, store)

	require.NoError(t, w.handle(context.Background(), eventBody(t, model.EventUserRegistered, "u1", "john@x.com")))
	assert.Empty(t, store.set)
	assert.Equal(t, []string{"john@x.com"}, prober.probed)
}

func TestGravatarWorker_HandleIgnoresOtherEvents(t *testing.T) {
	prober := &fakeProber{exists: true}
	store := &fakeStore{}
	w := newTestWorker(prober, store)

	require.NoError(t, w.handle(context.Background(), eventBody(t, model.EventUserDeleted, "u1", "john@x.com")))
	assert.Empty(t, prober.probed)
	assert.Empty(t, store.set)
}

func TestGravatarWorker_HandleErrors(t *testing.T) {
	w := newTestWorker(&fakeProber{}, &fakeStore{})
	assert.Error(t, w.handle(context.Background(), []byte("{not json")))

	w = newTestWorker(&fakeProber{err: errors.New("timeout")}, &fakeStore{})
	assert.Error(t, w.handle(context.Background(), eventBody(t, model.EventUserRegistered, "u1", "a@b.c")))

	w = newTestWorker(&fakeProber{exists: true}, &fakeStore{err: errors.New("db down")})
	assert.Error(t, w.handle(context.Background(), eventBody(t, model.EventUserRegistered, "u1", "a@b.c")))
}
