package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discordcore/internal/record"
	"discordcore/internal/resolve"
	"discordcore/pkg/domain"
	"discordcore/pkg/platform/sentinel"
)

const (
	guildID domain.Snowflake = 41771983423143937
	emojiID domain.Snowflake = 41771983429993937
	roleID  domain.Snowflake = 41771983423143936
	userID  domain.Snowflake = 80351110224678912
)

const emojiBody = `{
	"id": "41771983429993937",
	"name": "LUL",
	"roles": ["41771983423143936"],
	"user": {"id": "80351110224678912", "username": "Nelly", "discriminator": "1337", "avatar": null},
	"require_colons": true,
	"managed": false,
	"animated": false
}`

const rolesBody = `[
	{"id": "41771983423143937", "name": "@everyone", "color": 0, "hoist": false, "position": 0, "permissions": "104324161", "managed": false, "mentionable": false},
	{"id": "41771983423143936", "name": "WE DEM BOYZZ!!!!!!", "color": 3447003, "hoist": true, "position": 1, "permissions": "66321471", "managed": false, "mentionable": false}
]`

const userBody = `{"id": "80351110224678912", "username": "Nelly", "discriminator": "1337", "avatar": "8342729096ea3675442027381ff50dfe"}`

type fakeAPI struct {
	t       *testing.T
	server  *httptest.Server
	calls   atomic.Int32
	handler http.HandlerFunc
}

// newFakeAPI serves fixed payloads for the known routes. Setting handler
// overrides every response.
func newFakeAPI(t *testing.T) *fakeAPI {
	api := &fakeAPI{t: t}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			api.calls.Add(1)
			assert.Equal(t, "Bot secret", req.Header.Get("Authorization"))
			assert.NotEmpty(t, req.Header.Get("User-Agent"))
			if api.handler != nil {
				api.handler(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/guilds/{guildID}/emojis/{emojiID}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "emojiID") != emojiID.String() {
			http.Error(w, `{"message": "Unknown Emoji", "code": 10014}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(emojiBody))
	})
	r.Get("/api/guilds/{guildID}/roles", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rolesBody))
	})
	r.Get("/api/users/{userID}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(userBody))
	})
	api.server = httptest.NewServer(r)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) client(opts ...Option) *Client {
	a.t.Helper()
	retries := uint64(2)
	return a.clientWithRetries(&retries, opts...)
}

func (a *fakeAPI) clientWithRetries(retries *uint64, opts ...Option) *Client {
	a.t.Helper()
	opts = append([]Option{WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} })}, opts...)
	c, err := New(Config{BaseURL: a.server.URL + "/api", Token: "secret", MaxRetries: retries}, opts...)
	require.NoError(a.t, err)
	return c
}

func TestClient_FetchEmoji(t *testing.T) {
	api := newFakeAPI(t)
	env, err := api.client().Fetch(context.Background(), domain.KindEmoji, emojiID, guildID)
	require.NoError(t, err)

	assert.Equal(t, domain.KindEmoji, env.Kind)
	assert.Equal(t, guildID, env.Parent)
	emoji := env.Record.(*record.Emoji)
	name, _ := emoji.Name.Get()
	assert.Equal(t, "LUL", name)
	assert.True(t, emoji.User.IsSet())
}

func TestClient_FetchRolePicksFromList(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()

	env, err := c.Fetch(context.Background(), domain.KindRole, roleID, guildID)
	require.NoError(t, err)
	id, _ := env.ID()
	assert.Equal(t, roleID, id)
	assert.Equal(t, guildID, env.Parent)

	_, err = c.Fetch(context.Background(), domain.KindRole, 1234, guildID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestClient_ConcurrentRoleLookupsShareOneListRequest(t *testing.T) {
	api := newFakeAPI(t)
	release := make(chan struct{})
	api.handler = func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(rolesBody))
	}
	c := api.client()

	ids := []domain.Snowflake{roleID, guildID, roleID}
	var started, done sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			_, errs[i] = c.Fetch(context.Background(), domain.KindRole, id, guildID)
		}()
	}
	started.Wait()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), api.calls.Load(), "one list request per guild")
}

func TestClient_FetchUser(t *testing.T) {
	api := newFakeAPI(t)
	env, err := api.client().Fetch(context.Background(), domain.KindUser, userID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Snowflake(0), env.Parent)
	id, _ := env.ID()
	assert.Equal(t, userID, id)
}

func TestClient_ScopedKindsNeedParent(t *testing.T) {
	api := newFakeAPI(t)
	c := api.client()
	for _, kind := range []domain.Kind{domain.KindEmoji, domain.KindRole} {
		_, err := c.Fetch(context.Background(), kind, emojiID, 0)
		assert.Equal(t, resolve.CategoryInternal, resolve.GetCategory(err))
	}
	assert.Zero(t, api.calls.Load(), "no request without a guild")
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category resolve.Category
		calls    int32
	}{
		{"not found is permanent", http.StatusNotFound, `{"message": "Unknown User"}`, resolve.CategoryNotFound, 1},
		{"forbidden is permanent", http.StatusForbidden, `{"message": "Missing Access"}`, resolve.CategoryInternal, 1},
		{"server error is retried", http.StatusBadGateway, ``, resolve.CategoryUnavailable, 3},
		{"rate limit is retried", http.StatusTooManyRequests, `{"retry_after": 0}`, resolve.CategoryRateLimited, 3},
		{"malformed body", http.StatusOK, `{"id": "80351110224678912", "username": `, resolve.CategoryBadData, 1},
		{"missing required field", http.StatusOK, `{"id": "80351110224678912"}`, resolve.CategoryBadData, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}

			_, err := api.client().Fetch(context.Background(), domain.KindUser, userID, 0)
			require.Error(t, err)
			assert.Equal(t, tt.category, resolve.GetCategory(err))
			assert.Equal(t, tt.calls, api.calls.Load())
		})
	}
}

func TestClient_MaxRetries(t *testing.T) {
	none := uint64(0)
	tests := []struct {
		name    string
		retries *uint64
		calls   int32
	}{
		{"zero disables retries", &none, 1},
		{"nil uses the default", nil, defaultMaxRetries + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}

			_, err := api.clientWithRetries(tt.retries).Fetch(context.Background(), domain.KindUser, userID, 0)
			assert.Equal(t, resolve.CategoryUnavailable, resolve.GetCategory(err))
			assert.Equal(t, tt.calls, api.calls.Load())
		})
	}
}

func TestClient_RecoversAfterTransientFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.handler = func(w http.ResponseWriter, _ *http.Request) {
		if api.calls.Load() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(userBody))
	}

	env, err := api.client().Fetch(context.Background(), domain.KindUser, userID, 0)
	require.NoError(t, err)
	id, _ := env.ID()
	assert.Equal(t, userID, id)
	assert.Equal(t, int32(3), api.calls.Load())
}

func TestClient_Timeout(t *testing.T) {
	api := newFakeAPI(t)
	api.handler = func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-req.Context().Done():
		case <-time.After(time.Second):
		}
		_, _ = w.Write([]byte(userBody))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := api.client().Fetch(ctx, domain.KindUser, userID, 0)
	require.Error(t, err)
	assert.Equal(t, resolve.CategoryTimeout, resolve.GetCategory(err))
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "/api"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL.String())
}
