package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolkitServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")

		if strings.HasSuffix(r.URL.Path, "/token") {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			if r.PostForm.Get("refresh_token") != "ref" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"TOKEN_EXPIRED"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"id_token":"tok3","refresh_token":"ref2","user_id":"u1","expires_in":"3600"}`))
			return
		}

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch {
		case strings.HasSuffix(r.URL.Path, "/verifyPassword"):
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"localId":"u1","email":"a@example.com","idToken":"tok","refreshToken":"ref"}`))
		case strings.HasSuffix(r.URL.Path, "/signupNewUser"):
			if body["email"] == "taken@example.com" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"EMAIL_EXISTS"}}`))
				return
			}
			email, _ := body["email"].(string)
			_, _ = w.Write([]byte(`{"localId":"u2","email":"` + email + `","idToken":"tok2"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIdentityToolkit(t *testing.T) {
	ctx := context.Background()
	srv := newToolkitServer(t)

	it, err := NewIdentityToolkit(ctx, "test-key", srv.URL+"/", srv.URL+"/token")
	require.NoError(t, err)

	u, err := it.SignIn(ctx, "a@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, &User{ID: "u1", Email: "a@example.com", IDToken: "tok", RefreshToken: "ref"}, u)

	_, err = it.SignIn(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err = it.SignUp(ctx, "new@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)
	assert.False(t, u.Anonymous)

	_, err = it.SignUp(ctx, "taken@example.com", "secret")
	assert.ErrorIs(t, err, ErrEmailExists)

	u, err = it.SignInAnonymously(ctx)
	require.NoError(t, err)
	assert.True(t, u.Anonymous)
	assert.Equal(t, "", u.Email)
}

func TestIdentityToolkitRefresh(t *testing.T) {
	ctx := context.Background()
	srv := newToolkitServer(t)

	it, err := NewIdentityToolkit(ctx, "test-key", srv.URL+"/", srv.URL+"/token")
	require.NoError(t, err)

	u, err := it.Refresh(ctx, "ref")
	require.NoError(t, err)
	assert.Equal(t, &User{ID: "u1", IDToken: "tok3", RefreshToken: "ref2"}, u)

	_, err = it.Refresh(ctx, "stale")
	assert.ErrorIs(t, err, ErrRefreshRejected)
	assert.Contains(t, err.Error(), "TOKEN_EXPIRED")
}
