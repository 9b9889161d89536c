package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/localstore"
	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/store"
)

type fixture struct {
	sess  *Session
	local *localstore.Store
	state *store.Store
}

func newFixture(t *testing.T, handler http.Handler) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	local, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	client := rental.NewClient(zap.NewNop(), srv.URL)
	state := store.New(zap.NewNop(), local, false)
	sess := New(zap.NewNop(), client, local, state)
	client.SetAuthorizer(sess)

	return &fixture{sess: sess, local: local, state: state}
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alex",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// loginBackend 登录链路的最小后端桩
func loginBackend(t *testing.T, accessToken string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(rental.LoginResponse{
				AccessToken:  accessToken,
				RefreshToken: "refresh-1",
				User:         &models.User{ID: 7, Username: req["username"], FirstName: "Alex"},
			})
		case "/v1/auth/roles":
			json.NewEncoder(w).Encode(map[string][]string{"roles": {models.RoleUser}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestLoginPersistsSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	f := newFixture(t, loginBackend(t, token))

	user, err := f.sess.Login(context.Background(), "alex", "secret")
	require.NoError(t, err)
	assert.EqualValues(t, 7, user.ID)

	// 令牌与身份落地本地存储
	stored, ok, _ := f.local.Get(context.Background(), localstore.KeyAccessToken)
	require.True(t, ok)
	assert.Equal(t, token, stored)
	username, ok, _ := f.local.Get(context.Background(), localstore.KeyUsername)
	require.True(t, ok)
	assert.Equal(t, "alex", username)

	// 身份写入应用状态
	assert.EqualValues(t, 7, f.state.UserID())
	assert.True(t, f.state.HasRole(models.RoleUser))
	assert.Equal(t, "Alex", f.state.UserProfile().FirstName)

	assert.True(t, f.sess.LoggedIn())
	assert.Equal(t, token, f.sess.AccessToken())
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t, loginBackend(t, "unused"))

	_, err := f.sess.Login(context.Background(), "alex", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, f.sess.LoggedIn())
}

func TestLoginServerUnreachable(t *testing.T) {
	local, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	defer local.Close()

	client := rental.NewClient(zap.NewNop(), "http://127.0.0.1:1")
	state := store.New(zap.NewNop(), local, false)
	sess := New(zap.NewNop(), client, local, state)

	_, err = sess.Login(context.Background(), "alex", "secret")
	require.ErrorIs(t, err, ErrServerUnreachable)
}

func TestLogoutClearsEverything(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	f := newFixture(t, loginBackend(t, token))

	_, err := f.sess.Login(context.Background(), "alex", "secret")
	require.NoError(t, err)

	f.sess.Logout(context.Background())

	// 返回时本地存储与状态都已清空
	_, ok, _ := f.local.Get(context.Background(), localstore.KeyAccessToken)
	assert.False(t, ok)
	_, ok, _ = f.local.Get(context.Background(), localstore.KeyCurrentUser)
	assert.False(t, ok)
	assert.EqualValues(t, 0, f.state.UserID())
	assert.Empty(t, f.state.UserRoles())
	assert.False(t, f.sess.LoggedIn())
}

func TestRestoreWithoutStoredSession(t *testing.T) {
	f := newFixture(t, loginBackend(t, "unused"))

	err := f.sess.Restore(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRestoreFromStoredSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	f := newFixture(t, loginBackend(t, token))
	ctx := context.Background()

	// 预置上次会话留下的本地存储
	require.NoError(t, f.local.Set(ctx, localstore.KeyAccessToken, token))
	require.NoError(t, f.local.Set(ctx, localstore.KeyUsername, "alex"))
	userJSON, _ := json.Marshal(models.User{ID: 7, Username: "alex"})
	require.NoError(t, f.local.Set(ctx, localstore.KeyCurrentUser, string(userJSON)))

	require.NoError(t, f.sess.Restore(ctx))

	assert.True(t, f.sess.LoggedIn())
	assert.EqualValues(t, 7, f.state.UserID())
}

func TestRestoreExpiredTokenRefreshFailureLogsOut(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))
	f := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 刷新也被拒绝
		w.WriteHeader(http.StatusUnauthorized)
	}))
	ctx := context.Background()

	require.NoError(t, f.local.Set(ctx, localstore.KeyAccessToken, expired))
	require.NoError(t, f.local.Set(ctx, localstore.KeyUsername, "alex"))

	err := f.sess.Restore(ctx)
	require.Error(t, err)

	// 恢复失败按未登录处理，残留状态被清掉
	assert.False(t, f.sess.LoggedIn())
	_, ok, _ := f.local.Get(ctx, localstore.KeyAccessToken)
	assert.False(t, ok)
}

func TestTokenExpired(t *testing.T) {
	assert.False(t, tokenExpired(signedToken(t, time.Now().Add(time.Hour))))
	assert.True(t, tokenExpired(signedToken(t, time.Now().Add(-time.Minute))))
	// 解析不了的令牌视为过期
	assert.True(t, tokenExpired("garbage"))
}

func TestAuthExpiredLogsOut(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	f := newFixture(t, loginBackend(t, token))

	_, err := f.sess.Login(context.Background(), "alex", "secret")
	require.NoError(t, err)

	f.sess.AuthExpired()
	assert.False(t, f.sess.LoggedIn())
	assert.EqualValues(t, 0, f.state.UserID())
}
