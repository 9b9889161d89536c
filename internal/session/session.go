// Package session 管理登录状态与令牌生命周期
// 令牌落地到本地存储，身份信息写入应用状态
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/langchou/rentdeck/internal/api/rental"
	"github.com/langchou/rentdeck/internal/localstore"
	"github.com/langchou/rentdeck/internal/models"
	"github.com/langchou/rentdeck/internal/store"
)

// 错误定义
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrServerUnreachable  = errors.New("server unreachable")
	ErrNoSession          = errors.New("no stored session")
)

// Session 当前登录会话
// 实现 rental.Authorizer，为 API 客户端提供令牌
type Session struct {
	client *rental.Client
	local  *localstore.Store
	state  *store.Store
	logger *zap.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	username     string
	user         *models.User
}

// New 创建会话管理器
func New(logger *zap.Logger, client *rental.Client, local *localstore.Store, state *store.Store) *Session {
	return &Session{
		client: client,
		local:  local,
		state:  state,
		logger: logger,
	}
}

// AccessToken 返回当前访问令牌，未登录时为空串
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// LoggedIn 是否持有访问令牌
func (s *Session) LoggedIn() bool {
	return s.AccessToken() != ""
}

// Username 当前登录用户名
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// CurrentUser 当前登录用户，未登录时为 nil
func (s *Session) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login 用户名密码登录
// 成功后持久化令牌并把身份写入应用状态
func (s *Session) Login(ctx context.Context, username, password string) (*models.User, error) {
	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, rental.ErrUnauthorized):
			return nil, ErrInvalidCredentials
		case errors.Is(err, rental.ErrUnreachable):
			return nil, fmt.Errorf("login: %w", ErrServerUnreachable)
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	user := resp.User
	if user == nil {
		// 部分后端登录响应不内嵌用户，按用户名补一次查询
		user, err = s.client.GetUserByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("fetch user after login: %w", err)
		}
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	s.refreshToken = resp.RefreshToken
	s.username = username
	s.user = user
	s.mu.Unlock()

	s.persist(ctx, resp.AccessToken, resp.RefreshToken, username, user)
	s.applyIdentity(ctx, user)

	s.logger.Info("User logged in", zap.String("username", username), zap.Int64("user_id", user.ID))
	return user, nil
}

// Register 注册新用户，成功后不自动登录
func (s *Session) Register(ctx context.Context, req rental.RegisterRequest) (*models.User, error) {
	user, err := s.client.Register(ctx, req)
	if err != nil {
		if errors.Is(err, rental.ErrUnreachable) {
			return nil, fmt.Errorf("register: %w", ErrServerUnreachable)
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// Refresh 用用户名换发新令牌
// 供 API 客户端在 401 时回调
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.RLock()
	username := s.username
	s.mu.RUnlock()
	if username == "" {
		return ErrNoSession
	}

	resp, err := s.client.RefreshToken(ctx, username)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}

	s.mu.Lock()
	s.accessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		s.refreshToken = resp.RefreshToken
	}
	refreshToken := s.refreshToken
	s.mu.Unlock()

	if err := s.local.Set(ctx, localstore.KeyAccessToken, resp.AccessToken); err != nil {
		s.logger.Warn("Failed to persist access token", zap.Error(err))
	}
	if err := s.local.Set(ctx, localstore.KeyRefreshToken, refreshToken); err != nil {
		s.logger.Warn("Failed to persist refresh token", zap.Error(err))
	}

	s.logger.Debug("Access token refreshed", zap.String("username", username))
	return nil
}

// AuthExpired 刷新重试后仍未通过认证时的回调，直接登出
func (s *Session) AuthExpired() {
	s.logger.Warn("Authentication expired, logging out")
	s.Logout(context.Background())
}

// Logout 同步清空会话
// 本地存储与应用状态在返回前都已清理完
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	username := s.username
	s.accessToken = ""
	s.refreshToken = ""
	s.username = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.local.Delete(ctx,
		localstore.KeyAccessToken,
		localstore.KeyRefreshToken,
		localstore.KeyUsername,
		localstore.KeyCurrentUser,
	); err != nil {
		s.logger.Warn("Failed to clear stored session", zap.Error(err))
	}

	s.state.ClearUserID()
	s.state.ClearUserRoles()

	if username != "" {
		s.logger.Info("User logged out", zap.String("username", username))
	}
}

// Restore 从本地存储恢复会话
// 任何一步失败都按未登录处理并清掉残留状态
func (s *Session) Restore(ctx context.Context) error {
	token, ok, err := s.local.Get(ctx, localstore.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("read stored token: %w", err)
	}
	if !ok || token == "" {
		return ErrNoSession
	}

	username, _, err := s.local.Get(ctx, localstore.KeyUsername)
	if err != nil {
		return fmt.Errorf("read stored username: %w", err)
	}
	refresh, _, _ := s.local.Get(ctx, localstore.KeyRefreshToken)

	s.mu.Lock()
	s.accessToken = token
	s.refreshToken = refresh
	s.username = username
	s.mu.Unlock()

	if tokenExpired(token) {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("Stored token expired and refresh failed", zap.Error(err))
			s.Logout(ctx)
			return fmt.Errorf("restore session: %w", err)
		}
	}

	user, err := s.loadStoredUser(ctx, username)
	if err != nil {
		s.logger.Warn("Failed to restore user identity", zap.Error(err))
		s.Logout(ctx)
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.applyIdentity(ctx, user)
	s.logger.Info("Session restored", zap.String("username", username), zap.Int64("user_id", user.ID))
	return nil
}

// loadStoredUser 优先用缓存的用户快照，没有就按用户名查一次
func (s *Session) loadStoredUser(ctx context.Context, username string) (*models.User, error) {
	raw, ok, err := s.local.Get(ctx, localstore.KeyCurrentUser)
	if err == nil && ok && raw != "" {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil && user.ID != 0 {
			return &user, nil
		}
	}

	if username == "" {
		return nil, ErrNoSession
	}
	user, err := s.client.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := s.local.Set(ctx, localstore.KeyCurrentUser, string(data)); err != nil {
			s.logger.Warn("Failed to cache current user", zap.Error(err))
		}
	}
	return user, nil
}

// persist 把会话写入本地存储
func (s *Session) persist(ctx context.Context, access, refresh, username string, user *models.User) {
	entries := map[string]string{
		localstore.KeyAccessToken:  access,
		localstore.KeyRefreshToken: refresh,
		localstore.KeyUsername:     username,
	}
	if data, err := json.Marshal(user); err == nil {
		entries[localstore.KeyCurrentUser] = string(data)
	}
	for key, value := range entries {
		if err := s.local.Set(ctx, key, value); err != nil {
			s.logger.Warn("Failed to persist session entry", zap.String("key", key), zap.Error(err))
		}
	}
}

// applyIdentity 把身份写入应用状态并拉取角色
func (s *Session) applyIdentity(ctx context.Context, user *models.User) {
	s.state.SetUserID(user.ID)
	s.state.UpdateUserProfile(models.UserProfilePatch{
		FirstName:      &user.FirstName,
		LastName:       &user.LastName,
		Email:          &user.Email,
		PhoneNumber:    &user.PhoneNumber,
		HomeAddress:    &user.HomeAddress,
		BillingAddress: &user.BillingAddress,
	})

	roles, err := s.client.GetUserRoles(ctx)
	if err != nil {
		s.logger.Warn("Failed to fetch user roles", zap.Error(err))
		roles = []string{models.RoleUser}
	}
	s.state.SetUserRoles(roles)
}

// tokenExpired 不校验签名，只读 exp 判断令牌是否过期
// 解析失败视为过期，交给刷新流程处理
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(time.Now())
}
