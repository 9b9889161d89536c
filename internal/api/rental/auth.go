package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/langchou/rentdeck/internal/models"
)

// LoginResponse 登录/刷新令牌的响应
type LoginResponse struct {
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *models.User `json:"user,omitempty"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Login 用户名密码登录
// 认证端点不带 bearer，也不走 401 刷新重试
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	return c.authPost(ctx, "/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

// RefreshToken 刷新访问令牌
// 后端只以用户名换发新令牌，不传 refresh token 值
func (c *Client) RefreshToken(ctx context.Context, username string) (*LoginResponse, error) {
	return c.authPost(ctx, "/v1/auth/refresh_token", map[string]string{
		"username": username,
	})
}

// authPost 认证端点的裸 POST，绕过 do 的拦截逻辑
func (c *Client) authPost(ctx context.Context, path string, in any) (*LoginResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnreachable)
	}
	defer resp.Body.Close()

	var out LoginResponse
	if err := decodeResponse(resp, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register 注册新用户
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.postJSON(ctx, "/v1/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername 按用户名查询用户
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/v1/users/username/"+username, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID 按 ID 查询用户
func (c *Client) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserRoles 查询当前用户的角色集
func (c *Client) GetUserRoles(ctx context.Context) ([]string, error) {
	var out struct {
		Roles []string `json:"roles"`
	}
	if err := c.getJSON(ctx, "/v1/auth/roles", nil, &out); err != nil {
		return nil, err
	}
	return out.Roles, nil
}
