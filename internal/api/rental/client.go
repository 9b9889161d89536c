// Package rental 封装租车后端的 REST 接口
// 不含业务逻辑：每个方法对应一次请求/响应
package rental

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// 错误定义
var (
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrNotFound     = fmt.Errorf("not found")
	ErrUnreachable  = fmt.Errorf("server unreachable")
)

// Authorizer 提供访问令牌并处理令牌过期
// 由 session 实现；刷新重试后仍 401 时调用 AuthExpired
type Authorizer interface {
	AccessToken() string
	Refresh(ctx context.Context) error
	AuthExpired()
}

// Client 租车后端 API 客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	auth       Authorizer
}

// NewClient 创建客户端，baseURL 形如 http://localhost:8090
func NewClient(logger *zap.Logger, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// SetAuthorizer 设置令牌提供者
func (c *Client) SetAuthorizer(auth Authorizer) {
	c.auth = auth
}

// SetHTTPClient 替换底层 HTTP 客户端（测试用）
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// buildURL 拼接路径和查询参数
func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do 执行带认证的请求
// 401 时刷新一次令牌并重试一次；重试仍 401 则通知 AuthExpired
// body 传字节而不是 reader，重试需要重新构造请求体
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, query, body, contentType, c.token())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || c.auth == nil {
		return resp, nil
	}
	resp.Body.Close()

	// 刷新一次并重试
	if err := c.auth.Refresh(ctx); err != nil {
		c.logger.Warn("Token refresh failed, session expired", zap.Error(err))
		c.auth.AuthExpired()
		return nil, fmt.Errorf("refresh token: %w", ErrUnauthorized)
	}

	resp, err = c.send(ctx, method, path, query, body, contentType, c.token())
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.logger.Warn("Request unauthorized after token refresh", zap.String("path", path))
		c.auth.AuthExpired()
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	return resp, nil
}

// send 发送单次请求
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte, contentType, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "rentdeck/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrUnreachable)
	}
	return resp, nil
}

func (c *Client) token() string {
	if c.auth == nil {
		return ""
	}
	return c.auth.AccessToken()
}

// getJSON GET 请求并解码响应
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, path, out)
}

// postJSON POST JSON 请求并解码响应，out 为 nil 时丢弃响应体
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

// putJSON PUT JSON 请求并解码响应
func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	resp, err := c.do(ctx, method, path, nil, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, path, out)
}

// delete DELETE 请求，忽略响应体
func (c *Client) delete(ctx context.Context, path string, query url.Values) error {
	resp, err := c.do(ctx, http.MethodDelete, path, query, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, path, nil)
}

// decodeResponse 检查状态码并解码 JSON 响应体
func decodeResponse(resp *http.Response, path string, out any) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", path, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed: status=%d body=%s", path, resp.StatusCode, string(body))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
