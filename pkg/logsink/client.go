package logsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint 日志评测服务地址
const DefaultEndpoint = "http://20.244.56.144/evaluation-service/logs"

// Config 客户端配置
type Config struct {
	Endpoint   string
	Token      string // 可以带或不带 "Bearer " 前缀
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client 远程日志客户端
type Client struct {
	endpoint      string
	authorization string
	httpClient    *http.Client
}

// NewClient 创建客户端
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:      endpoint,
		authorization: BearerToken(cfg.Token),
		httpClient:    httpClient,
	}
}

// BearerToken 补全 Bearer 前缀，空 token 返回空字符串
func BearerToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return token
	}
	return "Bearer " + token
}

// Log 上报一条日志，成功时返回解析后的响应体
func (c *Client) Log(ctx context.Context, stack Stack, level Level, pkg Package, message string) (map[string]any, error) {
	entry := Entry{Stack: stack, Level: level, Package: pkg, Message: message}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send log: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	parsed, parseErr := decodeBody(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Status: resp.StatusCode, Body: parsed}
	}
	if parseErr != nil {
		return nil, fmt.Errorf("decode response: %w", parseErr)
	}
	return parsed, nil
}

// decodeBody 空响应体视为空对象
func decodeBody(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
