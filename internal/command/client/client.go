package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lwmacct/261019-go-pkg-interp/internal/command/server"
	"github.com/lwmacct/261019-go-pkg-interp/internal/config"
	"github.com/lwmacct/261019-go-pkg-interp/internal/version"
)

// retryBackoff 第 n 次重试前等待 n 倍的时长。
const retryBackoff = 200 * time.Millisecond

// StatusError 服务端返回了非 2xx 状态。
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}

	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Client 渲染服务客户端。
type Client struct {
	base    string
	http    *http.Client
	retries int
}

// New 按配置创建客户端。
func New(cfg config.ClientConfig) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", cfg.URL)
	}

	return &Client{
		base:    strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		retries: max(cfg.Retries, 0),
	}, nil
}

// RenderRequest 一次远程渲染的参数。
type RenderRequest struct {
	Template   string
	Delimiters []string
	Escape     string
	Defines    []string
}

// RenderResponse 远程渲染结果。
type RenderResponse struct {
	Text       string
	Unresolved []string
}

// Health 检查服务端健康状态。
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("server status %q", body.Status)
	}

	return nil
}

// Render 请求服务端渲染模板。
func (c *Client) Render(ctx context.Context, rr RenderRequest) (*RenderResponse, error) {
	query := url.Values{}
	for _, d := range rr.Delimiters {
		query.Add("delimiter", d)
	}
	if rr.Escape != "" {
		query.Set("escape", rr.Escape)
	}
	target := c.base + "/render"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(rr.Template))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		for _, def := range rr.Defines {
			req.Header.Add(server.HeaderDefine, def)
		}

		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}

	return &RenderResponse{
		Text:       string(text),
		Unresolved: resp.Header.Values(server.HeaderUnresolved),
	}, nil
}

// do 发送请求，传输错误与 5xx 会重试；其余非 2xx 直接返回 [StatusError]。
func (c *Client) do(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			slog.Debug("Retrying request", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}

		req, err := newReq()
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", version.AppRawName+"/"+version.GetVersion())

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err

			continue
		}
		if resp.StatusCode/100 == 2 {
			return resp, nil
		}

		statusErr := readStatusError(resp)
		if resp.StatusCode < 500 {
			return nil, statusErr
		}
		lastErr = statusErr
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retries+1, lastErr)
}

func readStatusError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}

	return &StatusError{Code: resp.StatusCode, Message: body.Error}
}

// IsStatus 报告 err 是否为指定状态码的 [StatusError]。
func IsStatus(err error, code int) bool {
	var statusErr *StatusError

	return errors.As(err, &statusErr) && statusErr.Code == code
}
