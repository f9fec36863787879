// Package apiclient はタスクAPIのHTTPクライアントです。
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"task_backend/internal/api"
)

var (
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
	ErrServer          = errors.New("server error")
)

// APIError はサーバーが返したエラー応答です。
type APIError struct {
	Status  int
	Message string
	Fields  []api.FieldError
	kind    error
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Message)
		}
		return strings.Join(msgs, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("http %d", e.Status)
}

func (e *APIError) Unwrap() error { return e.kind }

// errorBody は成功しなかった応答の両形式を受け取ります。
type errorBody struct {
	Error  string           `json:"error"`
	Errors []api.FieldError `json:"errors"`
}

// ListParams は一覧取得の絞り込みと並び順です。空の値は送信しません。
type ListParams struct {
	Status   string
	Priority string
	Sort     string
}

// Client はタスクAPIのRESTクライアントです。
type Client struct {
	http  *resty.Client
	token string
}

// New はbaseURLに対するクライアントを生成します。スキームが無い場合はhttpを補います。
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api address: %w", err)
	}
	c := resty.New().
		SetBaseURL(u).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty address")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("address must include host")
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken は以降のリクエストに付与するBearerトークンを設定します。
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
	c.http.SetAuthToken(c.token)
}

// Token は現在のトークンを返します。
func (c *Client) Token() string { return c.token }

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var eb errorBody
	req := c.http.R().SetContext(ctx).SetError(&eb)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return nil
	}
	return &APIError{
		Status:  resp.StatusCode(),
		Message: eb.Error,
		Fields:  eb.Errors,
		kind:    kindFor(resp.StatusCode()),
	}
}

func kindFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		return ErrServer
	}
}

// Register はユーザーを登録し、返されたトークンを保持します。
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Login はログインし、返されたトークンを保持します。
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Me は現在のユーザーを返します。
func (c *Client) Me(ctx context.Context) (*api.UserResponse, error) {
	var out api.MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListTasks はタスク一覧を取得します。
func (c *Client) ListTasks(ctx context.Context, p ListParams) ([]api.TaskResponse, error) {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Priority != "" {
		q.Set("priority", p.Priority)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out api.TaskListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// GetTask は1件のタスクを取得します。
func (c *Client) GetTask(ctx context.Context, id string) (*api.TaskResponse, error) {
	var out api.TaskEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// CreateTask はタスクを作成します。
func (c *Client) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.TaskResponse, error) {
	var out api.TaskEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// UpdateTask はタスクの一部フィールドを更新します。
func (c *Client) UpdateTask(ctx context.Context, id string, req api.UpdateTaskRequest) (*api.TaskResponse, error) {
	var out api.TaskEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// DeleteTask はタスクを削除します。
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// Stats はダッシュボード統計を取得します。
func (c *Client) Stats(ctx context.Context) (*api.StatsResponse, error) {
	var out api.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks/stats/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
