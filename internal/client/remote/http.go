package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/client/model"
)

// 4xx（401以外）のエラー
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the storefront echo API. It satisfies CartStore, CartReplacer,
// AuthClient, ActivitySink and DataSink.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var (
	_ CartStore    = (*Client)(nil)
	_ CartReplacer = (*Client)(nil)
	_ AuthClient   = (*Client)(nil)
	_ ActivitySink = (*Client)(nil)
	_ DataSink     = (*Client)(nil)
)

// DI
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type cartBody struct {
	Items []model.CartLine `json:"items"`
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, model.ErrRemoteUnavailable, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, model.ErrRemoteUnavailable, err)
	}

	if res.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		c.logger.Debug("api request failed", "method", method, "path", path, "status", res.StatusCode, "error", eb.Error)

		switch {
		case res.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%s %s: %w", method, path, model.ErrUnauthorized)
		case res.StatusCode >= 500:
			return fmt.Errorf("%s %s: %w: status %d", method, path, model.ErrRemoteUnavailable, res.StatusCode)
		default:
			return &APIError{Status: res.StatusCode, Message: eb.Error}
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: decode: %w", method, path, err)
		}
	}
	return nil
}

// ===== cart =====

func (c *Client) List(ctx context.Context, id model.Identity) ([]model.CartLine, error) {
	var out cartBody
	if err := c.do(ctx, http.MethodGet, "/cart", id.AccessToken, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		return []model.CartLine{}, nil
	}
	return out.Items, nil
}

func (c *Client) Add(ctx context.Context, id model.Identity, productID string, qty int64) error {
	return c.do(ctx, http.MethodPost, "/cart", id.AccessToken, map[string]any{
		"product_id": productID,
		"quantity":   qty,
	}, nil)
}

func (c *Client) SetQuantity(ctx context.Context, id model.Identity, productID string, qty int64) error {
	return c.do(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(productID), id.AccessToken, map[string]any{
		"quantity": qty,
	}, nil)
}

func (c *Client) Remove(ctx context.Context, id model.Identity, productID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(productID), id.AccessToken, nil, nil)
}

// 全削除してから lines を入れ直す
func (c *Client) ReplaceCart(ctx context.Context, id model.Identity, lines []model.CartLine) error {
	if err := c.do(ctx, http.MethodDelete, "/cart", id.AccessToken, nil, nil); err != nil {
		return err
	}
	for _, l := range lines {
		if err := c.SetQuantity(ctx, id, l.ProductID, l.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// ===== auth =====

type userBody struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (model.Identity, error) {
	var out struct {
		User userBody `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return model.Identity{}, fmt.Errorf("register: %w", model.ErrDuplicateRegistration)
		}
		return model.Identity{}, err
	}
	return model.Identity{ID: out.User.ID, Name: out.User.Name, Email: out.User.Email}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (model.Identity, error) {
	var out struct {
		User  userBody `json:"user"`
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
			return model.Identity{}, fmt.Errorf("login: %w", model.ErrUnauthorized)
		}
		return model.Identity{}, err
	}
	return model.Identity{
		ID:          out.User.ID,
		Name:        out.User.Name,
		Email:       out.User.Email,
		AccessToken: out.Token.AccessToken,
	}, nil
}

func (c *Client) Logout(ctx context.Context, id model.Identity) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", id.AccessToken, nil, nil)
}

func (c *Client) Session(ctx context.Context, id model.Identity) (model.SessionRecord, error) {
	var out struct {
		Session model.SessionRecord `json:"session"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/session", id.AccessToken, nil, &out); err != nil {
		return model.SessionRecord{}, err
	}
	return out.Session, nil
}

// ===== activity / data =====

func (c *Client) LogActivity(ctx context.Context, id model.Identity, action string, details any) error {
	return c.do(ctx, http.MethodPost, "/user/activity", id.AccessToken, map[string]any{
		"action":  action,
		"details": details,
	}, nil)
}

func (c *Client) SaveUserData(ctx context.Context, rec DataRecord) error {
	return c.do(ctx, http.MethodPost, "/api/save-user-data", "", rec, nil)
}

// Ping reports whether the API answers /healthz.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

// Online adapts Ping to datalogger.Probe.
func (c *Client) Online(ctx context.Context) bool {
	return c.Ping(ctx) == nil
}
