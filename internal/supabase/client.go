package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/buinguyet/kobizo-code-challenge/internal/config"
)

// Client talks to the hosted auth (/auth/v1) and data (/rest/v1) APIs.
// All heavy lifting — password hashing, token signing, relational storage —
// happens on the other side of this client. Every call is attempted exactly
// once; cancellation comes from the request context.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(cfg config.SupabaseConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) error {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
		"data":     metadata,
	}
	return c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, c.anonKey, "", body, nil)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	query := url.Values{"grant_type": {"password"}}
	body := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, c.anonKey, "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	query := url.Values{"grant_type": {"refresh_token"}}
	body := map[string]string{"refresh_token": refreshToken}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", query, c.anonKey, "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyToken resolves a bearer token to its user. The token is opaque to
// this service; only the hosted auth API can validate it.
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken, "", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Query describes a filtered read or write against a named table. Filters
// are rendered as PostgREST eq. operators.
type Query struct {
	Columns string
	Filters map[string]string
	Order   string
	Limit   int
	Offset  int
}

func (q Query) encode() url.Values {
	values := url.Values{}
	if q.Columns != "" {
		values.Set("select", q.Columns)
	}
	for column, value := range q.Filters {
		values.Set(column, "eq."+value)
	}
	if q.Order != "" {
		values.Set("order", q.Order)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	return values
}

func (c *Client) Select(ctx context.Context, table string, q Query, dest interface{}) error {
	return c.do(ctx, http.MethodGet, "/rest/v1/"+table, q.encode(), c.anonKey, "", nil, dest)
}

// SelectSingle reads at most one row. Zero matching rows is (false, nil),
// not an error — transport failures stay distinguishable from absence.
func (c *Client) SelectSingle(ctx context.Context, table string, q Query, dest interface{}) (bool, error) {
	q.Limit = 1
	var rows []json.RawMessage
	if err := c.Select(ctx, table, q, &rows); err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	if dest != nil {
		if err := json.Unmarshal(rows[0], dest); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Insert writes a record and decodes the stored representation into dest.
func (c *Client) Insert(ctx context.Context, table string, record, dest interface{}) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/"+table, nil, c.anonKey, "return=representation", record, dest)
}

func (c *Client) Update(ctx context.Context, table string, q Query, patch interface{}) error {
	return c.do(ctx, http.MethodPatch, "/rest/v1/"+table, q.encode(), c.anonKey, "", patch, nil)
}

func (c *Client) Delete(ctx context.Context, table string, q Query) error {
	return c.do(ctx, http.MethodDelete, "/rest/v1/"+table, q.encode(), c.anonKey, "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, bearer, prefer string, body, dest interface{}) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if dest != nil && len(data) > 0 {
		return json.Unmarshal(data, dest)
	}
	return nil
}

// The auth and data APIs disagree on their error body shape, so try each
// known key before falling back to the raw body.
func decodeAPIError(status int, data []byte) error {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case body.Msg != "":
			message = body.Msg
		case body.Message != "":
			message = body.Message
		case body.ErrorDescription != "":
			message = body.ErrorDescription
		case body.ErrorCode != "":
			message = body.ErrorCode
		}
	}
	if message == "" {
		message = string(data)
	}
	return &APIError{Status: status, Message: message}
}
