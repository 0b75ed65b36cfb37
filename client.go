package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/service"
)

// APIError is a non 2xx answer of the site server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("site: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("site: %d %s", e.StatusCode, e.Message)
}

// Rejected reports whether the server refused the request body.
func (e *APIError) Rejected() bool {
	return e.StatusCode == http.StatusBadRequest
}

// Client talks to the site server over its JSON API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the admin token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) GetContent(ctx context.Context) (*model.SiteDocument, error) {
	var doc model.SiteDocument
	if err := c.do(ctx, http.MethodGet, "/api/site-data", nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) SaveContent(ctx context.Context, doc *model.SiteDocument) error {
	return c.do(ctx, http.MethodPost, "/api/site-data", doc, nil)
}

// Login exchanges the admin password for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, password string) (string, time.Time, error) {
	var res struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, &res); err != nil {
		return "", time.Time{}, err
	}
	c.token = res.Token
	return res.Token, res.ExpiresAt, nil
}

func (c *Client) Analyze(ctx context.Context, req service.AnalysisRequest) (*service.Analysis, error) {
	var res service.Analysis
	if err := c.do(ctx, http.MethodPost, "/api/analyze", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var msg struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &msg) == nil {
			apiErr.Message = msg.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
