package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/taskcal/internal/model"
)

const resourcePath = "/todo"

var ErrNotFound = errors.New("api: task not found")

// StatusError reports a non-2xx response.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: %s: unexpected status %d", e.Op, e.Code)
	}
	return fmt.Sprintf("api: %s: unexpected status %d: %s", e.Op, e.Code, e.Body)
}

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Location *time.Location
	Logger   *zap.Logger
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// Client talks to the remote /todo resource. Every method is a single
// request; nothing is cached.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	loc     *time.Location
	log     *zap.Logger
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("api: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{base: base, http: hc, timeout: opts.Timeout, loc: opts.Location, log: opts.Logger.Named("api")}, nil
}

func (c *Client) Location() *time.Location {
	return c.loc
}

func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var records []Record
	if err := c.do(ctx, "list", http.MethodGet, "", nil, &records); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(records))
	for _, r := range records {
		out = append(out, r.Task(c.loc))
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (model.Task, error) {
	var record Record
	if err := c.do(ctx, "get", http.MethodGet, id, nil, &record); err != nil {
		return model.Task{}, err
	}
	return record.Task(c.loc), nil
}

func (c *Client) Create(ctx context.Context, t model.Task) (model.Task, error) {
	in := FromTask(t)
	in.ID = ""
	var record Record
	if err := c.do(ctx, "create", http.MethodPost, "", in, &record); err != nil {
		return model.Task{}, err
	}
	return record.Task(c.loc), nil
}

func (c *Client) Update(ctx context.Context, id string, p Patch) (model.Task, error) {
	var record Record
	if err := c.do(ctx, "update", http.MethodPut, id, p, &record); err != nil {
		return model.Task{}, err
	}
	return record.Task(c.loc), nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, id, nil, nil)
}

func (c *Client) endpoint(id string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + resourcePath
	if id != "" {
		u.Path += "/" + url.PathEscape(id)
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, id string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s: encode: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(id), reader)
	if err != nil {
		return fmt.Errorf("api: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.String("id", id), zap.Error(err))
		return fmt.Errorf("api: %s: %w", op, err)
	}
	defer resp.Body.Close()
	c.log.Debug("request done",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: %s: decode: %w", op, err)
	}
	return nil
}
