// Package gateway talks to the demo REST API that backs the dashboard.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bizdash/app/models"
	"bizdash/app/scheduler"
)

const (
	// DefaultBaseURL is the public JSONPlaceholder API.
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	// DefaultLatency is the artificial delay applied to simulated writes.
	DefaultLatency = time.Second
	// FallbackUserID owns posts created without an acting user.
	FallbackUserID int64 = 1
)

// Gateway is the set of remote operations the dashboard depends on.
type Gateway interface {
	FetchPosts(ctx context.Context) ([]models.Post, error)
	FetchUsers(ctx context.Context) ([]models.User, error)
	FetchComments(ctx context.Context) ([]models.Comment, error)
	CreatePost(ctx context.Context, input models.PostInput, actingUserID int64) (models.Post, error)
	UpdatePost(ctx context.Context, id int64, input models.PostInput) (models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// NetworkError wraps any failure talking to the API.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

var _ Gateway = (*HTTPGateway)(nil)

// HTTPGateway reads collections over HTTP and simulates writes locally, as
// the demo API does not persist them.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	clock   scheduler.Clock
	ids     *scheduler.IDSource
	latency time.Duration
}

// Option configures an HTTPGateway.
type Option func(*HTTPGateway)

func WithHTTPClient(c *http.Client) Option {
	return func(g *HTTPGateway) { g.client = c }
}

func WithClock(c scheduler.Clock) Option {
	return func(g *HTTPGateway) { g.clock = c }
}

func WithIDSource(ids *scheduler.IDSource) Option {
	return func(g *HTTPGateway) { g.ids = ids }
}

// WithLatency sets the delay of simulated writes. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(g *HTTPGateway) { g.latency = d }
}

// NewHTTPGateway creates a gateway rooted at baseURL. An empty baseURL uses
// DefaultBaseURL.
func NewHTTPGateway(baseURL string, opts ...Option) *HTTPGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	g := &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		clock:   scheduler.RealClock{},
		latency: DefaultLatency,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.ids == nil {
		g.ids = scheduler.NewIDSource(g.clock)
	}
	return g
}

func (g *HTTPGateway) FetchPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := g.getJSON(ctx, "fetch posts", "/posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (g *HTTPGateway) FetchUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := g.getJSON(ctx, "fetch users", "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (g *HTTPGateway) FetchComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := g.getJSON(ctx, "fetch comments", "/comments", &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreatePost returns the post as the API would, with a fresh local id. The
// post belongs to actingUserID, or FallbackUserID when it is zero.
func (g *HTTPGateway) CreatePost(ctx context.Context, input models.PostInput, actingUserID int64) (models.Post, error) {
	if err := g.simulate(ctx, "create post"); err != nil {
		return models.Post{}, err
	}
	if actingUserID == 0 {
		actingUserID = FallbackUserID
	}
	return models.Post{
		ID:     g.ids.Next(),
		Title:  input.Title,
		Body:   input.Body,
		UserID: actingUserID,
	}, nil
}

// UpdatePost returns the edited post. A zero UserID in input keeps it unset;
// callers merge ownership from the existing post.
func (g *HTTPGateway) UpdatePost(ctx context.Context, id int64, input models.PostInput) (models.Post, error) {
	if err := g.simulate(ctx, "update post"); err != nil {
		return models.Post{}, err
	}
	return models.Post{
		ID:     id,
		Title:  input.Title,
		Body:   input.Body,
		UserID: input.UserID,
	}, nil
}

func (g *HTTPGateway) DeletePost(ctx context.Context, id int64) error {
	return g.simulate(ctx, fmt.Sprintf("delete post %d", id))
}

func (g *HTTPGateway) simulate(ctx context.Context, op string) error {
	if err := scheduler.Sleep(ctx, g.clock, g.latency); err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	return nil
}

func (g *HTTPGateway) getJSON(ctx context.Context, op, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
