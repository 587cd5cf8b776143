package ci

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Config configures a Client.
type Config struct {
	// Token is a personal access token. Empty means anonymous requests.
	Token string

	// Owner and Repo identify the repository running the workflow.
	Owner string
	Repo  string

	// BaseURL overrides the API root (default https://api.github.com/).
	BaseURL string

	// HTTPClient is the transport underneath the token source.
	HTTPClient *http.Client

	// Now reports the current time; defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Client queries workflow runs and artifacts for one repository.
type Client struct {
	gh     *github.Client
	owner  string
	repo   string
	now    func() time.Time
	logger *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("owner and repo are required")
	}

	httpClient := cfg.HTTPClient
	if cfg.Token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	gh := github.NewClient(httpClient)

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		gh.BaseURL = u
	}

	c := &Client{
		gh:     gh,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Repository returns "owner/repo".
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

// requestError converts a go-github failure into a *RequestError.
func requestError(op string, resp *github.Response, err error) *RequestError {
	reqErr := &RequestError{Op: op, Err: err}
	if resp != nil {
		reqErr.StatusCode = resp.StatusCode
	}
	return reqErr
}

// ParseRepoFromURL extracts owner and repo from a git remote URL.
func ParseRepoFromURL(remoteURL string) (owner, repo string, err error) {
	// SSH: git@github.com:owner/repo.git
	if strings.HasPrefix(remoteURL, "git@") {
		_, path, ok := strings.Cut(remoteURL, ":")
		if !ok {
			return "", "", fmt.Errorf("invalid SSH URL format: %s", remoteURL)
		}
		parts := strings.Split(strings.TrimSuffix(path, ".git"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("invalid repository path: %s", remoteURL)
		}
		return parts[0], parts[1], nil
	}

	// HTTPS: https://github.com/owner/repo.git
	trimmed := strings.TrimPrefix(remoteURL, "https://")
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimSuffix(strings.TrimSuffix(trimmed, "/"), ".git")

	parts := strings.Split(trimmed, "/")
	if len(parts) < 3 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("invalid URL format: %s", remoteURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
