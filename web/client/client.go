package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	aerrors "go.hackfix.me/bulletin/app/errors"
	"go.hackfix.me/bulletin/web/common"
	stypes "go.hackfix.me/bulletin/web/server/types"
)

// Client is a friendly interface over the Bulletin HTTP API.
type Client struct {
	*http.Client
	baseURL *url.URL
	logger  *slog.Logger
}

// New returns a new client for the server at address, which is either a
// [host]:port value or a URL.
func New(address string, logger *slog.Logger) (*Client, error) {
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("failed parsing server address: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server address '%s'", address)
	}

	return &Client{
		Client:  &http.Client{Timeout: time.Minute},
		baseURL: u,
		logger:  logger.With("component", "web-client"),
	}, nil
}

// do sends a request to the API endpoint at path, and decodes the JSON
// response body into respData. Responses with a non-2xx status code are
// returned as errors with the message sent by the server.
func (c *Client) do(
	ctx context.Context, method, path string, query url.Values, cookies []*http.Cookie,
	reqData, respData any,
) (rerr error) {
	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	errFields := []any{"url", u.String(), "method", method}

	var body io.Reader
	if reqData != nil {
		reqDataJSON, err := json.Marshal(reqData)
		if err != nil {
			return aerrors.NewWithCause("failed marshalling request data", err, errFields...)
		}
		body = bytes.NewReader(reqDataJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return aerrors.NewWithCause("failed creating request", err, errFields...)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	c.logger.Debug("sending request", errFields...)
	resp, err := c.Do(req)
	if err != nil {
		return aerrors.NewWithCause("failed sending request", err, errFields...)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("failed closing response body: %w", err)
		}
	}()
	errFields = append(errFields, "status_code", resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return aerrors.NewWithCause("failed reading response body", err, errFields...)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respErr := &stypes.Error{StatusCode: resp.StatusCode}
		if err = json.Unmarshal(respBody, respErr); err != nil || respErr.Message == "" {
			respErr.Message = http.StatusText(resp.StatusCode)
		}
		return aerrors.With(respErr, errFields...)
	}

	if err = json.Unmarshal(respBody, respData); err != nil {
		return aerrors.NewWithCause("failed unmarshalling response body", err, errFields...)
	}

	return nil
}

// ListPosts returns a single page of posts, newest first.
func (c *Client) ListPosts(ctx context.Context, page, pageSize int) (*stypes.PostsResponse, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("pageSize", fmt.Sprint(pageSize))

	var resp stypes.PostsResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/posts", query, nil, nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// GetPost returns a single post.
func (c *Client) GetPost(ctx context.Context, id string) (*stypes.Post, error) {
	var post stypes.Post
	err := c.do(ctx, http.MethodGet, "/api/v1/posts/"+url.PathEscape(id), nil, nil, nil, &post)
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// CreatePost publishes a new post. The author of the post is the user the
// session token was issued to.
func (c *Client) CreatePost(ctx context.Context, token string, newPost stypes.NewPost) (*stypes.Post, error) {
	cookies := []*http.Cookie{{Name: common.SessionCookie, Value: token}}

	var post stypes.Post
	err := c.do(ctx, http.MethodPost, "/api/v1/posts", nil, cookies, newPost, &post)
	if err != nil {
		return nil, err
	}

	return &post, nil
}
