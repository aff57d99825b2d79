package action

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/bulletin/web/server/action/schema"
	"go.hackfix.me/bulletin/web/server/middleware"
	"go.hackfix.me/bulletin/web/server/types"
)

// safeBuffer is a bytes.Buffer safe for concurrent use.
type safeBuffer struct {
	mx  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.String()
}

func newTestLogger() (*slog.Logger, *safeBuffer) {
	buf := &safeBuffer{}
	return slog.New(slog.NewJSONHandler(buf, nil)), buf
}

// logRecords returns the JSON log records written to buf.
func logRecords(t *testing.T, buf *safeBuffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}

	return records
}

func errorMessage(t *testing.T, resp *Response) string {
	t.Helper()

	data, err := json.Marshal(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body, 1)
	msg, ok := body["message"].(string)
	require.True(t, ok)

	return msg
}

var okResp = JSON(http.StatusOK, map[string]bool{"success": true})

func okHandler(context.Context, Input[testCtx]) (*Response, error) {
	return okResp, nil
}

func TestActionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		req        func() *http.Request
		build      func(*http.Request, *slog.Logger) *Builder[testCtx]
		handler    Handler[testCtx]
		expStatus  int
		expMessage string
		expPrefix  string
		expKind    string
	}{
		{
			name: "err/body_schema_twice",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).
					Method(http.MethodPost).
					JSON(schema.Of[postInput]()).
					JSON(schema.Of[postInput]())
			},
			handler:    okHandler,
			expStatus:  http.StatusUnauthorized,
			expMessage: "cannot chain body-parsing declarations",
			expKind:    "known",
		},
		{
			name: "err/body_schema_twice_nil_handler",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodPost, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).
					JSON(schema.Of[postInput]()).
					JSON(schema.Void())
			},
			handler:    nil,
			expStatus:  http.StatusUnauthorized,
			expMessage: "cannot chain body-parsing declarations",
			expKind:    "known",
		},
		{
			name: "err/no_method",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Query(schema.Query[pageQuery]())
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "No method defined",
			expKind:    "known",
		},
		{
			name: "err/unsupported_method",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodPut, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodPut)
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Unsupported method PUT",
			expKind:    "known",
		},
		{
			name: "err/query_invalid",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/?page=abc", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).
					Method(http.MethodGet).
					Query(schema.Query[pageQuery]())
			},
			handler:   okHandler,
			expStatus: http.StatusBadRequest,
			expPrefix: "Failed to parse query. ",
			expKind:   "known",
		},
		{
			name: "err/body_wrong_type",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title": 123}`))
			},
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).
					Method(http.MethodPost).
					JSON(schema.Of[postInput]())
			},
			handler:   okHandler,
			expStatus: http.StatusBadRequest,
			expPrefix: "Failed to parse body. ",
			expKind:   "known",
		},
		{
			name: "err/body_missing_field",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
			},
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).
					Method(http.MethodPost).
					JSON(schema.Of[postInput]())
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Failed to parse body. title is required",
			expKind:    "known",
		},
		{
			name: "err/malformed_json_with_schema",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title": `))
			},
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).
					Method(http.MethodPost).
					JSON(schema.Of[postInput]())
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Parsing failed of req.body",
			expKind:    "known",
		},
		{
			name: "err/malformed_json_without_schema",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
			},
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodPost)
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Parsing failed of req.body",
			expKind:    "known",
		},
		{
			name: "err/trailing_json",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"a"} {}`))
			},
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodPost)
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Parsing failed of req.body",
			expKind:    "known",
		},
		{
			name: "err/empty_body",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodPost, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodPost)
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Parsing failed of req.body",
			expKind:    "known",
		},
		{
			name: "err/body_too_large",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"abcdefghij"}`))
			},
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l), WithMaxBodySize[testCtx](8)).Method(http.MethodPost)
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Parsing failed of req.body",
			expKind:    "known",
		},
		{
			name: "err/body_too_large_number",
			req: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456789012"))
			},
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l), WithMaxBodySize[testCtx](4)).Method(http.MethodPost)
			},
			handler:    okHandler,
			expStatus:  http.StatusBadRequest,
			expMessage: "Parsing failed of req.body",
			expKind:    "known",
		},
		{
			name: "err/middleware_known_error",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l), WithContext(testCtx{})).
					Method(http.MethodGet).
					Use(func(context.Context, testCtx, *http.Request) (testCtx, error) {
						return testCtx{}, types.NewError(http.StatusUnauthorized, "Failed to parse")
					})
			},
			handler:    okHandler,
			expStatus:  http.StatusUnauthorized,
			expMessage: "Failed to parse",
			expKind:    "known",
		},
		{
			name: "err/middleware_unknown_error",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l), WithContext(testCtx{})).
					Method(http.MethodGet).
					Use(func(context.Context, testCtx, *http.Request) (testCtx, error) {
						return testCtx{}, errors.New("database is down")
					})
			},
			handler:    okHandler,
			expStatus:  http.StatusInternalServerError,
			expMessage: "Internal Server Error",
			expKind:    "unknown",
		},
		{
			name: "err/handler_unknown_error",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodGet)
			},
			handler: func(context.Context, Input[testCtx]) (*Response, error) {
				return nil, errors.New("secret detail")
			},
			expStatus:  http.StatusInternalServerError,
			expMessage: "Internal Server Error",
			expKind:    "unknown",
		},
		{
			name: "err/handler_known_error",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodGet)
			},
			handler: func(context.Context, Input[testCtx]) (*Response, error) {
				return nil, types.NewError(http.StatusNotFound, "post not found")
			},
			expStatus:  http.StatusNotFound,
			expMessage: "post not found",
			expKind:    "known",
		},
		{
			name: "err/handler_wrapped_known_error",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodGet)
			},
			handler: func(context.Context, Input[testCtx]) (*Response, error) {
				return nil, fmt.Errorf("failed loading post: %w",
					&types.Error{StatusCode: http.StatusForbidden, Message: "Forbidden"})
			},
			expStatus:  http.StatusForbidden,
			expMessage: "Forbidden",
			expKind:    "known",
		},
		{
			name: "err/handler_nil_response",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodGet)
			},
			handler: func(context.Context, Input[testCtx]) (*Response, error) {
				return nil, nil
			},
			expStatus:  http.StatusInternalServerError,
			expMessage: "Internal Server Error",
			expKind:    "unknown",
		},
		{
			name: "err/handler_panic",
			req:  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) },
			build: func(r *http.Request, l *slog.Logger) *Builder[testCtx] {
				return New(r, WithLogger[testCtx](l)).Method(http.MethodGet)
			},
			handler: func(context.Context, Input[testCtx]) (*Response, error) {
				panic("boom")
			},
			expStatus:  http.StatusInternalServerError,
			expMessage: "Internal Server Error",
			expKind:    "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, logBuf := newTestLogger()
			b := tt.build(tt.req(), logger)
			resp := b.Action(tt.handler)

			require.NotNil(t, resp)
			assert.Equal(t, tt.expStatus, resp.StatusCode)
			msg := errorMessage(t, resp)
			if tt.expPrefix != "" {
				assert.True(t, strings.HasPrefix(msg, tt.expPrefix), "message: %q", msg)
				assert.Greater(t, len(msg), len(tt.expPrefix))
			} else {
				assert.Equal(t, tt.expMessage, msg)
			}

			records := logRecords(t, logBuf)
			require.NotEmpty(t, records)
			last := records[len(records)-1]
			assert.Equal(t, "ERROR", last["level"])
			assert.Equal(t, b.cfg.trace.ID, last["trace_id"])
			assert.Equal(t, tt.expKind, last["kind"])
			steps, ok := last["trace"].([]any)
			require.True(t, ok, "trace: %#v", last["trace"])
			assert.Len(t, steps, len(b.cfg.trace.Steps)+1)
			if tt.expKind == "known" {
				assert.Equal(t, "known error", last["msg"])
				assert.Equal(t, msg, last["message"])
				assert.EqualValues(t, tt.expStatus, last["status_code"])
				assert.NotEmpty(t, last["name"])
			} else {
				assert.Equal(t, "unknown error", last["msg"])
				assert.NotEmpty(t, last["cause"])
			}
		})
	}
}

func TestActionQueryDefaults(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)

	var got Input[testCtx]
	resp := New(req, WithContext(testCtx{})).
		Method(http.MethodGet).
		Query(schema.Query[pageQuery]()).
		Action(func(_ context.Context, in Input[testCtx]) (*Response, error) {
			got = in
			return okResp, nil
		})

	assert.Same(t, okResp, resp)
	assert.Equal(t, pageQuery{Page: 0, PageSize: 25}, got.Query)
	q, ok := QueryAs[pageQuery](got)
	assert.True(t, ok)
	assert.Equal(t, 25, q.PageSize)
	assert.Nil(t, got.Body)
}

func TestActionQueryValues(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/posts?page=2&pageSize=10&page=7", nil)

	var got Input[testCtx]
	resp := New[testCtx](req).
		Method(http.MethodGet).
		Query(schema.Query[pageQuery]()).
		Action(func(_ context.Context, in Input[testCtx]) (*Response, error) {
			got = in
			return okResp, nil
		})

	assert.Same(t, okResp, resp)
	assert.Equal(t, pageQuery{Page: 2, PageSize: 10}, got.Query)
}

func TestActionBody(t *testing.T) {
	t.Parallel()

	t.Run("ok/with_schema", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"hello"}`))
		var got Input[testCtx]
		resp := New[testCtx](req).
			Method(http.MethodPost).
			JSON(schema.Of[postInput]()).
			Action(func(_ context.Context, in Input[testCtx]) (*Response, error) {
				got = in
				return okResp, nil
			})

		assert.Same(t, okResp, resp)
		body, ok := BodyAs[postInput](got)
		require.True(t, ok)
		assert.Equal(t, postInput{Title: "hello"}, body)
		assert.Nil(t, got.Query)
	})

	t.Run("ok/without_schema_body_discarded", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"hello"}`))
		var got Input[testCtx]
		called := false
		resp := New[testCtx](req).
			Method(http.MethodPost).
			Action(func(_ context.Context, in Input[testCtx]) (*Response, error) {
				called = true
				got = in
				return okResp, nil
			})

		assert.Same(t, okResp, resp)
		assert.True(t, called)
		assert.Nil(t, got.Body)
	})

	t.Run("ok/get_ignores_body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", strings.NewReader(`not json`))
		var got Input[testCtx]
		resp := New[testCtx](req).
			Method(http.MethodGet).
			JSON(schema.Of[postInput]()).
			Action(func(_ context.Context, in Input[testCtx]) (*Response, error) {
				got = in
				return okResp, nil
			})

		assert.Same(t, okResp, resp)
		assert.Nil(t, got.Body)
	})
}

func TestActionMiddlewareOrder(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var calls []string

	m1 := func(_ context.Context, c testCtx, r *http.Request) (testCtx, error) {
		assert.Same(t, req, r)
		assert.Nil(t, c.User)
		calls = append(calls, "m1")
		c.User = &user{ID: "a"}
		return c, nil
	}
	m2 := func(_ context.Context, c testCtx, _ *http.Request) (testCtx, error) {
		require.NotNil(t, c.User)
		assert.Equal(t, "a", c.User.ID)
		calls = append(calls, "m2")
		return testCtx{User: &user{ID: "b"}}, nil
	}

	initial := testCtx{User: nil}
	var handlerUser string
	resp := New(req, WithContext(initial)).
		Use(m1).
		Use(m2).
		Method(http.MethodGet).
		Action(func(_ context.Context, in Input[testCtx]) (*Response, error) {
			require.NotNil(t, in.Ctx.User)
			handlerUser = in.Ctx.User.ID
			return okResp, nil
		})

	assert.Same(t, okResp, resp)
	assert.Equal(t, []string{"m1", "m2"}, calls)
	assert.Equal(t, "b", handlerUser)
	assert.Nil(t, initial.User)
}

func TestActionMiddlewareStopsOnError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	var calls []string
	failing := func(context.Context, testCtx, *http.Request) (testCtx, error) {
		calls = append(calls, "failing")
		return testCtx{}, types.NewError(http.StatusForbidden, "forbidden")
	}
	next := func(_ context.Context, c testCtx, _ *http.Request) (testCtx, error) {
		calls = append(calls, "next")
		return c, nil
	}

	handlerCalled := false
	resp := New(req, WithContext(testCtx{}), WithLogger[testCtx](slog.New(slog.DiscardHandler))).
		Method(http.MethodGet).
		Use(failing).
		Use(next).
		Action(func(context.Context, Input[testCtx]) (*Response, error) {
			handlerCalled = true
			return okResp, nil
		})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, []string{"failing"}, calls)
	assert.False(t, handlerCalled)
}

// Middleware only run when an action context value was provided.
func TestActionMiddlewareSkippedWithoutContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mwCalled := false
	var got Input[testCtx]
	resp := New[testCtx](req).
		Use(func(_ context.Context, c testCtx, _ *http.Request) (testCtx, error) {
			mwCalled = true
			c.User = &user{ID: "a"}
			return c, nil
		}).
		Method(http.MethodGet).
		Action(func(_ context.Context, in Input[testCtx]) (*Response, error) {
			got = in
			return okResp, nil
		})

	assert.Same(t, okResp, resp)
	assert.False(t, mwCalled)
	assert.Nil(t, got.Ctx.User)
}

func TestActionDoesNotChangeBuilder(t *testing.T) {
	t.Parallel()

	counter := func(_ context.Context, c struct{ N int }, _ *http.Request) (struct{ N int }, error) {
		c.N++
		return c, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	b := New(req, WithContext(struct{ N int }{})).Use(counter).Use(counter).Method(http.MethodGet)
	stepsBefore := len(b.cfg.trace.Steps)

	for range 2 {
		var n int
		b.Action(func(_ context.Context, in Input[struct{ N int }]) (*Response, error) {
			n = in.Ctx.N
			return okResp, nil
		})
		assert.Equal(t, 2, n)
	}

	assert.Equal(t, 0, b.cfg.ctx.N)
	assert.Len(t, b.cfg.trace.Steps, stepsBefore)
}

func TestActionContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	parent := context.WithValue(context.Background(), key{}, "value")
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(parent)

	var mwVal, handlerVal any
	New(req, WithContext(testCtx{})).
		Use(func(ctx context.Context, c testCtx, _ *http.Request) (testCtx, error) {
			mwVal = ctx.Value(key{})
			return c, nil
		}).
		Method(http.MethodGet).
		Action(func(ctx context.Context, _ Input[testCtx]) (*Response, error) {
			handlerVal = ctx.Value(key{})
			return okResp, nil
		})

	assert.Equal(t, "value", mwVal)
	assert.Equal(t, "value", handlerVal)
}

func TestActionPendingErrorLogged(t *testing.T) {
	t.Parallel()

	logger, logBuf := newTestLogger()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	pending := types.NewConfigError("configured to fail")
	resp := New(req, WithLogger[testCtx](logger), WithError[testCtx](pending)).
		Method(http.MethodGet).
		Action(okHandler)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "configured to fail", errorMessage(t, resp))

	records := logRecords(t, logBuf)
	require.Len(t, records, 2)
	assert.Equal(t, "action has a pending error", records[0]["msg"])
	assert.Equal(t, types.ErrorNameConfig, records[0]["name"])
	assert.Equal(t, "known error", records[1]["msg"])
}

func TestActionFailureRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		reqID        string
		expRequestID bool
	}{
		{name: "ok/client_id", reqID: "0b5f3bd4-3c3a-4a2e-9a55-07c7c2cb3c0e", expRequestID: true},
		{name: "ok/generated_id", expRequestID: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger, logBuf := newTestLogger()
			h := middleware.RequestID(Handle(func(r *http.Request) *Response {
				return New(r, WithLogger[testCtx](logger)).
					Method(http.MethodGet).
					Action(func(context.Context, Input[testCtx]) (*Response, error) {
						return nil, types.NewError(http.StatusNotFound, "Post not found")
					})
			}, logger))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.reqID != "" {
				req.Header.Set(middleware.RequestIDHeader, tt.reqID)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			respID := rec.Header().Get(middleware.RequestIDHeader)
			require.NotEmpty(t, respID)
			if tt.reqID != "" {
				assert.Equal(t, tt.reqID, respID)
			}

			records := logRecords(t, logBuf)
			require.NotEmpty(t, records)
			last := records[len(records)-1]
			assert.Equal(t, "known error", last["msg"])
			assert.Equal(t, respID, last["request_id"])
		})
	}

	t.Run("ok/no_request_id", func(t *testing.T) {
		t.Parallel()

		logger, logBuf := newTestLogger()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		New(req, WithLogger[testCtx](logger)).Action(okHandler)

		records := logRecords(t, logBuf)
		require.NotEmpty(t, records)
		last := records[len(records)-1]
		assert.Equal(t, "known error", last["msg"])
		assert.NotContains(t, last, "request_id")
	})

	t.Run("ok/no_request", func(t *testing.T) {
		t.Parallel()

		logger, logBuf := newTestLogger()
		resp := New[testCtx](nil, WithLogger[testCtx](logger)).
			Method(http.MethodGet).
			Action(func(context.Context, Input[testCtx]) (*Response, error) {
				return nil, errors.New("boom")
			})

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		records := logRecords(t, logBuf)
		require.NotEmpty(t, records)
		last := records[len(records)-1]
		assert.Equal(t, "unknown error", last["msg"])
		assert.NotContains(t, last, "request_id")
	})
}

func TestActionHandleWrites(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	route := func(r *http.Request) *Response {
		return New(r, WithLogger[testCtx](logger)).Action(okHandler)
	}

	rec := httptest.NewRecorder()
	Handle(route, logger)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"No method defined"}`, rec.Body.String())
}
