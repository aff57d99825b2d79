package action

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"runtime"
	"slices"

	"go.hackfix.me/bulletin/web/server/action/schema"
	"go.hackfix.me/bulletin/web/server/types"
)

const defaultMaxBodySize = 1024 * 1024 // 1MiB

// Middleware receives the current action context value and returns its
// replacement. Middleware run sequentially in the order they were added, so
// each one sees the value returned by the previous one.
type Middleware[C any] func(ctx context.Context, c C, req *http.Request) (C, error)

// Handler is the final function of an action pipeline. Its response is
// returned as is when it succeeds.
type Handler[C any] func(ctx context.Context, in Input[C]) (*Response, error)

// Input is the validated request data passed to a Handler.
type Input[C any] struct {
	// Query is the value produced by the query schema, or nil if no query
	// schema was declared.
	Query any
	// Body is the value produced by the body schema. It is nil for methods
	// other than POST, or if no body schema was declared.
	Body any
	// Ctx is the action context value, after all middleware have run.
	Ctx C
}

// QueryAs returns the parsed query of in as type T. It returns the zero value
// and false if the query wasn't produced by a schema of type T.
func QueryAs[T, C any](in Input[C]) (T, bool) {
	v, ok := in.Query.(T)
	return v, ok
}

// BodyAs returns the parsed body of in as type T. It returns the zero value
// and false if the body wasn't produced by a schema of type T.
func BodyAs[T, C any](in Input[C]) (T, bool) {
	v, ok := in.Body.(T)
	return v, ok
}

// config is the immutable state of a Builder. Every builder call copies it and
// replaces a single field.
type config[C any] struct {
	req         *http.Request
	query       schema.Schema
	body        schema.Schema
	bodySet     bool
	method      string
	ctx         C
	hasCtx      bool
	err         *types.Error
	middleware  []Middleware[C]
	trace       Trace
	logger      *slog.Logger
	maxBodySize int64
}

// Option overrides a default of a new Builder.
type Option[C any] func(*config[C])

// WithContext sets the initial action context value. The value is copied, so
// a struct passed by the caller is not modified by middleware. Note that
// pointers and maps within it are still shared.
//
// Middleware only run if an action context value was set.
func WithContext[C any](c C) Option[C] {
	return func(cfg *config[C]) {
		cfg.ctx = c
		cfg.hasCtx = true
	}
}

// WithMethod sets the HTTP method of the action.
func WithMethod[C any](method string) Option[C] {
	return func(cfg *config[C]) {
		if method != "" {
			cfg.method = method
		}
	}
}

// WithQuery sets the schema used to validate query string parameters.
func WithQuery[C any](s schema.Schema) Option[C] {
	return func(cfg *config[C]) {
		if s != nil {
			cfg.query = s
		}
	}
}

// WithJSON sets the schema used to validate the JSON request body.
func WithJSON[C any](s schema.Schema) Option[C] {
	return func(cfg *config[C]) {
		if s != nil {
			cfg.body = s
			cfg.bodySet = true
		}
	}
}

// WithError sets an error that is returned when the action runs.
func WithError[C any](err *types.Error) Option[C] {
	return func(cfg *config[C]) {
		if err != nil {
			cfg.err = err
		}
	}
}

// WithMiddleware sets the initial middleware list.
func WithMiddleware[C any](fns ...Middleware[C]) Option[C] {
	return func(cfg *config[C]) {
		if len(fns) > 0 {
			cfg.middleware = slices.Clone(fns)
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger[C any](logger *slog.Logger) Option[C] {
	return func(cfg *config[C]) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithMaxBodySize limits the amount of bytes read from the request body.
func WithMaxBodySize[C any](size int64) Option[C] {
	return func(cfg *config[C]) {
		if size > 0 {
			cfg.maxBodySize = size
		}
	}
}

// WithTrace continues an existing trace instead of starting a new one. The ID
// and steps are reused as is.
func WithTrace[C any](t Trace) Option[C] {
	return func(cfg *config[C]) {
		if t.ID != "" {
			cfg.trace = t.clone()
		}
	}
}

// Builder assembles an action pipeline for a single request. A Builder never
// changes after it's created: every method returns a new Builder, so partially
// configured builders can be shared and extended independently.
type Builder[C any] struct {
	cfg config[C]
}

// New returns a Builder for req. By default, the query is validated with
// schema.Void, no body schema or method is set, and there is no action context
// value, error or middleware.
func New[C any](req *http.Request, opts ...Option[C]) *Builder[C] {
	cfg := config[C]{
		req:         req,
		query:       schema.Void(),
		logger:      slog.Default(),
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.trace.ID == "" {
		cfg.trace = newTrace()
	}

	return &Builder[C]{cfg: cfg}
}

// Trace returns a copy of the builder's trace.
func (b *Builder[C]) Trace() Trace {
	return b.cfg.trace.clone()
}

// Use returns a new Builder with fn appended to the middleware list.
func (b *Builder[C]) Use(fn Middleware[C]) *Builder[C] {
	cfg := b.cfg
	cfg.trace = cfg.trace.with(Step{Type: StepUse, Data: funcName(fn)})
	cfg.middleware = slices.Concat(cfg.middleware, []Middleware[C]{fn})

	return &Builder[C]{cfg: cfg}
}

// Query returns a new Builder that validates query string parameters with s.
func (b *Builder[C]) Query(s schema.Schema) *Builder[C] {
	cfg := b.cfg
	cfg.trace = cfg.trace.with(Step{Type: StepQuery, Data: schema.Keys(s)})
	if s == nil {
		s = schema.Void()
	}
	cfg.query = s

	return &Builder[C]{cfg: cfg}
}

// JSON returns a new Builder that validates the JSON request body with s.
// The body schema can only be declared once per lineage, even if s is nil, in
// which case the body is parsed but not validated. Declaring it again
// doesn't fail here, but the action will fail with a conflict error.
func (b *Builder[C]) JSON(s schema.Schema) *Builder[C] {
	cfg := b.cfg
	cfg.trace = cfg.trace.with(Step{Type: StepJSON, Data: schema.Keys(s)})
	if cfg.bodySet {
		cfg.err = types.NewConflictError("cannot chain body-parsing declarations")
	}
	cfg.body = s
	cfg.bodySet = true

	return &Builder[C]{cfg: cfg}
}

// Method returns a new Builder with the HTTP method of the action set to
// method. Only http.MethodGet and http.MethodPost are supported, and an empty
// string unsets the method.
func (b *Builder[C]) Method(method string) *Builder[C] {
	cfg := b.cfg
	cfg.trace = cfg.trace.with(Step{Type: StepMethod, Data: method})
	switch method {
	case "", http.MethodGet, http.MethodPost:
	default:
		if cfg.err == nil {
			cfg.err = types.NewConfigError(fmt.Sprintf("Unsupported method %s", method))
		}
	}
	cfg.method = method

	return &Builder[C]{cfg: cfg}
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.IsNil() {
		return "<nil>"
	}
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}

	return "<unknown>"
}
