package action

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	aerrors "go.hackfix.me/bulletin/app/errors"
	"go.hackfix.me/bulletin/web/server/action/schema"
	"go.hackfix.me/bulletin/web/server/middleware"
	"go.hackfix.me/bulletin/web/server/types"
)

const tracerName = "go.hackfix.me/bulletin/web/server/action"

// Action runs the pipeline and returns its response. The steps are run in
// this order, and the first failure ends the pipeline:
//
//  1. A pending builder error, such as a conflict, is returned.
//  2. The HTTP method must be set.
//  3. Middleware are run in order, but only if an action context value is set.
//  4. The query string parameters are validated with the query schema.
//  5. For POST actions, the body is parsed as JSON, and validated with the
//     body schema, if one was declared.
//  6. fn is called with the validated data and the action context value.
//
// Action always returns a response. Failures caused by a *types.Error are
// returned to the client with the error's message and status code. Any other
// failure, including a panic, results in a generic 500 response, and its
// details are only logged.
func (b *Builder[C]) Action(fn Handler[C]) (resp *Response) {
	cfg := b.cfg
	cfg.trace = cfg.trace.with(Step{Type: StepAction})

	ctx := context.Background()
	if cfg.req != nil {
		ctx = cfg.req.Context()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "action",
		trace.WithAttributes(
			attribute.String("action.trace_id", cfg.trace.ID),
			attribute.String("action.method", cfg.method),
		))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			resp = cfg.fail(span, fmt.Errorf("panic: %v", r))
		}
	}()

	var err error
	if resp, err = cfg.run(ctx, fn); err != nil {
		return cfg.fail(span, err)
	}
	span.SetAttributes(attribute.Int("action.status_code", resp.StatusCode))

	return resp
}

func (cfg *config[C]) run(ctx context.Context, fn Handler[C]) (*Response, error) {
	if cfg.err != nil {
		cfg.logger.Warn("action has a pending error",
			"trace_id", cfg.trace.ID, "name", cfg.err.Name, "error", cfg.err.Message)
		return nil, cfg.err
	}

	if cfg.method == "" {
		return nil, types.NewConfigError("No method defined")
	}

	if len(cfg.middleware) > 0 && cfg.hasCtx {
		for _, mw := range cfg.middleware {
			c, err := mw(ctx, cfg.ctx, cfg.req)
			if err != nil {
				return nil, err
			}
			cfg.ctx = c
		}
	}

	in := Input[C]{}

	query, err := cfg.query.Parse(queryRecord(cfg.req))
	if err != nil {
		return nil, types.NewValidationError("Failed to parse query. " + schema.FirstMessage(err))
	}
	in.Query = query

	if cfg.method == http.MethodPost {
		body, err := readJSON(cfg.req, cfg.maxBodySize)
		if err != nil {
			cfg.logger.Error("failed parsing JSON request body, check headers and body sent",
				"trace_id", cfg.trace.ID, "error", err.Error())
			return nil, types.NewValidationError("Parsing failed of req.body")
		}

		if cfg.body != nil {
			input, err := cfg.body.Parse(body)
			if err != nil {
				return nil, types.NewValidationError("Failed to parse body. " + schema.FirstMessage(err))
			}
			in.Body = input
		}
	}

	in.Ctx = cfg.ctx

	if fn == nil {
		return nil, errors.New("no action handler")
	}

	resp, err := fn(ctx, in)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("action handler returned a nil response")
	}

	return resp, nil
}

// fail logs err and converts it into an error response. The log record
// includes the request ID, if the request has one.
func (cfg *config[C]) fail(span trace.Span, err error) *Response {
	span.RecordError(err)

	fields := []any{"trace_id", cfg.trace.ID}
	if cfg.req != nil {
		if requestID := middleware.GetRequestID(cfg.req.Context()); requestID != "" {
			fields = append(fields, "request_id", requestID)
		}
	}

	var terr *types.Error
	if !errors.As(err, &terr) || terr == nil {
		span.SetStatus(codes.Error, "unknown error")
		aerrors.LogWith(cfg.logger, aerrors.NewWithCause("unknown error", err,
			append(fields,
				"kind", "unknown",
				"trace", cfg.trace.Steps,
			)...,
		))
		terr = types.NewError(http.StatusInternalServerError, "Internal Server Error")
	} else {
		if terr.StatusCode == 0 {
			terr = &types.Error{
				StatusCode: http.StatusInternalServerError,
				Name:       terr.Name,
				Message:    terr.Message,
			}
		}
		span.SetStatus(codes.Error, terr.Message)
		aerrors.LogWith(cfg.logger, aerrors.With(errors.New("known error"),
			append(fields,
				"kind", "known",
				"message", terr.Message,
				"name", terr.Name,
				"status_code", terr.StatusCode,
				"trace", cfg.trace.Steps,
			)...,
		))
	}
	span.SetAttributes(attribute.Int("action.status_code", terr.StatusCode))

	return NewErrorResponse(terr)
}
