package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name, so that issue paths match the keys
	// clients send.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	return v
}

type options struct {
	coerce bool
	strict bool
}

// Option configures a Struct schema.
type Option func(*options)

// Coerce converts scalar input values to the declared field types, e.g. the
// string "5" into the int 5. It's meant for query string parameters, which
// are always strings.
func Coerce() Option {
	return func(o *options) {
		o.coerce = true
	}
}

// Strict rejects input keys that don't map to a field.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Struct is a schema for values of the Go type T. Fields are matched by their
// `json` tag name, default values are set from `default` tags, and rules are
// declared with `validate` tags.
type Struct[T any] struct {
	opts options
}

var _ Schema = (*Struct[struct{}])(nil)

// Of returns a schema that produces values of type T.
func Of[T any](opts ...Option) *Struct[T] {
	s := &Struct[T]{}
	for _, opt := range opts {
		opt(&s.opts)
	}

	return s
}

// Query returns a schema for query string parameters that produces values of
// type T. It is equivalent to Of[T](Coerce()).
func Query[T any](opts ...Option) *Struct[T] {
	return Of[T](append([]Option{Coerce()}, opts...)...)
}

// Shape implements the Schema interface.
func (s *Struct[T]) Shape() reflect.Type {
	return reflect.TypeFor[T]()
}

// Parse implements the Schema interface. On success the returned value is of
// type T.
func (s *Struct[T]) Parse(data any) (any, error) {
	if data == nil {
		return nil, Issues{{Message: "expected a value, received null"}}
	}

	var out T
	isStruct := reflect.TypeFor[T]().Kind() == reflect.Struct
	if isStruct {
		if err := defaults.Set(&out); err != nil {
			return nil, fmt.Errorf("failed setting default values: %w", err)
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: s.opts.coerce,
		ErrorUnused:      s.opts.strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed creating decoder: %w", err)
	}

	if err = dec.Decode(data); err != nil {
		return nil, decodeIssues(err)
	}

	if isStruct {
		if err = validate.Struct(out); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return nil, ruleIssues(verrs)
			}
			return nil, fmt.Errorf("failed validating %T: %w", out, err)
		}
	}

	return out, nil
}

func decodeIssues(err error) Issues {
	errs := flattenErrors(err)
	issues := make(Issues, 0, len(errs))
	for _, e := range errs {
		issues = append(issues, Issue{Message: strings.TrimSpace(e.Error())})
	}

	return issues
}

func flattenErrors(err error) []error {
	var wrapped []error
	switch e := err.(type) { //nolint:errorlint // Only the outer error is inspected.
	case interface{ Unwrap() []error }:
		wrapped = e.Unwrap()
	case interface{ WrappedErrors() []error }:
		wrapped = e.WrappedErrors()
	default:
		return []error{err}
	}

	var errs []error
	for _, w := range wrapped {
		errs = append(errs, flattenErrors(w)...)
	}
	if len(errs) == 0 {
		return []error{err}
	}

	return errs
}

func ruleIssues(verrs validator.ValidationErrors) Issues {
	issues := make(Issues, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		// Drop the root type name.
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		issues = append(issues, Issue{Path: path, Message: ruleMessage(path, fe)})
	}

	return issues
}

func ruleMessage(path string, fe validator.FieldError) string {
	var unit string
	switch fe.Kind() { //nolint:exhaustive // Only sized kinds need a unit.
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "min", "gte":
		if unit != "" {
			return fmt.Sprintf("%s must have at least %s%s", path, fe.Param(), unit)
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", path, fe.Param())
	case "max", "lte":
		if unit != "" {
			return fmt.Sprintf("%s must have at most %s%s", path, fe.Param(), unit)
		}
		return fmt.Sprintf("%s must be less than or equal to %s", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed the '%s' rule", path, fe.Tag())
	}
}
