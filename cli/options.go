package cli

import (
	"errors"
	"reflect"
	"time"

	"github.com/alecthomas/kong"

	"go.hackfix.me/bulletin/xtime"
)

// ExpirationMapper parses an expiration duration relative to the current time,
// or an absolute RFC 3339 timestamp.
type ExpirationMapper struct {
	timeNow func() time.Time
}

var _ kong.Mapper = (*ExpirationMapper)(nil)

// Decode implements the kong.Mapper interface.
func (em ExpirationMapper) Decode(kctx *kong.DecodeContext, target reflect.Value) error {
	var value string
	if err := kctx.Scan.PopValueInto("expiration", &value); err != nil {
		return err
	}

	timeNow := em.timeNow().UTC()

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		dur, derr := xtime.ParseDuration(value)
		if derr != nil {
			return errors.New("expected a duration such as 12h or 7d, or an RFC 3339 timestamp")
		}
		t = timeNow.Add(dur)
	}

	if !t.After(timeNow) {
		return errors.New("expiration time must be in the future")
	}

	target.Set(reflect.ValueOf(t.UTC()))

	return nil
}
