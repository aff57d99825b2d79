package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		exp    time.Duration
		expErr string
	}{
		{in: "30s", exp: 30 * time.Second},
		{in: "2h30m", exp: 2*time.Hour + 30*time.Minute},
		{in: "10d", exp: 10 * day},
		{in: "1.5d", exp: 36 * time.Hour},
		{in: "-1.5w", exp: -(10*day + 12*time.Hour)},
		{in: "3Y4M5d", exp: 3*year + 4*month + 5*day},
		{in: "1d12h", exp: 36 * time.Hour},
		{in: "500ms", exp: 500 * time.Millisecond},
		{in: "", expErr: `invalid duration ""`},
		{in: "-", expErr: `invalid duration "-"`},
		{in: "5", expErr: `invalid duration "5"`},
		{in: "5x", expErr: `invalid duration "5x"`},
		{in: "d5", expErr: `invalid duration "d5"`},
	}

	for _, tt := range tests {
		name := "ok/" + tt.in
		if tt.expErr != "" {
			name = "err/" + tt.in
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDuration(tt.in)
			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    time.Duration
		round time.Duration
		exp   string
	}{
		{name: "zero", in: 0, round: time.Second, exp: "0s"},
		{name: "seconds", in: 30 * time.Second, round: time.Second, exp: "30s"},
		{name: "mixed", in: 2*time.Hour + 30*time.Minute, round: time.Second, exp: "2h30m"},
		{name: "week", in: 7 * day, round: time.Hour, exp: "1w"},
		{name: "rounded", in: 10*day + 20*time.Minute, round: time.Hour, exp: "1w3d"},
		{name: "negative", in: -year, round: time.Hour, exp: "-1Y"},
		{name: "sub_millisecond", in: time.Millisecond + 5, round: 0, exp: "1ms5ns"},
	}

	for _, tt := range tests {
		t.Run("ok/"+tt.name, func(t *testing.T) {
			t.Parallel()

			got := FormatDuration(tt.in, tt.round)
			assert.Equal(t, tt.exp, got)

			parsed, err := ParseDuration(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in.Round(max(tt.round, 1)), parsed)
		})
	}
}
