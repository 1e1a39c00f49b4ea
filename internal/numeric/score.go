// Package numeric coerces the heterogeneous value encodings found in
// leaderboard sources (percent strings, prose-wrapped numbers, raw floats)
// into a single unit-scale Score.
package numeric

import (
	"regexp"
	"strconv"
	"strings"
)

// Score is an optional float. Missing is a first-class value that flows
// through the pipeline; it is never an error.
type Score struct {
	Value float64
	Valid bool
}

// Missing returns the absent-value sentinel.
func Missing() Score {
	return Score{}
}

// ScoreOf wraps a present value.
func ScoreOf(v float64) Score {
	return Score{Value: v, Valid: true}
}

// InUnitRange reports whether the score is present and within [0, 1].
// Values outside the range survived normalization as anomalies and are
// filtered by callers that need a sane range.
func (s Score) InUnitRange() bool {
	return s.Valid && s.Value >= 0 && s.Value <= 1
}

var numberToken = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// Parse extracts the first contiguous decimal-number token from raw text,
// ignoring percent signs, thousands separators, and surrounding prose.
// Unparseable input yields Missing; Parse never fails.
func Parse(raw string) Score {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	tok := numberToken.FindString(s)
	if tok == "" {
		return Missing()
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return Missing()
	}
	return ScoreOf(v)
}

// FromAny accepts an already-decoded JSON value (float64, int, string, bool,
// nil) and produces a Score. Non-scalar and nil values are Missing.
func FromAny(v any) Score {
	switch val := v.(type) {
	case float64:
		return ScoreOf(val)
	case int:
		return ScoreOf(float64(val))
	case int64:
		return ScoreOf(float64(val))
	case string:
		return Parse(val)
	default:
		return Missing()
	}
}

// Normalize maps percentage-scale values onto the unit scale: a present
// value in (1, 100] is divided by 100, anything else passes through.
// A value of exactly 1.0 or 100.0 is ambiguous between the two scales;
// the (1, 100] rule is the documented resolution, not a bug fix.
func (s Score) Normalize() Score {
	if !s.Valid {
		return s
	}
	if s.Value > 1 && s.Value <= 100 {
		return ScoreOf(s.Value / 100)
	}
	return s
}
