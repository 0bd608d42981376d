package wire

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingField is returned by Frame accessors for absent keys.
var ErrMissingField = errors.New("field not present")

// Value is the decoded content of one group: a single token (scalar) or an
// ordered sequence of two or more tokens.
type Value struct {
	tokens []string
}

// Scalar builds a single-token value.
func Scalar(token string) Value {
	return Value{tokens: []string{token}}
}

// Sequence builds a multi-token value.
func Sequence(tokens ...string) Value {
	return Value{tokens: append([]string(nil), tokens...)}
}

// IsScalar reports whether the group carried exactly one value token.
func (v Value) IsScalar() bool {
	return len(v.tokens) == 1
}

// Scalar returns the single token, or "" for sequences.
func (v Value) Scalar() string {
	if !v.IsScalar() {
		return ""
	}
	return v.tokens[0]
}

// Tokens returns a copy of all value tokens.
func (v Value) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// Len returns the number of tokens.
func (v Value) Len() int {
	return len(v.tokens)
}

func (v Value) String() string {
	if v.IsScalar() {
		return v.tokens[0]
	}
	return "[" + strings.Join(v.tokens, " ") + "]"
}

// Frame maps group keys to their values. Frames are created by Decode and
// are not modified afterwards.
type Frame map[string]Value

// Float parses the first token of key as a float.
func (f Frame) Float(key string) (float64, error) {
	v, ok := f[key]
	if !ok || v.Len() == 0 {
		return 0, fmt.Errorf("%s: %w", key, ErrMissingField)
	}
	x, err := strconv.ParseFloat(v.tokens[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return x, nil
}

// Int parses the first token of key as an integer. Tokens written as floats
// ("3.0") are truncated.
func (f Frame) Int(key string) (int, error) {
	x, err := f.Float(key)
	if err != nil {
		return 0, err
	}
	return int(x), nil
}

// Floats parses every token of key. A scalar yields a one-element slice.
func (f Frame) Floats(key string) ([]float64, error) {
	v, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrMissingField)
	}
	out := make([]float64, len(v.tokens))
	for i, tok := range v.tokens {
		x, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out[i] = x
	}
	return out, nil
}
