// Package wire implements the parenthesised text protocol spoken by the race
// server: groups of the form "(key v1 v2 ... vn)" concatenated without
// separators, optionally preceded by a literal prefix.
package wire

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ramalamadingdong/Drifitng-Autonomously-Torcs/internal/monitoring"
)

var (
	// ErrUnmatchedParen reports an opening parenthesis with no closing one.
	// Everything after it is dropped.
	ErrUnmatchedParen = errors.New("opening parenthesis not matched")
	// ErrMissingValue reports a group holding a key but no value.
	ErrMissingValue = errors.New("group holds no key value pair")
)

// Field is one named group of numeric values.
type Field struct {
	Key    string
	Values []float64
}

// Fields is an ordered collection of groups. Encode preserves its order.
type Fields []Field

// Encode renders fields as wire groups, in order, after prefix. Fields with
// no values, or whose first value is NaN (the missing marker), are skipped.
func Encode(fields Fields, prefix string) []byte {
	var b strings.Builder
	b.WriteString(prefix)

	for _, f := range fields {
		if len(f.Values) == 0 || math.IsNaN(f.Values[0]) {
			continue
		}
		b.WriteByte('(')
		b.WriteString(f.Key)
		for _, v := range f.Values {
			b.WriteByte(' ')
			b.WriteString(FormatNumber(v))
		}
		b.WriteByte(')')
	}

	return []byte(b.String())
}

// FormatNumber renders v in its shortest decimal form; integral values carry
// no fractional part.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Decode scans buf for groups and returns the decoded frame. Malformed input
// never aborts decoding: a group without a value is skipped and an unmatched
// opening parenthesis ends the scan, and in both cases the groups collected
// so far are kept. The returned error, if any, describes every problem seen;
// the frame is always usable.
func Decode(buf []byte) (Frame, error) {
	frame := make(Frame)
	var errs []error

	s := string(buf)
	pos := 0
	for pos < len(s) {
		start := strings.IndexByte(s[pos:], '(')
		if start < 0 {
			break
		}
		start += pos

		end := strings.IndexByte(s[start+1:], ')')
		if end < 0 {
			err := fmt.Errorf("%w at offset %d", ErrUnmatchedParen, start)
			monitoring.Logger.WithField("buffer", s).Warnf("Malformed buffer: %v", err)
			errs = append(errs, err)
			break
		}
		end += start + 1

		items := strings.Fields(s[start+1 : end])
		if len(items) < 2 {
			err := fmt.Errorf("%w at offset %d: %q", ErrMissingValue, start, s[start:end+1])
			monitoring.Logger.WithField("buffer", s).Warnf("Malformed group: %v", err)
			errs = append(errs, err)
		} else {
			frame[items[0]] = Value{tokens: items[1:]}
		}

		pos = end + 1
	}

	return frame, errors.Join(errs...)
}

// RollingAverage folds newValue into an average taken over iterations
// samples.
func RollingAverage(average float64, iterations int, newValue float64) float64 {
	n := float64(iterations)
	return (average*n + newValue) / (n + 1)
}
