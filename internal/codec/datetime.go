package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the datetime form written to documents.
const Layout = "2006-01-02T15:04:05"

// readLayouts are tried in order when decoding a datetime field. The
// date-only form decodes to midnight; whether an end date should mean the end
// of that day is for the loader to decide, not the field decoder.
var readLayouts = []string{
	Layout,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ErrInvalidDatetime indicates a datetime string in none of the accepted forms.
var ErrInvalidDatetime = errors.New("unrecognized datetime format")

// FieldError names the field and value that failed to decode.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseDatetime decodes one of the accepted datetime forms as UTC. Fractional
// seconds are rejected even though time.Parse would accept them after the
// seconds field.
func ParseDatetime(field, value string) (time.Time, error) {
	if strings.Contains(value, ".") {
		return time.Time{}, &FieldError{Field: field, Value: value, Err: ErrInvalidDatetime}
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &FieldError{Field: field, Value: value, Err: ErrInvalidDatetime}
}

// IsDateOnly reports whether value uses the legacy date-only form.
func IsDateOnly(value string) bool {
	_, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	return err == nil
}

// FormatDatetime encodes t in Layout, in UTC.
func FormatDatetime(t time.Time) string {
	return t.UTC().Format(Layout)
}
