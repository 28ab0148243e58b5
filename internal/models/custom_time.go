package models

import (
	"encoding/json"
	"strings"
	"time"
)

// FlexibleDate accepts both RFC3339 and "YYYY-MM-DD" and always holds a
// calendar date. An empty or null value leaves it zero.
type FlexibleDate struct {
	time.Time
}

// ParseFlexibleDate parses s the same way UnmarshalJSON does
func ParseFlexibleDate(s string) (FlexibleDate, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return FlexibleDate{}, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return FlexibleDate{Time: TruncateDate(t)}, nil
	}

	t, err = time.Parse(DateLayout, s)
	if err != nil {
		return FlexibleDate{}, err
	}
	return FlexibleDate{Time: t}, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexibleDate) UnmarshalJSON(b []byte) error {
	parsed, err := ParseFlexibleDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalJSON writes the date as "YYYY-MM-DD", or null when unset.
func (f FlexibleDate) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Format(DateLayout))
}
