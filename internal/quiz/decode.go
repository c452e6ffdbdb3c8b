package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a backend identifier. The backend sends numeric ids for some revisions and
// string ids for others; an ID remembers which so it goes back out the same way.
type ID struct {
	text    string
	numeric bool
}

// NewID builds a string-typed id, as typed by the user.
func NewID(text string) ID {
	return ID{text: strings.TrimSpace(text)}
}

// NumericID builds an id that is sent as a JSON number.
func NumericID(n int64) ID {
	return ID{text: strconv.FormatInt(n, 10), numeric: true}
}

func (id ID) String() string {
	return id.text
}

func (id ID) Empty() bool {
	return id.text == ""
}

func (id ID) Numeric() bool {
	return id.numeric
}

// Same compares the textual form only, so a typed "42" finds the numeric 42.
func (id ID) Same(other ID) bool {
	return id.text == other.text
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*id = NewID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID{text: number.String(), numeric: true}
	return nil
}

// MarshalJSON writes the id with the JSON type it was received with.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric && json.Valid([]byte(id.text)) {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

// MarshalText lets ids key JSON objects; object keys are always strings.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.text), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	*id = NewID(string(text))
	return nil
}

// UnmarshalJSON accepts "id" when "student_id" is absent.
func (i *Identity) UnmarshalJSON(data []byte) error {
	type plain Identity
	var payload struct {
		plain
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	*i = Identity(payload.plain)
	if i.StudentID.Empty() {
		i.StudentID = payload.ID
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp decodes RFC3339 and zone-less ISO-8601 values. Zone-less values are UTC.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return Timestamp{Time: parsed}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized time %q", value)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(text)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// AnswerValue is an answer as echoed back in a summary. Arrays are kept in the
// multi-select wire encoding (a JSON array string).
type AnswerValue string

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = AnswerValue(text)
	case len(data) > 0 && data[0] == '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		texts := make([]string, 0, len(items))
		for _, item := range items {
			texts = append(texts, fmt.Sprint(item))
		}
		encoded, err := json.Marshal(texts)
		if err != nil {
			return err
		}
		*v = AnswerValue(encoded)
	default:
		*v = AnswerValue(data)
	}
	return nil
}

// Display renders multi-select arrays as a comma separated list.
func (v AnswerValue) Display() string {
	text := strings.TrimSpace(string(v))
	if text == "" {
		return "-"
	}
	if strings.HasPrefix(text, "[") {
		var items []string
		if err := json.Unmarshal([]byte(text), &items); err == nil {
			if len(items) == 0 {
				return "-"
			}
			return strings.Join(items, ", ")
		}
	}
	return string(v)
}

// FormatMarks prints marks without trailing zeros.
func FormatMarks(marks float64) string {
	return strconv.FormatFloat(marks, 'f', -1, 64)
}
