package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result is the analysis payload returned by the upload endpoint.
type Result struct {
	Severity Severity `json:"severity,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Severity holds the raw severity text. The server sends either a string such
// as "73 % infected" or a bare number; both are kept as text.
type Severity string

// UnmarshalJSON accepts a JSON string, number, or null.
func (s *Severity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = Severity(text)
		return nil
	default:
		var number json.Number
		if err := json.Unmarshal(data, &number); err != nil {
			return fmt.Errorf("severity must be a string or number: %w", err)
		}
		// zero counts as no severity, like an empty string
		if value, err := number.Float64(); err == nil && value == 0 {
			*s = ""
			return nil
		}
		*s = Severity(number.String())
		return nil
	}
}

// SeverityToken returns the severity text up to the first space. The second
// return value is false when the server sent no severity.
func (r Result) SeverityToken() (string, bool) {
	raw := string(r.Severity)
	if raw == "" {
		return "", false
	}
	token, _, _ := strings.Cut(raw, " ")
	return token, true
}

// SeverityPercent converts the severity token to a percentage in [0,100].
// Non-numeric tokens yield 0 with ok=false.
func (r Result) SeverityPercent() (float64, bool) {
	token, present := r.SeverityToken()
	if !present {
		return 0, false
	}
	return ParsePercent(token)
}

// ParsePercent parses tokens like "82", "82%", "73,5" and clamps the value.
func ParsePercent(token string) (float64, bool) {
	value := strings.TrimSpace(token)
	value = strings.TrimSuffix(value, "%")
	value = strings.Replace(value, ",", ".", 1)
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) {
		return 0, false
	}
	return math.Max(0, math.Min(100, parsed)), true
}

// HasImage reports whether the server supplied an annotated image path.
func (r Result) HasImage() bool {
	return strings.TrimSpace(r.ImageURL) != ""
}
