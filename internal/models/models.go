package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PingRecord is one reachability result reported by the probe service.
// Nil fields were absent or null in the payload.
type PingRecord struct {
	Dest        *string
	Status      *string
	RTT         *string
	SuccessedAt *string
}

// UnmarshalJSON decodes a record leniently: scalars of any JSON type are kept
// in their display form and non-object elements yield an empty record.
func (r *PingRecord) UnmarshalJSON(data []byte) error {
	*r = PingRecord{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Rows that are not objects still occupy a row, just without fields.
		return nil
	}

	r.Dest = displayValue(fields["dest"])
	r.Status = displayValue(fields["status"])
	r.RTT = displayValue(fields["rtt"])
	r.SuccessedAt = displayValue(fields["successedAt"])
	return nil
}

func displayValue(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}

	var text string
	switch v := value.(type) {
	case string:
		text = v
	case float64:
		text = formatNumber(v)
	case bool:
		text = strconv.FormatBool(v)
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil
		}
		text = buf.String()
	}
	return &text
}

// formatNumber writes v the way a browser stringifies numbers: plain decimals
// for 1e-6 <= |v| < 1e21 and shortest exponent form outside that range.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	if abs := math.Abs(v); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	text := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(text, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

// Dataset is the undecoded body of a successful fetch.
type Dataset json.RawMessage

// Records returns the rows of the dataset. ok is false when the body is not a
// JSON array; such bodies mean "no data" rather than an error.
func (d Dataset) Records() (records []PingRecord, ok bool) {
	trimmed := bytes.TrimSpace(d)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, false
	}
	return records, true
}
