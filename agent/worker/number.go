package worker

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// flexNumber decodes a model-provided amount that may be a number, a
// numeric string with currency marks or separators, or null. Anything
// unparseable becomes "unknown" instead of failing the whole payload.
type flexNumber struct {
	value float64
	valid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber{}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		if t >= 0 {
			*n = flexNumber{value: t, valid: true}
		}
	case string:
		if f, ok := parseAmount(t); ok {
			*n = flexNumber{value: f, valid: true}
		}
	}
	return nil
}

func (n flexNumber) Ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// parseAmount reads the first number in s, e.g. "₹45,000 per person" or
// "USD 1200-1500" (lower bound). A magnitude word right after the number
// scales it: "2.5k", "1.2 lakh", "3 crore", "1 million".
func parseAmount(s string) (float64, bool) {
	var b strings.Builder
	started := false
	rest := ""
scan:
	for i, r := range s {
		switch {
		case unicode.IsDigit(r) || (r == '.' && started):
			b.WriteRune(r)
			started = true
		case r == ',' && started:
		case started:
			rest = s[i:]
			break scan
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f * magnitude(rest), true
}

var magnitudes = map[string]float64{
	"k":        1e3,
	"thousand": 1e3,
	"l":        1e5,
	"lac":      1e5,
	"lacs":     1e5,
	"lakh":     1e5,
	"lakhs":    1e5,
	"mn":       1e6,
	"million":  1e6,
	"cr":       1e7,
	"crore":    1e7,
	"crores":   1e7,
}

// magnitude returns the multiplier named by the word that opens rest, or 1.
func magnitude(rest string) float64 {
	rest = strings.TrimLeft(rest, " ")
	end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(rest)
	}
	if m, ok := magnitudes[strings.ToLower(rest[:end])]; ok {
		return m
	}
	return 1
}
