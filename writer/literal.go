package writer

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// literal renders v as a JavaScript literal. JSON is a subset of the
// expression grammar, so the JSON encoding is used as is.
func literal(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// quote renders s as a double-quoted string literal.
func quote(s string) string {
	out, err := literal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return out
}

// scalar reports whether v can be matched with z.literal.
func scalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int64, uint64, json.Number:
		return true
	}
	return false
}

func count(v any) string {
	switch n := v.(type) {
	case uint64:
		return strconv.FormatUint(n, 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case int:
		return strconv.Itoa(n)
	case float64:
		return number(n)
	}
	s, _ := literal(v)
	return s
}

// number renders f without exponent noise for integral values.
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
