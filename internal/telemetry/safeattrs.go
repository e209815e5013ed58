package telemetry

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// Span attributes never carry submitted policy text or credentials. A key
// matching any of these fragments is dropped wholesale.
var contentKeyFragments = []string{
	"policy",
	"text",
	"prompt",
	"content",
	"details",
	"preview",
	"reply",
	"authorization",
	"api_key",
	"token",
	"secret",
	"email",
	"phone",
	"iban",
	"credit_card",
}

const (
	maxAttrString = 512
	maxAttrSlice  = 32
)

func blockedKey(key string) bool {
	lk := strings.ToLower(key)
	for _, frag := range contentKeyFragments {
		if strings.Contains(lk, frag) {
			return true
		}
	}
	return false
}

// SafeAttributes converts a loose attribute map into OTEL attributes,
// dropping keys that could carry submitted text or secrets and values too
// large for a span.
func SafeAttributes(values map[string]interface{}) []attribute.KeyValue {
	if len(values) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(values))
	for k, v := range values {
		if blockedKey(k) {
			continue
		}
		switch val := v.(type) {
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case string:
			if len(val) > maxAttrString {
				continue
			}
			attrs = append(attrs, attribute.String(k, val))
		case []string:
			if len(val) > maxAttrSlice {
				val = val[:maxAttrSlice]
			}
			attrs = append(attrs, attribute.StringSlice(k, val))
		default:
			// other widths and structured values stay out of telemetry
		}
	}
	return attrs
}
