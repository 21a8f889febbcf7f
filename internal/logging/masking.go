// Package logging provides utilities for secure logging with data masking.
package logging

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SensitiveFields are the JSON body fields masked in debug HTTP logs.
// The QR token string is itself a credential, so it is masked alongside
// passwords and session tokens.
var SensitiveFields = []string{"password", "token", "qr_token"}

// MaskHeader redacts sensitive header values based on header name.
// Returns the redacted value suitable for logging.
//
// Rules:
// - Password/secret headers: "[REDACTED]" (no partial reveal)
// - Authorization/API key headers: "****" + last 4 chars (e.g., "****ab3f")
// - Other headers: returned unchanged
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	if strings.Contains(lowerName, "password") || strings.Contains(lowerName, "secret") {
		return "[REDACTED]"
	}

	if lowerName == "authorization" || lowerName == "x-api-key" {
		if len(value) < 4 {
			return "****"
		}
		return "****" + value[len(value)-4:]
	}

	return value
}

// MaskJSONBody redacts the named fields anywhere in a JSON body, keeping
// the rest of the payload readable. Non-JSON bodies are returned unchanged.
func MaskJSONBody(body []byte, fields []string) []byte {
	if len(body) == 0 || len(fields) == 0 {
		return body
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}

	denied := make(map[string]bool, len(fields))
	for _, f := range fields {
		denied[f] = true
	}

	masked := maskJSONValue(data, denied)

	result, err := json.Marshal(masked)
	if err != nil {
		return body
	}

	return result
}

func maskJSONValue(value any, denied map[string]bool) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			if denied[strings.ToLower(key)] {
				result[key] = "[REDACTED]"
				continue
			}
			result[key] = maskJSONValue(val, denied)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = maskJSONValue(item, denied)
		}
		return result
	default:
		return value
	}
}

// FormatBinaryData formats binary data for logging.
func FormatBinaryData(data []byte) string {
	return fmt.Sprintf("[BINARY: %d bytes]", len(data))
}
