package normalize

import (
	"fmt"
	"strings"
)

// Code validates a raw canonical code and normalizes it to 'width' digits,
// left-padding short numeric values. Source layers are inconsistent about
// leading zeros.
func Code(raw string, width int) (string, error) {

	code := strings.TrimSpace(raw)

	if code == "" {
		return "", fmt.Errorf("empty code")
	}

	for _, r := range code {

		if r < '0' || r > '9' {
			return "", fmt.Errorf("non-numeric code '%s'", raw)
		}
	}

	if len(code) < width {
		code = strings.Repeat("0", width-len(code)) + code
	}

	if len(code) != width {
		return "", fmt.Errorf("code '%s' is not %d digits", raw, width)
	}

	return code, nil
}
