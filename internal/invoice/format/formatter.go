package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"
)

const DefaultFileNameTemplate = "Invoice_{NAME}_{YYYY}{MM}{DD}{hh}{mm}{ss}.pdf"

// FormatFileName builds the document file name from a template, the
// customer name and the invoice issue time.
//
// Pure and deterministic: no clock, no filesystem.
func FormatFileName(
	template string,
	customerName string,
	issuedAt time.Time,
) (string, error) {

	if template == "" {
		return "", fmt.Errorf("file name template is empty")
	}

	name := SafeName(customerName)
	if name == "" {
		return "", fmt.Errorf("customer name is empty")
	}

	out := template

	// Date tokens
	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedAt.Format("02"))

	// Time tokens
	out = strings.ReplaceAll(out, "{hh}", issuedAt.Format("15"))
	out = strings.ReplaceAll(out, "{mm}", issuedAt.Format("04"))
	out = strings.ReplaceAll(out, "{ss}", issuedAt.Format("05"))

	// Final safety check: unresolved tokens. The name goes in last so braces
	// in it cannot trip the check.
	if strings.Contains(out, "{") && strings.Count(out, "{") != strings.Count(out, "{NAME}") {
		return "", fmt.Errorf("unresolved token in file name format: %s", out)
	}
	if !strings.Contains(out, "{NAME}") {
		return "", fmt.Errorf("file name format has no {NAME} token: %s", template)
	}

	return strings.ReplaceAll(out, "{NAME}", name), nil
}

// SafeName returns the customer name unchanged when it is usable as a path
// segment, otherwise its slug.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if isPathSafe(name) {
		return name
	}
	return slug.Make(name)
}

func isPathSafe(name string) bool {
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return false
		case unicode.IsControl(r):
			return false
		}
	}
	return true
}
