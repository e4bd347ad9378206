package paymentcode

import (
	"net/url"
	"strings"
)

// Payee identifies who receives the payment requested by the code.
type Payee struct {
	Scheme   string
	ID       string
	Name     string
	Currency string
}

// BuildURI returns <scheme>://pay?pa=<id>&pn=<name>&cu=<currency>. Only the
// display name is percent-encoded, with spaces as %20.
func BuildURI(p Payee) string {
	var b strings.Builder
	b.WriteString(p.Scheme)
	b.WriteString("://pay?pa=")
	b.WriteString(p.ID)
	b.WriteString("&pn=")
	b.WriteString(escape(p.Name))
	b.WriteString("&cu=")
	b.WriteString(p.Currency)
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
