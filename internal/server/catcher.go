package server

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/codecatch/internal/shared"
)

// CodeParam is the query parameter holding the authorization code.
const CodeParam = "code"

const pageTemplate = `
<html>
  <head><title>OAuth Code Captured</title></head>
  <body>
    <h2>%s Authorization Code</h2>
    <p>Copy the value below and paste it into your %s dialog.</p>
    <pre style="background:#f4f4f4;padding:10px;border-radius:6px;">%s</pre>
    <p>Full request path: <code>%s</code></p>
    <p>You can close this page after copying the code.</p>
  </body>
</html>
`

// ParseQuery parses a raw query string leniently.
//
// Anything from '#' on is ignored. Pairs are split on '&' only. A pair without
// '=' or with an empty value is dropped. Keys and values are unescaped with
// '+' as space; a broken escape sequence is kept as sent while the valid ones
// around it are still decoded, and bytes that do not form UTF-8 become U+FFFD.
// Order of repeated keys is preserved.
func ParseQuery(raw string) url.Values {
	raw, _, _ = strings.Cut(raw, "#")

	values := url.Values{}
	for pair := range strings.SplitSeq(raw, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || value == "" {
			continue
		}

		key = unescape(key)
		value = unescape(value)
		if value == "" {
			continue
		}
		values[key] = append(values[key], value)
	}
	return values
}

// unescape decodes each %XX triplet on its own and maps '+' to a space.
func unescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return strings.ToValidUTF8(s, "\uFFFD")
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

// ExtractCode returns the first value of the code parameter in raw, or "" when there is none.
func ExtractCode(raw string) string {
	return ParseQuery(raw).Get(CodeParam)
}

// RequestPath returns the request target as the client sent it, path and query included.
func RequestPath(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

// CatchHandler renders the captured code into a page and echoes it to the console.
type CatchHandler struct {
	page    shared.PageConfig
	console io.Writer
	logger  *log.Logger
}

// NewCatchHandler creates a handler writing its per-request block to console.
func NewCatchHandler(page shared.PageConfig, console io.Writer, logger *log.Logger) *CatchHandler {
	return &CatchHandler{page: page, console: console, logger: logger}
}

// Render writes the code page for code and path to w.
//
// Both values are interpolated verbatim unless escaping is enabled in [shared.PageConfig].
func (h *CatchHandler) Render(w io.Writer, code, path string) error {
	if h.page.Escape {
		code = html.EscapeString(code)
		path = html.EscapeString(path)
	}
	_, err := fmt.Fprintf(w, pageTemplate, h.page.Provider, h.page.App, code, path)
	return err
}

// ServeHTTP always answers 200 with the code page, then reports the request on the console.
func (h *CatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := RequestPath(r)
	code := ExtractCode(r.URL.RawQuery)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := h.Render(w, code, path); err != nil {
		h.logger.Warn("failed to write response", "error", err, "request_id", RequestIDFrom(r.Context()))
	}

	if err := h.Report(path, code); err != nil {
		h.logger.Warn("failed to write console report", "error", err)
	}
}

// Report writes the request block shown to the operator.
func (h *CatchHandler) Report(path, code string) error {
	_, err := fmt.Fprintf(h.console,
		"--- Incoming request ---\nPath: %s\nCode: %s\n-------------------------\n",
		path, code,
	)
	return err
}
