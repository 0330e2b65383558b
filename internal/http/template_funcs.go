package httpx

import (
	"errors"
	"html/template"
	"strconv"
	"strings"
	"unicode"

	domainauth "github.com/visorhr/visorhr-ui/internal/domain/auth"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"dict":        dict,
		"slug":        slug,
		"statusClass": statusClass,
		"humanBytes":  humanBytes,
	}
}

// dict builds a map from alternating keys and values so partials can take several arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict requires an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, errors.New("dict keys must be strings")
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

// slug turns a section title into an element id fragment.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func statusClass(m domainauth.StatusMessage) string {
	switch {
	case m.Empty():
		return "status status-empty"
	case m.IsError():
		return "status status-error"
	default:
		return "status status-success"
	}
}

func humanBytes(n int64) string {
	const mib = 1 << 20
	if n >= mib && n%mib == 0 {
		return strconv.FormatInt(n/mib, 10) + " MB"
	}
	const kib = 1 << 10
	if n >= kib {
		return strconv.FormatInt(n/kib, 10) + " KB"
	}
	return strconv.FormatInt(n, 10) + " B"
}
