package table

import (
	"net/url"
	"strings"

	"github.com/turbot/elb-access-log-collector/constants"
	"github.com/turbot/elb-access-log-collector/helpers"
)

// addRequestFields splits the request line into method, uri and version and decomposes the uri
func (b *RecordBuilder) addRequestFields(record Record, request string) error {
	parts := helpers.SplitWhitespaceN(request, 3)
	keys := []string{constants.FieldRequestMethod, constants.FieldRequestURI, constants.FieldRequestHTTPVersion}
	for i, k := range keys {
		if i < len(parts) {
			record[k] = parts[i]
		} else {
			record[k] = nil
		}
	}
	if len(parts) < 2 {
		return nil
	}

	rawURI := parts[1]
	u, err := url.Parse(rawURI)
	if err != nil {
		// ELB logs the URI as sent, stray '%' characters included
		repaired := escapeStrayPercent(rawURI)
		if repaired == rawURI {
			return &URIParseError{URI: rawURI, Err: err}
		}
		var repairErr error
		if u, repairErr = url.Parse(repaired); repairErr != nil {
			return &URIParseError{URI: rawURI, Err: err}
		}
	}

	var user *string
	if u.User != nil {
		name := u.User.Username()
		user = &name
	}
	record[constants.FieldURIScheme] = nullable(u.Scheme)
	record[constants.FieldURIUser] = nullablePtr(user)
	record[constants.FieldURIHost] = nullable(u.Hostname())
	record[constants.FieldURIPath] = nullable(u.EscapedPath())
	record[constants.FieldURIQuery] = nullable(u.RawQuery)
	record[constants.FieldURIFragment] = nullable(u.EscapedFragment())
	record[constants.FieldURIPort] = nil
	if port := u.Port(); port != "" {
		record[constants.FieldURIPort] = b.castInteger(&port)
	}
	return nil
}

// escapeStrayPercent encodes every '%' in the path and fragment which does not start a valid escape.
// The query is left as is since it is never unescaped.
func escapeStrayPercent(rawURI string) string {
	rest, fragment, hasFragment := strings.Cut(rawURI, "#")
	base, query, hasQuery := strings.Cut(rest, "?")

	var sb strings.Builder
	sb.WriteString(escapePercent(base))
	if hasQuery {
		sb.WriteString("?")
		sb.WriteString(query)
	}
	if hasFragment {
		sb.WriteString("#")
		sb.WriteString(escapePercent(fragment))
	}
	return sb.String()
}

func escapePercent(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		sb.WriteByte(s[i])
		if s[i] == '%' && !(i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])) {
			sb.WriteString("25")
		}
	}
	return sb.String()
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullablePtr(s *string) any {
	if s == nil {
		return nil
	}
	return nullable(*s)
}
