package mappers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turbot/elb-access-log-collector/schema"
)

const (
	classicLine    = `2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184:80 0.000053 0.000913 0.000036 200 200 0 3 "GET http://hoge-1876938939.ap-northeast-1.elb.amazonaws.com:80/ HTTP/1.1" "curl/7.30.0" ssl_cipher ssl_protocol`
	classicRequest = "GET http://hoge-1876938939.ap-northeast-1.elb.amazonaws.com:80/ HTTP/1.1"

	applicationLine            = `https 2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184:80 0.000053 0.000913 0.000036 200 200 0 3 "GET http://hoge-1876938939.ap-northeast-1.elb.amazonaws.com:80/ HTTP/1.1" "curl/7.30.0" ssl_cipher ssl_protocol arn:aws:elasticloadbalancing:ap-northeast-1:123456789012:targetgroup/app/xxx "Root=xxx" "-" "arn:aws:acm:ap-northeast-1:123456789012:certificate/xxx"`
	applicationNoUserAgentLine = `https 2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184:80 0.000053 0.000913 0.000036 200 200 0 3 "GET http://hoge-1876938939.ap-northeast-1.elb.amazonaws.com:80/ HTTP/1.1" arn:aws:elasticloadbalancing:ap-northeast-1:123456789012:targetgroup/app/xxx "Root=xxx" "-" "arn:aws:acm:ap-northeast-1:123456789012:certificate/xxx"`
)

// named returns the vector as a map of column name to value for readable assertions
func named(s *schema.RowSchema, v FieldVector) map[string]any {
	res := make(map[string]any, len(v))
	for i, name := range s.ColumnNames() {
		if v[i] == nil {
			res[name] = nil
		} else {
			res[name] = *v[i]
		}
	}
	return res
}

func TestAccessLogMapper_Parse_Classic(t *testing.T) {
	s := schema.VariantClassic.Schema()
	m := NewAccessLogMapper(s)

	tests := []struct {
		name string
		line string
		want map[string]any
	}{
		{
			name: "well formed line",
			line: classicLine,
			want: map[string]any{
				"timestamp":    "2015-05-24T19:55:36.000000Z",
				"client":       "14.14.124.20:57673",
				"backend":      "10.0.199.184:80",
				"request":      classicRequest,
				"user_agent":   "curl/7.30.0",
				"ssl_cipher":   "ssl_cipher",
				"ssl_protocol": "ssl_protocol",
			},
		},
		{
			name: "missing trailing tokens are null",
			line: `2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184:80 0.000053 0.000913 0.000036 200 200 0 3 "` + classicRequest + `"`,
			want: map[string]any{
				"request":      classicRequest,
				"user_agent":   nil,
				"ssl_cipher":   nil,
				"ssl_protocol": nil,
			},
		},
		{
			name: "unescaped quote in user agent uses the fallback",
			line: `2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184:80 0.000053 0.000913 0.000036 200 200 0 3 "` + classicRequest + `" "Mozilla/5.0 "evil" agent" - -`,
			want: map[string]any{
				"elb":          "hoge",
				"sent_bytes":   "3",
				"request":      classicRequest,
				"user_agent":   `Mozilla/5.0 "evil" agent`,
				"ssl_cipher":   "-",
				"ssl_protocol": "-",
			},
		},
		{
			name: "quote inside the request ends it early",
			line: `2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184:80 0.000053 0.000913 0.000036 200 200 0 3 "GET http://a/?q="x" HTTP/1.1"`,
			want: map[string]any{
				"request":      "GET http://a/?q=",
				"user_agent":   `x"`,
				"ssl_cipher":   `HTTP/1.1"`,
				"ssl_protocol": nil,
			},
		},
		{
			name: "extra tokens are discarded",
			line: classicLine + " extra1 extra2",
			want: map[string]any{
				"ssl_protocol": "ssl_protocol",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Parse(tt.line)
			require.NoError(t, err)
			require.Len(t, got, s.FieldCount())
			gotMap := named(s, got)
			for k, v := range tt.want {
				assert.Equalf(t, v, gotMap[k], "field %s", k)
			}
		})
	}
}

func TestAccessLogMapper_Parse_Application(t *testing.T) {
	s := schema.VariantApplication.Schema()
	m := NewAccessLogMapper(s)

	t.Run("well formed line", func(t *testing.T) {
		got, err := m.Parse(applicationLine)
		require.NoError(t, err)
		gotMap := named(s, got)
		assert.Equal(t, "https", gotMap["type"])
		assert.Equal(t, "10.0.199.184:80", gotMap["target"])
		assert.Equal(t, "curl/7.30.0", gotMap["user_agent"])
		assert.Equal(t, "arn:aws:elasticloadbalancing:ap-northeast-1:123456789012:targetgroup/app/xxx", gotMap["target_group_arn"])
		assert.Equal(t, "Root=xxx", gotMap["trace_id"])
		assert.Equal(t, "-", gotMap["domain_name"])
		assert.Equal(t, "arn:aws:acm:ap-northeast-1:123456789012:certificate/xxx", gotMap["chosen_cert_arn"])
	})

	t.Run("missing user agent shifts fields left", func(t *testing.T) {
		got, err := m.Parse(applicationNoUserAgentLine)
		require.NoError(t, err)
		gotMap := named(s, got)
		assert.Equal(t, "arn:aws:elasticloadbalancing:ap-northeast-1:123456789012:targetgroup/app/xxx", gotMap["user_agent"])
		assert.Equal(t, "Root=xxx", gotMap["ssl_cipher"])
		assert.Equal(t, "-", gotMap["ssl_protocol"])
		assert.Equal(t, "arn:aws:acm:ap-northeast-1:123456789012:certificate/xxx", gotMap["target_group_arn"])
		assert.Nil(t, gotMap["trace_id"])
		assert.Nil(t, gotMap["domain_name"])
		assert.Nil(t, gotMap["chosen_cert_arn"])
	})
}

func TestAccessLogMapper_parseFallback_MatchesStrict(t *testing.T) {
	for _, variant := range []schema.Variant{schema.VariantClassic, schema.VariantApplication} {
		t.Run(variant.String(), func(t *testing.T) {
			m := NewAccessLogMapper(variant.Schema())
			line := classicLine
			if variant == schema.VariantApplication {
				line = applicationLine
			}
			strict, err := m.tokenize(line)
			require.NoError(t, err)
			fallback, err := m.parseFallback(line)
			require.NoError(t, err)
			assert.Equal(t, strict.Strings(), fallback.Strings())
		})
	}
}

func TestAccessLogMapper_Parse_Empty(t *testing.T) {
	m := NewAccessLogMapper(schema.VariantClassic.Schema())
	got, err := m.Parse("")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccessLogMapper_Parse_BothStrategiesFail(t *testing.T) {
	m := NewAccessLogMapper(schema.VariantClassic.Schema())
	line := `2015-05-24T19:55:36.000000Z hoge "unterminated`

	got, err := m.Parse(line)
	assert.Nil(t, got)
	require.Error(t, err)

	var parseErr *LineParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, line, parseErr.Line)
	var tokenizeErr *TokenizeError
	assert.True(t, errors.As(parseErr.StrictErr, &tokenizeErr))
	assert.ErrorIs(t, parseErr.FallbackErr, errNoClosingQuote)
	assert.Contains(t, err.Error(), line)
}

func Test_unquote(t *testing.T) {
	tests := []struct {
		name string
		s    string
		want *string
	}{
		{name: "wrapped", s: `"curl/7.30.0"`, want: field("curl/7.30.0")},
		{name: "only one pair stripped", s: `""x""`, want: field(`"x"`)},
		{name: "unwrapped kept", s: `-`, want: field("-")},
		{name: "leading quote only kept", s: `"abc`, want: field(`"abc`)},
		{name: "empty quotes are null", s: `""`, want: nil},
		{name: "empty is null", s: ``, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equalf(t, tt.want, unquote(tt.s), "unquote(%q)", tt.s)
		})
	}
}
