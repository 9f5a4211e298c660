package artifact_loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipBytes(t *testing.T, members ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range members {
		w := gzip.NewWriter(&buf)
		_, err := w.Write([]byte(m))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		key  string
		data func(t *testing.T) []byte
		want []string
	}{
		{
			name: "plain",
			key:  "a_b_c_d_20150524T1830Z_1.2.3.4_x.log",
			data: func(*testing.T) []byte { return []byte("line1\nline2\r\nline3") },
			want: []string{"line1", "line2", "line3"},
		},
		{
			name: "plain empty",
			key:  "x.log",
			data: func(*testing.T) []byte { return nil },
			want: nil,
		},
		{
			name: "gzip",
			key:  "x.log.gz",
			data: func(t *testing.T) []byte { return gzipBytes(t, "line1\nline2\n") },
			want: []string{"line1", "line2"},
		},
		{
			name: "gzip multi member",
			key:  "x.log.gz",
			data: func(t *testing.T) []byte { return gzipBytes(t, "line1\n", "line2\n", "line3\n") },
			want: []string{"line1", "line2", "line3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Decode(tt.key, tt.data(t))
			require.NoError(t, err)
			got, err := lines.All()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_GzipRewoundAfterValidation(t *testing.T) {
	lines, err := Decode("x.log.gz", gzipBytes(t, "first\nsecond\n"))
	require.NoError(t, err)

	require.True(t, lines.Scan())
	assert.Equal(t, "first", lines.Text())
}

func TestDecode_NotGzip(t *testing.T) {
	data := []byte("2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184:80 0.000053 0.000913 0.000036 200 200 0 3")
	lines, err := Decode("x.log.gz", data)
	assert.Nil(t, lines)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "x.log.gz", decodeErr.Key)
	assert.Equal(t, `"2015-05-24T19:55:36.000000Z hoge 14.14.124.20:57673 10.0.199.184"`, decodeErr.Preview)
	assert.ErrorIs(t, err, gzip.ErrHeader)
}

func TestDecode_GzipTruncated(t *testing.T) {
	data := gzipBytes(t, "line1\nline2\nline3\n")
	truncated := data[:len(data)-4]

	lines, err := Decode("x.log.gz", truncated)
	if err == nil {
		_, err = lines.All()
	}
	assert.Error(t, err)
}

func TestDecode_LargeGzipTruncated(t *testing.T) {
	var content strings.Builder
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&content, "line %d\n", i)
	}
	data := gzipBytes(t, content.String())
	truncated := data[:len(data)-4]

	// the first line decodes, the damage only shows at the end of the stream
	lines, err := Decode("x.log.gz", truncated)
	require.NoError(t, err)
	_, err = lines.All()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecode_SkipsOverlongLines(t *testing.T) {
	overlong := strings.Repeat("x", 2*maxLineSize)
	content := "ok1\n" + overlong + "\nok2\n" + strings.Repeat("y", maxLineSize) + "\n"

	tests := []struct {
		name string
		key  string
		data []byte
	}{
		{name: "plain", key: "x.log", data: []byte(content)},
		{name: "gzip", key: "x.log.gz", data: gzipBytes(t, content)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := Decode(tt.key, tt.data)
			require.NoError(t, err)
			got, err := lines.All()
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "ok1", got[0])
			assert.Equal(t, "ok2", got[1])
			// a line of exactly the maximum length is kept
			assert.Len(t, got[2], maxLineSize)
			assert.Equal(t, 1, lines.Skipped())
		})
	}
}

func TestDecode_TrailingCarriageReturn(t *testing.T) {
	lines, err := Decode("x.log", []byte("a\r\nb\r"))
	require.NoError(t, err)
	got, err := lines.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestLoaderForKey(t *testing.T) {
	assert.Equal(t, GzipLoaderIdentifier, LoaderForKey("a.log.gz").Identifier())
	assert.Equal(t, PlainLoaderIdentifier, LoaderForKey("a.log").Identifier())
}
