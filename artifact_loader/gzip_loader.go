package artifact_loader

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

const GzipLoaderIdentifier = "gzip_loader"

// GzipLoader decodes gzip objects, including concatenated multi-member streams
type GzipLoader struct{}

func NewGzipLoader() Loader {
	return &GzipLoader{}
}

func (g GzipLoader) Identifier() string {
	return GzipLoaderIdentifier
}

// Load implements Loader
// The first line is read eagerly to validate the stream and the reader is then rewound.
func (g GzipLoader) Load(key string, data []byte) (*Lines, error) {
	lines, err := newLines(func() (io.Reader, error) {
		return gzip.NewReader(bytes.NewReader(data))
	})
	if err != nil {
		return nil, newDecodeError(key, data, err)
	}

	// check gzip format
	lines.Scan()
	if err := lines.Err(); err != nil {
		return nil, newDecodeError(key, data, err)
	}
	if err := lines.Reset(); err != nil {
		return nil, newDecodeError(key, data, err)
	}
	return lines, nil
}
