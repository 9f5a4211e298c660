package artifact_loader

import (
	"bytes"
	"io"
)

const PlainLoaderIdentifier = "plain_loader"

// PlainLoader splits an uncompressed object into lines
type PlainLoader struct{}

func NewPlainLoader() Loader {
	return &PlainLoader{}
}

func (p PlainLoader) Identifier() string {
	return PlainLoaderIdentifier
}

// Load implements Loader
func (p PlainLoader) Load(_ string, data []byte) (*Lines, error) {
	return newLines(func() (io.Reader, error) {
		return bytes.NewReader(data), nil
	})
}
