package artifact_loader

import "strings"

const gzipExtension = ".gz"

// LoaderForKey returns the loader matching the object key's extension
func LoaderForKey(key string) Loader {
	if strings.HasSuffix(key, gzipExtension) {
		return NewGzipLoader()
	}
	return NewPlainLoader()
}

// Decode returns the lines of the object stored under key
func Decode(key string, data []byte) (*Lines, error) {
	return LoaderForKey(key).Load(key, data)
}
