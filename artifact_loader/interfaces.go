package artifact_loader

// Loader decodes a downloaded log object into its lines
// Loaders provided: [GzipLoader], [PlainLoader]
type Loader interface {
	Identifier() string
	// Load performs any necessary decompression and returns a reader over the object's lines
	Load(key string, data []byte) (*Lines, error)
}
