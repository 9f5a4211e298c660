package artifact_source

import (
	"context"
)

// ArtifactSource lists and downloads log objects from a store keyed like S3
// Sources provided: [AwsS3BucketSource], [FileSystemSource]
type ArtifactSource interface {
	Identifier() string

	// ListObjects calls fn for every object key under prefix, across all pages, in key order.
	// Listing stops at the first error returned by fn.
	ListObjects(ctx context.Context, prefix string, fn func(key string) error) error

	// GetObject returns the full content of the object
	GetObject(ctx context.Context, key string) ([]byte, error)

	Close() error
}
