// Package blobs stores and fetches serialised network definitions, either
// from a local directory or from a GCS bucket.
package blobs

import "context"

type BlobReader interface {
	// If no such object exists, Download should return an error for which
	// errors.Is(err, os.ErrNotExist) is true.
	Download(ctx context.Context, name string, destPath string) error
}

type Blobstore interface {
	BlobReader
	// Upload stores the file at sourcePath under the given object name.
	// If an object with the same name already exists it is left unchanged.
	Upload(ctx context.Context, sourcePath string, name string) error
}
