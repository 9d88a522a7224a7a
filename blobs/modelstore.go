package blobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jonatan4444/proto-neural-zkp/nnet"
)

// ForLocation returns the blobstore for a location spec: a gs://bucket URL
// or a local directory path.
func ForLocation(location string) Blobstore {
	if bucket, ok := strings.CutPrefix(location, "gs://"); ok {
		return &GCSBlobstore{Bucket: strings.TrimSuffix(bucket, "/")}
	}
	return &LocalBlobstore{Dir: location}
}

// LoadNetworkConfig fetches the named network record from the store and
// decodes it.
func LoadNetworkConfig(ctx context.Context, store BlobReader, name string) (nnet.Config, error) {
	var conf nnet.Config

	tempDir, err := os.MkdirTemp("", "netload")
	if err != nil {
		return conf, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	destPath := filepath.Join(tempDir, "network.json")
	if err := store.Download(ctx, name, destPath); err != nil {
		return conf, err
	}

	conf, err = nnet.LoadConfigFile(destPath)
	if err != nil {
		return conf, fmt.Errorf("decoding network %q: %w", name, err)
	}
	return conf, nil
}

// SaveNetworkConfig encodes the config and uploads it to the store under
// the given object name.
func SaveNetworkConfig(ctx context.Context, store Blobstore, conf nnet.Config, name string) error {
	tempDir, err := os.MkdirTemp("", "netsave")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePath := filepath.Join(tempDir, "network.json")
	if err = conf.SaveFile(sourcePath); err != nil {
		return fmt.Errorf("encoding network %q: %w", name, err)
	}

	return store.Upload(ctx, sourcePath, name)
}
