package blobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jonatan4444/proto-neural-zkp/nnet"
	"github.com/Jonatan4444/proto-neural-zkp/num"
)

func TestForLocation(t *testing.T) {
	if s, ok := ForLocation("gs://models/").(*GCSBlobstore); !ok || s.Bucket != "models" {
		t.Errorf("got %#v", ForLocation("gs://models/"))
	}
	if s, ok := ForLocation("/var/models").(*LocalBlobstore); !ok || s.Dir != "/var/models" {
		t.Errorf("got %#v", ForLocation("/var/models"))
	}
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &LocalBlobstore{Dir: t.TempDir()}

	pool, err := nnet.NewMaxPool(2)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := nnet.NewFullyConnected(num.FromSlice([]float32{1, 2, 3, 4}, 2, 2), num.FromSlice([]float32{5, 6}, 2))
	if err != nil {
		t.Fatal(err)
	}
	conf := nnet.Config{Model: "tiny"}.AddLayers(pool, nnet.Flatten{}, fc)

	if err := SaveNetworkConfig(ctx, store, conf, "tiny.net"); err != nil {
		t.Fatal(err)
	}
	got, err := LoadNetworkConfig(ctx, store, "tiny.net")
	if err != nil {
		t.Fatal(err)
	}
	if got.Model != "tiny" || len(got.Layers) != 3 {
		t.Errorf("got model %q with %d layers", got.Model, len(got.Layers))
	}
	net, err := got.Network()
	if err != nil {
		t.Fatal(err)
	}
	w, _ := net.Layers[2].(*nnet.FullyConnected).Params()
	if !w.Equal(num.FromSlice([]float32{1, 2, 3, 4}, 2, 2)) {
		t.Error("weights lost: got", w)
	}
}

func TestUploadKeepsExisting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := &LocalBlobstore{Dir: dir}

	src := filepath.Join(dir, "src.json")
	if err := os.WriteFile(src, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.Upload(ctx, src, "net.json"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.Upload(ctx, src, "net.json"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "net.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Error("existing object overwritten")
	}
}

func TestDownloadMissing(t *testing.T) {
	ctx := context.Background()
	store := &LocalBlobstore{Dir: t.TempDir()}
	err := store.Download(ctx, "nope.json", filepath.Join(t.TempDir(), "out.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("got", err)
	}
}
