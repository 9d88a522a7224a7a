// Command mkmodel builds a sample convolutional network definition with
// randomly initialised weights and stores it for the infer and web commands.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"k8s.io/klog/v2"

	"github.com/Jonatan4444/proto-neural-zkp/blobs"
	"github.com/Jonatan4444/proto-neural-zkp/nnet"
	"github.com/Jonatan4444/proto-neural-zkp/num"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := klog.FromContext(ctx)

	model := "cnn"
	store := nnet.DataDir
	var seed int64 = 1
	flag.StringVar(&model, "model", model, "model name")
	flag.StringVar(&store, "store", store, "model store: directory or gs:// bucket")
	flag.Int64Var(&seed, "seed", seed, "random number seed for weight init")
	flag.Parse()

	rng := rand.New(rand.NewSource(seed))
	conv, err := nnet.NewConvolution(randomWeights(rng, 9, 8, 3, 3))
	if err != nil {
		return err
	}
	pool, err := nnet.NewMaxPool(2)
	if err != nil {
		return err
	}
	// conv on [1, 28, 28] gives [8, 26, 26], pooled to [8, 13, 13]
	nin := 8 * 13 * 13
	fc, err := nnet.NewFullyConnected(randomWeights(rng, nin, 10, nin), randomWeights(rng, nin, 10))
	if err != nil {
		return err
	}

	conf := nnet.Config{Model: model}.AddLayers(
		conv,
		nnet.Relu{},
		pool,
		nnet.Flatten{},
		fc,
		nnet.Normalize{},
	)

	name := model + ".net"
	if err := blobs.SaveNetworkConfig(ctx, blobs.ForLocation(store), conf, name); err != nil {
		return err
	}
	log.Info("saved network", "name", name, "store", store, "layers", len(conf.Layers))
	return nil
}

// weights scaled by 1/sqrt(nin)
func randomWeights(rng *rand.Rand, nin int, dims ...int) *num.Array {
	scale := float32(1 / math.Sqrt(float64(nin)))
	a := num.NewArray(dims...)
	data := a.Data()
	for i := range data {
		data[i] = float32(rng.NormFloat64()) * scale
	}
	return a
}
