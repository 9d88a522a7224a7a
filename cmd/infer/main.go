// Command infer loads a network definition, runs one forward pass and
// prints the per layer diagnostics and the output tensor.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

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

	store := nnet.DataDir
	inputFile := ""
	shape := "1,28,28"
	var seed int64 = 1
	flag.StringVar(&store, "store", store, "model store: directory or gs:// bucket")
	flag.StringVar(&inputFile, "input", inputFile, "input tensor JSON file, random input if unset")
	flag.StringVar(&shape, "shape", shape, "shape of the random input tensor")
	flag.Int64Var(&seed, "seed", seed, "random number seed for the input")
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: infer [opts] <model>")
	}
	model := flag.Arg(0)

	conf, err := blobs.LoadNetworkConfig(ctx, blobs.ForLocation(store), model+".net")
	if err != nil {
		return err
	}
	log.Info("loaded network", "model", model, "layers", len(conf.Layers))

	net, err := conf.Network()
	if err != nil {
		return err
	}

	input, err := loadInput(inputFile, shape, seed)
	if err != nil {
		return err
	}

	fmt.Println(nnet.InfoHeader())
	totalMuls := 0
	net.Diag = func(info nnet.LayerInfo) {
		totalMuls += info.Muls
		fmt.Println(info)
	}
	output, err := net.Apply(input, nnet.SupportedRank)
	if err != nil {
		return err
	}
	fmt.Printf("total: %d params, %d muls\n", net.NumParams(), totalMuls)
	fmt.Println("output:", output)
	return nil
}

func loadInput(inputFile, shape string, seed int64) (*num.Array, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, err
		}
		input := new(num.Array)
		if err := json.Unmarshal(data, input); err != nil {
			return nil, fmt.Errorf("decoding input tensor: %w", err)
		}
		return input, nil
	}
	var dims []int
	for _, field := range strings.Split(shape, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid shape %q: %w", shape, err)
		}
		dims = append(dims, d)
	}
	rng := rand.New(rand.NewSource(seed))
	input := num.NewArray(dims...)
	data := input.Data()
	for i := range data {
		data[i] = rng.Float32()
	}
	return input, nil
}
