// Package web has a web based interface for inspecting a network and
// watching forward passes run.
package web

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Jonatan4444/proto-neural-zkp/nnet"
	"github.com/Jonatan4444/proto-neural-zkp/num"
	"github.com/Jonatan4444/proto-neural-zkp/stats"
)

// Network wraps a live network with the state shared between page handlers:
// captured diagnostics, per layer latency stats and the tensors from the
// last run for visualisation.
type Network struct {
	Model   string
	Conf    nnet.Config
	InShape []int
	Runs    int
	net     *nnet.Network
	infos   []nnet.LayerInfo
	latency []stats.Average
	runMs   stats.EMA
	conn    *websocket.Conn
	rng     *rand.Rand
	view    viewData
	sync.Mutex
}

// tensors captured from the last forward pass
type viewData struct {
	input   *num.Array
	outputs []*num.Array
}

// Create the shared network state from a loaded config.
func NewNetwork(conf nnet.Config, inShape []int) (*Network, error) {
	net, err := conf.Network()
	if err != nil {
		return nil, err
	}
	infos, err := net.Infos(inShape)
	if err != nil {
		return nil, fmt.Errorf("web: network does not accept input shape %v: %w", inShape, err)
	}
	return &Network{
		Model:   conf.Model,
		Conf:    conf,
		InShape: append([]int{}, inShape...),
		net:     net,
		infos:   infos,
		latency: make([]stats.Average, len(net.Layers)),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run applies the network to a random input, updating the captured
// diagnostics and latency stats and streaming each row to the websocket
// client if one is connected. Callers must hold the lock.
func (n *Network) Run() error {
	input := n.randomInput()
	infos := make([]nnet.LayerInfo, 0, len(n.net.Layers))
	n.net.Diag = func(info nnet.LayerInfo) {
		n.latency[len(infos)].AddDuration(info.Elapsed)
		infos = append(infos, info)
		n.send(info)
	}
	start := time.Now()
	_, err := n.net.Apply(input, nnet.SupportedRank)
	n.net.Diag = nil
	if err != nil {
		return err
	}
	n.runMs = stats.EMA(n.runMs.Add(float64(time.Since(start))/float64(time.Millisecond), 10))
	n.infos = infos
	n.Runs++
	n.updateView(input)
	return nil
}

func (n *Network) randomInput() *num.Array {
	input := num.NewArray(n.InShape...)
	data := input.Data()
	for i := range data {
		data[i] = n.rng.Float32()
	}
	return input
}

// capture the per layer outputs for the view page
func (n *Network) updateView(input *num.Array) {
	n.view.input = input
	n.view.outputs = n.view.outputs[:0]
	out := input
	for _, layer := range n.net.Layers {
		var err error
		if out, err = layer.Apply(out); err != nil {
			log.Println("view capture:", err)
			return
		}
		n.view.outputs = append(n.view.outputs, out)
	}
}

func (n *Network) send(info nnet.LayerInfo) {
	if n.conn == nil {
		return
	}
	if err := n.conn.WriteJSON(info); err != nil {
		log.Println("websocket dropped:", err)
		n.conn.Close()
		n.conn = nil
	}
}

// Infos returns the diagnostic rows from the last run, or the static
// preview before any run.
func (n *Network) Infos() []nnet.LayerInfo {
	return n.infos
}

// Latency returns the running latency stats for layer i.
func (n *Network) Latency(i int) *stats.Average {
	if i < 0 || i >= len(n.latency) {
		return &stats.Average{}
	}
	return &n.latency[i]
}

// RunTime is the smoothed total forward pass time in milliseconds.
func (n *Network) RunTime() float64 { return float64(n.runMs) }

// Totals over all layers.
func (n *Network) Totals() (params, muls int) {
	for _, info := range n.infos {
		params += info.Params
		muls += info.Muls
	}
	return params, muls
}
