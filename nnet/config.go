package nnet

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
)

// DataDir is the directory for network definition files.
var DataDir = defaultDataDir()

func defaultDataDir() string {
	if dir := os.Getenv("MODEL_DIR"); dir != "" {
		return dir
	}
	return "data"
}

// Config is the serialisable form of a whole network: an ordered sequence
// of layer records, plus the model name used for file naming and display.
type Config struct {
	Model  string        `json:"model,omitempty"`
	Layers []LayerConfig `json:"layers"`
}

// Append layer records to the config struct
func (c Config) AddLayers(layers ...ConfigLayer) Config {
	for _, l := range layers {
		c.Layers = append(c.Layers, l.Marshal())
	}
	return c
}

// Network builds the live network described by the config. Any layer which
// cannot be reconstructed fails the whole conversion with ErrDeserialize
// wrapping the cause.
func (c Config) Network() (*Network, error) {
	net := New()
	for i, l := range c.Layers {
		layer, err := l.Unmarshal()
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %w", ErrDeserialize, i, err)
		}
		net.AddLayer(layer)
	}
	return net, nil
}

// Config converts the network back to its serialisable form.
func (n *Network) Config(model string) Config {
	c := Config{Model: model, Layers: make([]LayerConfig, len(n.Layers))}
	for i, l := range n.Layers {
		c.Layers[i] = l.Marshal()
	}
	return c
}

// LoadConfig loads a network definition from a JSON file under DataDir.
func LoadConfig(name string) (Config, error) {
	return LoadConfigFile(path.Join(DataDir, name))
}

// LoadConfigFile loads a network definition from the JSON file at the
// given path.
func LoadConfigFile(filePath string) (c Config, err error) {
	f, err := os.Open(filePath)
	if err != nil {
		return c, err
	}
	defer f.Close()
	if err = json.NewDecoder(f).Decode(&c); err != nil {
		return c, fmt.Errorf("nnet: decoding %s: %w", filePath, err)
	}
	return c, nil
}

// Save writes the config as JSON to a file under DataDir.
func (c Config) Save(name string) error {
	return c.SaveFile(path.Join(DataDir, name))
}

// SaveFile writes the config as JSON to the given path. The file is
// written to a temp name then renamed into place.
func (c Config) SaveFile(filePath string) error {
	tmpPath := path.Join(path.Dir(filePath), "."+path.Base(filePath))
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err = enc.Encode(c); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, filePath)
}

func (c Config) String() string {
	s := fmt.Sprintf("== %s ==", c.Model)
	for i, l := range c.Layers {
		s += fmt.Sprintf("\n%2d: %s", i, l)
	}
	return s
}
