package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// weightsFile is the on-disk JSON form of a trained network. The
// architecture config travels with the weights so a loaded model never
// depends on the server's current settings.
type weightsFile struct {
	Config   Config               `json:"config"`
	Matrices map[string][]float64 `json:"matrices"`
}

func matrixNames() []string {
	return []string{
		"emb",
		"w_i", "w_f", "w_g", "w_o",
		"u_i", "u_f", "u_g", "u_o",
		"b_i", "b_f", "b_g", "b_o",
		"w_1", "b_1", "w_2", "b_2",
	}
}

// MarshalWeights serializes the architecture config and every matrix
// to the on-disk JSON form.
func (n *Network) MarshalWeights() ([]byte, error) {
	matrices := make(map[string][]float64, 17)
	for i, p := range n.Params() {
		matrices[matrixNames()[i]] = p.W
	}
	data, err := json.Marshal(weightsFile{Config: n.Cfg, Matrices: matrices})
	if err != nil {
		return nil, fmt.Errorf("marshal weights: %w", err)
	}
	return data, nil
}

// SaveWeights writes the network to path as JSON, atomically.
func (n *Network) SaveWeights(path string) error {
	data, err := n.MarshalWeights()
	if err != nil {
		return err
	}
	return WriteAtomic(path, data)
}

// LoadWeights reads a network saved by SaveWeights. Matrices are
// rebuilt from the stored config, then overwritten with the stored
// values.
func LoadWeights(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}
	var wf weightsFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse weights: %w", err)
	}
	n := NewNetwork(wf.Config)
	for i, p := range n.Params() {
		name := matrixNames()[i]
		stored, ok := wf.Matrices[name]
		if !ok {
			return nil, fmt.Errorf("weights file missing matrix %q", name)
		}
		if len(stored) != len(p.W) {
			return nil, fmt.Errorf("matrix %q has %d values, want %d", name, len(stored), len(p.W))
		}
		copy(p.W, stored)
	}
	return n, nil
}

// WriteAtomic writes data to path through a temp file in the same
// directory plus a rename, so readers never observe a partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
