package ensemble

import "compress/lzw"
import "encoding/json"
import "errors"
import "fmt"
import "io"
import "os"
import "path/filepath"

import "github.com/neurlang/pneumonia/hashtron"
import "github.com/neurlang/pneumonia/layer/vote"

// ErrBadCheckpoint is returned for a checkpoint which doesn't describe a valid network
var ErrBadCheckpoint = errors.New("ensemble: bad checkpoint")

type header struct {
	Classes  int      `json:"classes"`
	Bank     int      `json:"bank"`
	Features int      `json:"features"`
	Layout   uint32   `json:"layout"`
	Cursor   int      `json:"cursor"`
	Names    []string `json:"names,omitempty"`
}

// WriteCheckpointFile writes the network into a lzw file, replacing it atomically
func (n *Network) WriteCheckpointFile(name string) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".tmp*")
	if err != nil {
		return err
	}
	err = n.WriteCheckpoint(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), name)
	}
	if err != nil {
		os.Remove(tmp.Name())
	}
	return err
}

// WriteCheckpoint writes the header followed by every hashtron as lzw compressed json
func (n *Network) WriteCheckpoint(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	err := json.NewEncoder(lw).Encode(header{
		Classes:  n.classes,
		Bank:     n.bank,
		Features: n.features,
		Layout:   n.layout,
		Cursor:   n.cursor,
		Names:    n.names,
	})
	if err != nil {
		lw.Close()
		return err
	}
	for i := range n.trons {
		if err := n.trons[i].WriteJson(lw); err != nil {
			lw.Close()
			return err
		}
	}
	return lw.Close()
}

// ReadCheckpointFile reads a network from a lzw file
func ReadCheckpointFile(name string) (*Network, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	n, err := ReadCheckpoint(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// ReadCheckpoint reads a network written by WriteCheckpoint
func ReadCheckpoint(r io.Reader) (*Network, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	d := json.NewDecoder(lr)

	var h header
	if err := d.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadCheckpoint, err)
	}
	if err := checkShape(h.Classes, h.Bank, h.Features); err != nil {
		return nil, fmt.Errorf("%w: shape %dx%d over %d features", ErrBadCheckpoint, h.Classes, h.Bank, h.Features)
	}
	if h.Cursor < 0 || h.Cursor >= h.Bank {
		return nil, fmt.Errorf("%w: cursor %d out of bank %d", ErrBadCheckpoint, h.Cursor, h.Bank)
	}
	combiner, err := vote.New(h.Classes, h.Bank)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCheckpoint, err)
	}
	if h.Names != nil && len(h.Names) != h.Classes {
		return nil, fmt.Errorf("%w: %d names for %d classes", ErrBadCheckpoint, len(h.Names), h.Classes)
	}
	n := &Network{
		classes:  h.Classes,
		bank:     h.Bank,
		features: h.Features,
		layout:   h.Layout,
		cursor:   h.Cursor,
		names:    h.Names,
		trons:    make([]hashtron.Hashtron, h.Classes*h.Bank),
		combiner: combiner,
	}
	for i := range n.trons {
		if err := n.trons[i].ReadJson(d); err != nil {
			return nil, fmt.Errorf("%w: hashtron %d: %v", ErrBadCheckpoint, i, err)
		}
	}
	n.place()
	return n, nil
}
