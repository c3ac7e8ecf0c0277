package hashtron

import "encoding/json"
import "io"

type wire struct {
	Program [][2]uint32 `json:"program"`
	Table   []byte      `json:"table"`
}

// WriteJson serializes hashtron as a single json object
func (h Hashtron) WriteJson(w io.Writer) error {
	return json.NewEncoder(w).Encode(wire{Program: h.program, Table: h.table})
}

// ReadJson deserializes hashtron from the next json object of the decoder
func (h *Hashtron) ReadJson(d *json.Decoder) error {
	var v wire
	if err := d.Decode(&v); err != nil {
		return err
	}
	if v.Program == nil {
		v.Program = [][2]uint32{}
	}
	n, err := New(v.Program, v.Table)
	if err != nil {
		return err
	}
	*h = *n
	return nil
}
