package coco

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encode writes d as a single JSON document.
// The output is a pure function of d: nothing is renumbered, filtered, or reordered.
func Encode(w io.Writer, d *Dataset, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(normalized(d))
}

// Decode reads one dataset document
func Decode(r io.Reader) (*Dataset, error) {
	d := &Dataset{}
	if err := json.NewDecoder(r).Decode(d); err != nil {
		return nil, err
	}
	return normalized(d), nil
}

// WriteFile encodes d into filename, replacing any existing file.
func WriteFile(filename string, d *Dataset, indent bool) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Encode(f, d, indent); err != nil {
		f.Close()
		return fmt.Errorf("Failed to write %v: %w", filename, err)
	}
	return f.Close()
}

func ReadFile(filename string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Failed to decode %v: %w", filename, err)
	}
	return d, nil
}

// normalized replaces nil slices with empty ones, so that they encode as [] and not null.
// The slices are shared with d, not copied.
func normalized(d *Dataset) *Dataset {
	if d.Licenses != nil && d.Categories != nil && d.Images != nil && d.Annotations != nil {
		return d
	}
	n := *d
	if n.Licenses == nil {
		n.Licenses = []License{}
	}
	if n.Categories == nil {
		n.Categories = []Category{}
	}
	if n.Images == nil {
		n.Images = []Image{}
	}
	if n.Annotations == nil {
		n.Annotations = []Annotation{}
	}
	return &n
}
