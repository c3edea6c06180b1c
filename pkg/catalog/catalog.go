// Package catalog keeps the per-clip datasets between conversion and merging.
package catalog

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/storage"
)

// Catalog stores one dataset document per clip, as <clip>.json
type Catalog struct {
	Store  storage.Storage
	Indent bool
}

func New(store storage.Storage, indent bool) *Catalog {
	return &Catalog{
		Store:  store,
		Indent: indent,
	}
}

func filename(clip string) (string, error) {
	if clip == "" || strings.ContainsAny(clip, `/\`) || strings.Contains(clip, "..") {
		return "", coco.Errorf(coco.ErrConfiguration, "invalid clip name '%v'", clip)
	}
	return clip + ".json", nil
}

func (c *Catalog) Save(clip string, d *coco.Dataset) error {
	name, err := filename(clip)
	if err != nil {
		return err
	}
	buf := bytes.Buffer{}
	if err := coco.Encode(&buf, d, c.Indent); err != nil {
		return err
	}
	return storage.WriteFile(c.Store, name, &buf)
}

func (c *Catalog) Load(clip string) (*coco.Dataset, error) {
	name, err := filename(clip)
	if err != nil {
		return nil, err
	}
	f, err := c.Store.ReadFile(name)
	if err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "dataset of clip %v: %v", clip, err)
	}
	defer f.Reader.Close()
	return coco.Decode(f.Reader)
}

// Has returns true if a dataset for the clip has been saved
func (c *Catalog) Has(clip string) (bool, error) {
	name, err := filename(clip)
	if err != nil {
		return false, err
	}
	f, err := c.Store.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	f.Reader.Close()
	return true, nil
}
