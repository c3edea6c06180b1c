// Package config loads the pipeline configuration file.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/convert"
	"github.com/cyclopcam/pedset/pkg/storage"
	"github.com/spf13/viper"
)

// Source kinds
const (
	KindTable = "table" // SQLite bounding_boxes table
	KindTree  = "tree"  // XML frame/object tree
)

// Clip formats, which decide the dataset header, image size and file naming
const (
	FormatCaviar = "caviar"
	FormatAtrium = "atrium"
)

type Config struct {
	FrameJump    int    `json:"frameJump" mapstructure:"frameJump"`       // Number of frames skipped after every kept frame
	PruneSkipped bool   `json:"pruneSkipped" mapstructure:"pruneSkipped"` // Delete the media of skipped frames
	Indent       bool   `json:"indent" mapstructure:"indent"`             // Indent the JSON documents
	Crowd        string `json:"crowd" mapstructure:"crowd"`               // "never" or "multiple"
	Seed         int64  `json:"seed" mapstructure:"seed"`                 // Seed of the split shuffle
	Split        Split  `json:"split" mapstructure:"split"`

	Catalog storage.Config `json:"catalog" mapstructure:"catalog"` // Where per-clip datasets are kept
	Output  storage.Config `json:"output" mapstructure:"output"`   // Where the merged splits are written

	Clips []Clip `json:"clips" mapstructure:"clips"`
}

type Split struct {
	TestFraction       float64 `json:"testFraction" mapstructure:"testFraction"`
	ValidationFraction float64 `json:"validationFraction" mapstructure:"validationFraction"`
	TestName           string  `json:"testName" mapstructure:"testName"`             // Output name of the test set
	ValidationName     string  `json:"validationName" mapstructure:"validationName"` // Output name of the validation set
}

// Clip is one annotated video clip
type Clip struct {
	Name     string `json:"name" mapstructure:"name"`
	Kind     string `json:"kind" mapstructure:"kind"`         // "table" or "tree"
	Path     string `json:"path" mapstructure:"path"`         // SQLite database or XML file
	Format   string `json:"format" mapstructure:"format"`     // "caviar" or "atrium". Default is "caviar" for trees, "atrium" for tables.
	FrameDir string `json:"frameDir" mapstructure:"frameDir"` // Directory of the clip's frame images. Optional.
	FrameExt string `json:"frameExt" mapstructure:"frameExt"` // Default ".jpg"

	// If true, and the clip is a table, frames are listed from FrameDir instead of from the table
	ListFrameDir bool `json:"listFrameDir" mapstructure:"listFrameDir"`

	// If true, the image size is read from the first frame in FrameDir instead of the format default
	ProbeSize bool `json:"probeSize" mapstructure:"probeSize"`

	// File naming overrides. Prefix defaults to the clip name for caviar.
	Prefix *string `json:"prefix" mapstructure:"prefix"`
	Offset *int    `json:"offset" mapstructure:"offset"`
}

func setDefaults(v *viper.Viper) {
	// Every key needs a default to be overridable from the environment
	v.SetDefault("frameJump", 19)
	v.SetDefault("pruneSkipped", false)
	v.SetDefault("indent", false)
	v.SetDefault("crowd", string(convert.CrowdNever))
	v.SetDefault("seed", 1)
	v.SetDefault("split.testFraction", 0.7)
	v.SetDefault("split.validationFraction", 0.3)
	v.SetDefault("split.testName", "train")
	v.SetDefault("split.validationName", "test")
}

// Load reads a YAML or JSON config file. Values can be overridden by environment
// variables, such as PEDSET_FRAMEJUMP or PEDSET_SPLIT_TESTFRACTION.
func Load(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(filename)
	v.SetEnvPrefix("pedset")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, coco.Errorf(coco.ErrConfiguration, "reading %v: %v", filename, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, coco.Errorf(coco.ErrConfiguration, "%v", err)
	}
	for i := range c.Clips {
		c.Clips[i].setDefaults()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Clip) setDefaults() {
	if c.Format == "" {
		if c.Kind == KindTable {
			c.Format = FormatAtrium
		} else {
			c.Format = FormatCaviar
		}
	}
	if c.FrameExt == "" {
		c.FrameExt = ".jpg"
	}
}

// Validate returns an ErrConfiguration error describing the first problem found
func (c *Config) Validate() error {
	if c.FrameJump < 0 {
		return coco.Errorf(coco.ErrConfiguration, "frameJump may not be negative (%v)", c.FrameJump)
	}
	if _, err := convert.ParseCrowdPolicy(c.Crowd); err != nil {
		return err
	}
	if err := c.Split.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	names := map[string]bool{}
	for i := range c.Clips {
		clip := &c.Clips[i]
		if err := clip.Validate(); err != nil {
			return coco.InClip(clip.Name, err)
		}
		if clip.ListFrameDir && c.PruneSkipped {
			// A second run would list only the surviving frames, and decimate them again
			return coco.InClip(clip.Name, coco.Errorf(coco.ErrConfiguration, "pruneSkipped cannot be used with listFrameDir"))
		}
		if names[clip.Name] {
			return coco.Errorf(coco.ErrConfiguration, "clip %v is listed more than once", clip.Name)
		}
		names[clip.Name] = true
	}
	return nil
}

func (s *Split) Validate() error {
	for _, f := range []float64{s.TestFraction, s.ValidationFraction} {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return coco.Errorf(coco.ErrConfiguration, "split fraction %v is outside of [0, 1]", f)
		}
	}
	if s.TestFraction+s.ValidationFraction > 1+1e-9 {
		return coco.Errorf(coco.ErrConfiguration, "split fractions %v and %v add up to more than 1", s.TestFraction, s.ValidationFraction)
	}
	if s.TestName == "" || s.ValidationName == "" || s.TestName == s.ValidationName {
		return coco.Errorf(coco.ErrConfiguration, "split names must be distinct and non-empty ('%v', '%v')", s.TestName, s.ValidationName)
	}
	return nil
}

func (c *Clip) Validate() error {
	if c.Name == "" || strings.ContainsAny(c.Name, `/\`) || strings.Contains(c.Name, "..") {
		return coco.Errorf(coco.ErrConfiguration, "invalid clip name '%v'", c.Name)
	}
	if c.Kind != KindTable && c.Kind != KindTree {
		return coco.Errorf(coco.ErrConfiguration, "unknown source kind '%v' (expected '%v' or '%v')", c.Kind, KindTable, KindTree)
	}
	if c.Path == "" {
		return coco.Errorf(coco.ErrConfiguration, "no source path")
	}
	if c.Format != FormatCaviar && c.Format != FormatAtrium {
		return coco.Errorf(coco.ErrConfiguration, "unknown format '%v' (expected '%v' or '%v')", c.Format, FormatCaviar, FormatAtrium)
	}
	if (c.ListFrameDir || c.ProbeSize) && c.FrameDir == "" {
		return coco.Errorf(coco.ErrConfiguration, "listFrameDir and probeSize need a frameDir")
	}
	if c.ListFrameDir && c.Kind != KindTable {
		return coco.Errorf(coco.ErrConfiguration, "listFrameDir only applies to table sources")
	}
	if c.Offset != nil && *c.Offset < 0 {
		return coco.Errorf(coco.ErrConfiguration, "negative file name offset %v", *c.Offset)
	}
	return nil
}
