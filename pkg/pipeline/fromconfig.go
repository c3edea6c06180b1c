package pipeline

import (
	"io"
	"math/rand"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/catalog"
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/config"
	"github.com/cyclopcam/pedset/pkg/convert"
	"github.com/cyclopcam/pedset/pkg/source"
	"github.com/cyclopcam/pedset/pkg/storage"
)

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for _, x := range c {
		if err := x.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// FromConfig creates the pipeline and opens the sources of all clips.
// When finished, you must close the returned Closer, which closes the sources.
func FromConfig(log logs.Log, cfg *config.Config) (*Pipeline, []*Clip, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}
	catalogStore, err := storage.NewStorage(log, cfg.Catalog)
	if err != nil {
		return nil, nil, nil, err
	}
	output, err := storage.NewStorage(log, cfg.Output)
	if err != nil {
		return nil, nil, nil, err
	}
	crowd, err := convert.ParseCrowdPolicy(cfg.Crowd)
	if err != nil {
		return nil, nil, nil, err
	}

	p := &Pipeline{
		Log:                log,
		Observer:           &LogObserver{Log: log},
		Catalog:            catalog.New(catalogStore, cfg.Indent),
		Output:             output,
		FrameJump:          cfg.FrameJump,
		PruneSkipped:       cfg.PruneSkipped,
		Indent:             cfg.Indent,
		TestFraction:       cfg.Split.TestFraction,
		ValidationFraction: cfg.Split.ValidationFraction,
		TestName:           cfg.Split.TestName,
		ValidationName:     cfg.Split.ValidationName,
		Shuffler:           rand.New(rand.NewSource(cfg.Seed)),
	}

	opened := closers{}
	clips := []*Clip{}
	for i := range cfg.Clips {
		clip, closer, err := OpenClip(log, &cfg.Clips[i], crowd)
		if err != nil {
			opened.Close()
			return nil, nil, nil, coco.InClip(cfg.Clips[i].Name, err)
		}
		if closer != nil {
			opened = append(opened, closer)
		}
		clips = append(clips, clip)
	}
	return p, clips, opened, nil
}

// OpenClip opens the source of a configured clip. The returned Closer is nil if
// the source has nothing to close.
func OpenClip(log logs.Log, c *config.Clip, crowd convert.CrowdPolicy) (*Clip, io.Closer, error) {
	opts := convert.DefaultOptions(c.Name)
	opts.Crowd = crowd
	namer := convert.PrefixNamer{Ext: c.FrameExt}
	switch c.Format {
	case config.FormatCaviar:
		namer = convert.CaviarNamer(c.Name)
	case config.FormatAtrium:
		opts.Info = coco.AtriumInfo
		opts.Size = convert.AtriumSize
	}
	if c.Prefix != nil {
		namer.Prefix = *c.Prefix
	}
	if c.Offset != nil {
		namer.Offset = *c.Offset
	}
	namer.Ext = c.FrameExt
	opts.Namer = namer
	if c.ProbeSize {
		opts.Size = convert.NewProbeSize(c.FrameDir)
	}

	clip := &Clip{
		Name:    c.Name,
		Builder: convert.NewBuilder(opts),
	}
	if c.FrameDir != "" {
		media, err := storage.NewStorageFS(log, c.FrameDir)
		if err != nil {
			return nil, nil, err
		}
		clip.Media = media
	}

	switch c.Kind {
	case config.KindTree:
		tree, err := source.OpenTree(c.Path)
		if err != nil {
			return nil, nil, err
		}
		clip.Source = tree
		return clip, nil, nil
	case config.KindTable:
		table, err := source.OpenTable(c.Path)
		if err != nil {
			return nil, nil, err
		}
		table.Log = log
		if c.ListFrameDir {
			table.FrameDir = c.FrameDir
			table.FrameExt = c.FrameExt
		}
		clip.Source = table
		return clip, table, nil
	}
	return nil, nil, coco.Errorf(coco.ErrConfiguration, "unknown source kind '%v'", c.Kind)
}
