// Package pipeline converts clips into the catalog, splits them, and writes the merged splits.
package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/catalog"
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/convert"
	"github.com/cyclopcam/pedset/pkg/merge"
	"github.com/cyclopcam/pedset/pkg/source"
	"github.com/cyclopcam/pedset/pkg/split"
	"github.com/cyclopcam/pedset/pkg/storage"
)

// Clip is one source of annotations, and the images that it describes
type Clip struct {
	Name    string
	Source  source.Source
	Builder *convert.Builder
	Media   storage.Storage // Frame images, by file name. If nil, images are not copied or pruned.
}

// Pipeline holds everything that a run needs. There is no global state.
type Pipeline struct {
	Log          logs.Log
	Observer     Observer
	Catalog      *catalog.Catalog
	Output       storage.Storage
	FrameJump    int
	PruneSkipped bool // Delete the images of skipped frames from the clip's Media
	Indent       bool

	TestFraction       float64
	ValidationFraction float64
	TestName           string
	ValidationName     string
	Shuffler           split.Shuffler
}

func (p *Pipeline) observer() Observer {
	if p.Observer == nil {
		return &LogObserver{Log: p.Log}
	}
	return p.Observer
}

// ConvertClip samples the frames of the clip, builds its dataset, and saves it in the catalog.
func (p *Pipeline) ConvertClip(clip *Clip) (*coco.Dataset, error) {
	d, skipped, err := p.convertClip(clip)
	if err != nil {
		return nil, err
	}
	p.prune(clip, skipped)
	return d, nil
}

// convertClip is ConvertClip without pruning. It returns the skipped frames.
func (p *Pipeline) convertClip(clip *Clip) (*coco.Dataset, []source.Frame, error) {
	frames, err := clip.Source.ListFrames()
	if err != nil {
		return nil, nil, coco.InClip(clip.Name, err)
	}
	kept, skipped, err := convert.Partition(frames, p.FrameJump)
	if err != nil {
		return nil, nil, coco.InClip(clip.Name, err)
	}
	d, err := clip.Builder.Build(clip.Name, kept)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Catalog.Save(clip.Name, d); err != nil {
		return nil, nil, coco.InClip(clip.Name, err)
	}
	p.observer().ClipConverted(clip.Name, len(kept), len(skipped), d)
	return d, skipped, nil
}

// prune deletes the images of skipped frames, if PruneSkipped is set
func (p *Pipeline) prune(clip *Clip, skipped []source.Frame) {
	if !p.PruneSkipped || clip.Media == nil {
		return
	}
	nMissing := 0
	for _, f := range skipped {
		err := clip.Media.DeleteFile(clip.Builder.FileName(f))
		if errors.Is(err, os.ErrNotExist) {
			nMissing++
		} else if err != nil {
			p.Log.Warnf("Failed to prune skipped frame %v of %v: %v", f.Number, clip.Name, err)
		}
	}
	if nMissing != 0 {
		p.Log.Warnf("%v skipped frames of %v had no image to prune", nMissing, clip.Name)
	}
}

// MergeSplit merges the catalog datasets of the clips, copies their images into <name>/,
// and writes the merged dataset to <name>/<name>.json.
func (p *Pipeline) MergeSplit(name string, clips []*Clip) (*coco.Dataset, error) {
	m, err := p.mergeSplit(name, clips)
	if err != nil {
		return nil, err
	}
	if err := p.writeSplit(m); err != nil {
		return nil, err
	}
	return m.merged, nil
}

// mergedSplit is a split that has been merged in memory, but not yet written
type mergedSplit struct {
	name   string
	clips  []*Clip
	inputs []merge.Input
	merged *coco.Dataset
}

func (p *Pipeline) mergeSplit(name string, clips []*Clip) (*mergedSplit, error) {
	inputs := make([]merge.Input, 0, len(clips))
	for _, clip := range clips {
		d, err := p.Catalog.Load(clip.Name)
		if err != nil {
			return nil, coco.InClip(clip.Name, err)
		}
		inputs = append(inputs, merge.Input{Name: clip.Name, Dataset: d})
	}
	merged, err := merge.Merge(inputs)
	if err != nil {
		return nil, err
	}
	p.observer().SplitMerged(name, merged)
	return &mergedSplit{
		name:   name,
		clips:  clips,
		inputs: inputs,
		merged: merged,
	}, nil
}

func (p *Pipeline) writeSplit(m *mergedSplit) error {
	for i, clip := range m.clips {
		if clip.Media == nil {
			continue
		}
		n, err := storage.Relocate(p.Output, m.name, clip.Media, m.inputs[i].Dataset.FileNames())
		if err != nil {
			return coco.InClip(clip.Name, coco.Errorf(coco.ErrSourceRead, "%v", err))
		}
		p.observer().MediaRelocated(m.name, clip.Name, n)
	}

	// The document goes last, so that a complete document implies complete media
	buf := bytes.Buffer{}
	if err := coco.Encode(&buf, m.merged, p.Indent); err != nil {
		return err
	}
	return storage.WriteFile(p.Output, path.Join(m.name, m.name+".json"), &buf)
}

// Run splits the clip names, converts every clip, merges both splits, and then writes them.
// The first failure aborts the run. Nothing is written to the output, and no skipped
// frame is pruned, until every clip has been converted and both splits have been merged.
func (p *Pipeline) Run(clips []*Clip) error {
	byName := map[string]*Clip{}
	names := []string{}
	for _, c := range clips {
		if byName[c.Name] != nil {
			return coco.Errorf(coco.ErrConfiguration, "clip %v is listed more than once", c.Name)
		}
		byName[c.Name] = c
		names = append(names, c.Name)
	}
	if p.Shuffler == nil {
		return coco.Errorf(coco.ErrConfiguration, "no random source for the split")
	}

	r, err := split.New(p.Shuffler).Split(names, p.TestFraction, p.ValidationFraction)
	if err != nil {
		return err
	}
	p.observer().SplitComputed(r)

	skipped := make([][]source.Frame, len(clips))
	for i, c := range clips {
		_, s, err := p.convertClip(c)
		if err != nil {
			return err
		}
		skipped[i] = s
	}

	splits := []*mergedSplit{}
	for _, set := range []struct {
		name  string
		clips []string
	}{
		{p.TestName, r.Test},
		{p.ValidationName, r.Validation},
	} {
		if len(set.clips) == 0 {
			p.Log.Warnf("Split %v is empty, so it will not be written", set.name)
			continue
		}
		members := []*Clip{}
		for _, n := range set.clips {
			members = append(members, byName[n])
		}
		m, err := p.mergeSplit(set.name, members)
		if err != nil {
			return err
		}
		splits = append(splits, m)
	}

	for _, m := range splits {
		if err := p.writeSplit(m); err != nil {
			return err
		}
	}

	for i, c := range clips {
		p.prune(c, skipped[i])
	}
	return nil
}
