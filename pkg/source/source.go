// Package source reads native annotation sources and normalizes them into frames of canonical boxes.
//
// There are two kinds of source:
//
//	TableSource: SQLite rows of top-left/bottom-right boxes, keyed by frame number
//	TreeSource:  an XML document with one node per frame, holding center+extent boxes
//
// Whatever the source, ListFrames returns frames sorted by frame number, and every
// frame has a non-nil (possibly empty) list of boxes.
package source

import (
	"sort"

	"github.com/cyclopcam/pedset/pkg/coco"
)

// Frame is one annotated frame of a clip
type Frame struct {
	Number   int                // The source's native frame index (not necessarily contiguous)
	FileName string             // Backing image file, if the source knows it
	Boxes    []coco.BoundingBox // Canonical boxes, in source order
}

// Source is any annotation source that can be converted into frames
type Source interface {
	ListFrames() ([]Frame, error)
}

// sortFrames sorts by frame number, and rejects duplicate frame numbers.
func sortFrames(frames []Frame) error {
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Number < frames[j].Number
	})
	for i := 1; i < len(frames); i++ {
		if frames[i].Number == frames[i-1].Number {
			return coco.Errorf(coco.ErrSourceRead, "frame %v appears more than once", frames[i].Number)
		}
	}
	return nil
}
