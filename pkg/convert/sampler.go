package convert

import (
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/source"
)

// Keep returns true if the frame at position i survives decimation with the given jump.
// A jump of J keeps one frame, then skips the next J frames.
func Keep(i, jump int) bool {
	return i%(jump+1) == 0
}

// Sample keeps one frame, skips the next 'jump' frames, and repeats, starting from the first frame.
// The relative order of frames is preserved.
func Sample(frames []source.Frame, jump int) ([]source.Frame, error) {
	kept, _, err := Partition(frames, jump)
	return kept, err
}

// Partition is Sample, but also returns the frames that were skipped.
// Keep/skip decisions depend only on the position of a frame in the sequence.
func Partition(frames []source.Frame, jump int) (kept, skipped []source.Frame, err error) {
	if jump < 0 {
		return nil, nil, coco.Errorf(coco.ErrConfiguration, "frame jump must not be negative (got %v)", jump)
	}
	kept = make([]source.Frame, 0, (len(frames)+jump)/(jump+1))
	skipped = make([]source.Frame, 0, len(frames)-cap(kept))
	for i, f := range frames {
		if Keep(i, jump) {
			kept = append(kept, f)
		} else {
			skipped = append(skipped, f)
		}
	}
	return kept, skipped, nil
}
