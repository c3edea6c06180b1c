package source

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cyclopcam/pedset/pkg/coco"
)

// ListFrameDir lists the numbered frame images in dir (eg "00042.jpg" is frame 42).
// Only files ending in ext are considered (".jpg" if ext is empty). Frames are returned
// sorted by number, because directory listings carry no ordering guarantee.
func ListFrameDir(dir, ext string) ([]Frame, error) {
	if ext == "" {
		ext = ".jpg"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "failed to list frames in %v: %v", dir, err)
	}

	frames := []Frame{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		n, err := strconv.Atoi(stem)
		if err != nil {
			return nil, coco.Errorf(coco.ErrSourceRead, "frame file %v in %v is not numbered", e.Name(), dir)
		}
		frames = append(frames, Frame{
			Number:   n,
			FileName: e.Name(),
			Boxes:    []coco.BoundingBox{},
		})
	}

	if err := sortFrames(frames); err != nil {
		return nil, err
	}
	return frames, nil
}
