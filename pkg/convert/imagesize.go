package convert

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bmharper/cimg/v2"
)

// ImageSizer reports the pixel dimensions of a frame image
type ImageSizer interface {
	ImageSize(fileName string) (width, height int, err error)
}

// FixedSize is used when every frame of a clip has the same, known, dimensions
type FixedSize struct {
	Width  int
	Height int
}

var (
	CaviarSize = FixedSize{Width: 384, Height: 288}
	AtriumSize = FixedSize{Width: 800, Height: 600}
)

func (s FixedSize) ImageSize(fileName string) (int, int, error) {
	return s.Width, s.Height, nil
}

// ProbeSize decodes the first image it is asked about, and assumes that every other
// frame of the clip has the same dimensions.
type ProbeSize struct {
	Dir string

	once   sync.Once
	width  int
	height int
	err    error
}

func NewProbeSize(dir string) *ProbeSize {
	return &ProbeSize{Dir: dir}
}

func (s *ProbeSize) ImageSize(fileName string) (int, int, error) {
	s.once.Do(func() {
		filename := filepath.Join(s.Dir, fileName)
		img, err := cimg.ReadFile(filename)
		if err != nil {
			s.err = fmt.Errorf("Failed to probe image size of %v: %w", filename, err)
			return
		}
		s.width = img.Width
		s.height = img.Height
	})
	return s.width, s.height, s.err
}
