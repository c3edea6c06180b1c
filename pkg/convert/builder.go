// Package convert decimates the frames of a clip, and builds the clip's annotation dataset.
package convert

import (
	"fmt"

	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/source"
)

// CrowdPolicy decides the iscrowd flag of each annotation
type CrowdPolicy string

const (
	// CrowdNever sets iscrowd=0 on every annotation. Every box is a single person.
	CrowdNever CrowdPolicy = "never"
	// CrowdMultipleSubjects sets iscrowd=1 on every annotation of a frame that has more than one box.
	CrowdMultipleSubjects CrowdPolicy = "multiple"
)

func ParseCrowdPolicy(s string) (CrowdPolicy, error) {
	switch CrowdPolicy(s) {
	case "", CrowdNever:
		return CrowdNever, nil
	case CrowdMultipleSubjects:
		return CrowdMultipleSubjects, nil
	}
	return "", coco.Errorf(coco.ErrConfiguration, "unknown crowd policy '%v' (expected '%v' or '%v')", s, CrowdNever, CrowdMultipleSubjects)
}

func (p CrowdPolicy) isCrowd(boxesInFrame int) int {
	if p == CrowdMultipleSubjects && boxesInFrame > 1 {
		return 1
	}
	return 0
}

// Options control the records that the Builder emits
type Options struct {
	Info     coco.Info
	License  coco.License
	Category coco.Category
	Namer    Namer
	Size     ImageSizer
	Crowd    CrowdPolicy
}

// DefaultOptions are the CAVIAR settings of the given clip
func DefaultOptions(clip string) Options {
	return Options{
		Info:     coco.CaviarInfo,
		License:  coco.DefaultLicense,
		Category: coco.PersonCategory,
		Namer:    CaviarNamer(clip),
		Size:     CaviarSize,
		Crowd:    CrowdNever,
	}
}

// Builder turns the kept frames of a clip into a dataset.
// A Builder holds no state between calls to Build, so one Builder may build many clips.
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	if opts.Namer == nil {
		opts.Namer = PrefixNamer{Ext: ".jpg"}
	}
	if opts.Size == nil {
		opts.Size = CaviarSize
	}
	if opts.Crowd == "" {
		opts.Crowd = CrowdNever
	}
	return &Builder{opts: opts}
}

// FileName is the image file name that Build gives to the frame
func (b *Builder) FileName(frame source.Frame) string {
	return b.opts.Namer.FileName(frame)
}

// ids is the counter pair of one dataset under construction
type ids struct {
	image      int
	annotation int
}

func (c *ids) nextImage() int {
	c.image++
	return c.image
}

func (c *ids) nextAnnotation() int {
	c.annotation++
	return c.annotation
}

// Build emits one image per frame, and one annotation per box, with ids allocated
// sequentially from 1. Frames without boxes still produce an image.
// If any box is malformed, no dataset is returned.
func (b *Builder) Build(clip string, frames []source.Frame) (*coco.Dataset, error) {
	d := coco.NewDataset(b.opts.Info, b.opts.License, b.opts.Category)
	counter := ids{}

	for _, frame := range frames {
		fileName := b.FileName(frame)
		width, height, err := b.opts.Size.ImageSize(fileName)
		if err != nil {
			return nil, coco.InClip(clip, fmt.Errorf("%w: frame %v: %v", coco.ErrSourceRead, frame.Number, err))
		}

		imageID := counter.nextImage()
		d.Images = append(d.Images, coco.Image{
			ID:       imageID,
			FileName: fileName,
			Width:    width,
			Height:   height,
			License:  b.opts.License.ID,
		})

		for i, box := range frame.Boxes {
			if err := checkBox(box); err != nil {
				return nil, coco.InClip(clip, coco.Errorf(coco.ErrMalformedAnnotation, "frame %v, box %v %v: %v", frame.Number, i, box, err))
			}
			d.Annotations = append(d.Annotations, coco.Annotation{
				ID:         counter.nextAnnotation(),
				ImageID:    imageID,
				CategoryID: b.opts.Category.ID,
				BBox:       box,
				Area:       box.Area(),
				IsCrowd:    b.opts.Crowd.isCrowd(len(frame.Boxes)),
			})
		}
	}

	return d, nil
}

func checkBox(box coco.BoundingBox) error {
	if !box.IsFinite() {
		return fmt.Errorf("non-finite coordinates")
	}
	if box.Width < 0 || box.Height < 0 {
		return fmt.Errorf("negative extent")
	}
	return nil
}
