package coco

import (
	flatbush "github.com/bmharper/flatbush-go"
)

// DefaultOverlapIoU is the IoU at which two subjects in the same image count as overlapping.
const DefaultOverlapIoU = 0.3

// Summary is a derived view of a dataset, for reporting only.
// It is never written into the dataset document.
type Summary struct {
	Images        int      `json:"images"`
	Annotations   int      `json:"annotations"`
	EmptyImages   []string `json:"emptyImages"`   // File names of images with no annotations
	SubjectImages []string `json:"subjectImages"` // File names of images with at least one annotation
	OverlapImages int      `json:"overlapImages"` // Number of images with at least one pair of overlapping subjects
	MaxSubjects   int      `json:"maxSubjects"`   // Largest number of annotations on a single image
}

// Summarize classifies every image as empty or holding subjects, and counts the images
// in which two subjects overlap with an IoU of at least minIoU.
func Summarize(d *Dataset, minIoU float64) *Summary {
	s := &Summary{
		Images:        len(d.Images),
		Annotations:   len(d.Annotations),
		EmptyImages:   []string{},
		SubjectImages: []string{},
	}

	byImage := map[int][]BoundingBox{}
	for _, ann := range d.Annotations {
		byImage[ann.ImageID] = append(byImage[ann.ImageID], ann.BBox)
	}

	for _, img := range d.Images {
		boxes := byImage[img.ID]
		if len(boxes) == 0 {
			s.EmptyImages = append(s.EmptyImages, img.FileName)
			continue
		}
		s.SubjectImages = append(s.SubjectImages, img.FileName)
		s.MaxSubjects = max(s.MaxSubjects, len(boxes))
		if hasOverlap(boxes, minIoU) {
			s.OverlapImages++
		}
	}
	return s
}

func hasOverlap(boxes []BoundingBox, minIoU float64) bool {
	if len(boxes) < 2 {
		return false
	}
	// Spatial index to avoid O(N^2) comparisons on crowded frames
	fb := flatbush.NewFlatbush[float64]()
	fb.Reserve(len(boxes))
	for _, b := range boxes {
		fb.Add(b.X, b.Y, b.X2(), b.Y2())
	}
	fb.Finish()

	for i, b := range boxes {
		for _, j := range fb.Search(b.X, b.Y, b.X2(), b.Y2()) {
			if j <= i {
				continue
			}
			if b.IOU(boxes[j]) >= minIoU {
				return true
			}
		}
	}
	return false
}
