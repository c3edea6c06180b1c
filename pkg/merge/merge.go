// Package merge concatenates per-clip datasets into one dataset with globally unique ids.
package merge

import (
	"reflect"

	"github.com/cyclopcam/pedset/pkg/coco"
)

// Input is one dataset to merge, and the name it is known by
type Input struct {
	Name    string
	Dataset *coco.Dataset
}

// Lookup finds a per-clip dataset by name
type Lookup interface {
	Load(name string) (*coco.Dataset, error)
}

// MergeNamed loads each named dataset, and merges them in the given order.
func MergeNamed(lookup Lookup, names []string) (*coco.Dataset, error) {
	inputs := make([]Input, 0, len(names))
	for _, name := range names {
		d, err := lookup.Load(name)
		if err != nil {
			return nil, coco.InClip(name, err)
		}
		inputs = append(inputs, Input{Name: name, Dataset: d})
	}
	return Merge(inputs)
}

// Merge concatenates the inputs, in order, into a new dataset.
//
// Image and annotation ids of each input are shifted by the number of images and
// annotations that precede it. This produces unique, dense ids only if every input is
// itself dense, so each input is validated first. The inputs are not modified.
//
// The header (info, licenses, categories) is taken from the first input. All inputs must
// have the same categories, and no image file name may appear in more than one input,
// because the media of all inputs are relocated into one collection, keyed by file name.
func Merge(inputs []Input) (*coco.Dataset, error) {
	if len(inputs) == 0 {
		return nil, coco.Errorf(coco.ErrConfiguration, "no datasets to merge")
	}
	for _, in := range inputs {
		if in.Dataset == nil {
			return nil, coco.InClip(in.Name, coco.Errorf(coco.ErrConfiguration, "no dataset"))
		}
	}

	first := inputs[0].Dataset
	merged := &coco.Dataset{
		Info:        first.Info,
		Licenses:    append([]coco.License{}, first.Licenses...),
		Categories:  append([]coco.Category{}, first.Categories...),
		Images:      []coco.Image{},
		Annotations: []coco.Annotation{},
	}

	fileOwner := map[string]string{}
	imageOffset := 0
	annotationOffset := 0

	for _, in := range inputs {
		d := in.Dataset
		if err := coco.CheckDensity(d); err != nil {
			return nil, coco.InClip(in.Name, err)
		}
		if err := coco.CheckReferences(d); err != nil {
			return nil, coco.InClip(in.Name, err)
		}
		if !sameCategories(first.Categories, d.Categories) {
			return nil, coco.InClip(in.Name, coco.Errorf(coco.ErrSchemaInvariant, "categories %v differ from %v of %v", d.Categories, first.Categories, inputs[0].Name))
		}

		for _, img := range d.Images {
			if owner, ok := fileOwner[img.FileName]; ok {
				return nil, coco.InClip(in.Name, coco.Errorf(coco.ErrSchemaInvariant, "image file %v is also in %v", img.FileName, owner))
			}
			fileOwner[img.FileName] = in.Name

			img.ID += imageOffset
			merged.Images = append(merged.Images, img)
		}

		for _, ann := range d.Annotations {
			ann.ID += annotationOffset
			ann.ImageID += imageOffset
			merged.Annotations = append(merged.Annotations, ann)
		}

		imageOffset += len(d.Images)
		annotationOffset += len(d.Annotations)
	}

	if err := coco.Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func sameCategories(a, b []coco.Category) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
