package coco

// CheckDensity verifies that image ids are exactly {1..len(Images)} and annotation ids are
// exactly {1..len(Annotations)}. Merge offsets are only correct for datasets that pass this.
func CheckDensity(d *Dataset) error {
	seen := make([]bool, len(d.Images)+1)
	for i, img := range d.Images {
		if img.ID < 1 || img.ID > len(d.Images) {
			return Errorf(ErrSchemaInvariant, "image %v (%v) has id %v, outside of [1, %v]", i, img.FileName, img.ID, len(d.Images))
		}
		if seen[img.ID] {
			return Errorf(ErrSchemaInvariant, "duplicate image id %v (%v)", img.ID, img.FileName)
		}
		seen[img.ID] = true
	}

	seen = make([]bool, len(d.Annotations)+1)
	for i, ann := range d.Annotations {
		if ann.ID < 1 || ann.ID > len(d.Annotations) {
			return Errorf(ErrSchemaInvariant, "annotation %v has id %v, outside of [1, %v]", i, ann.ID, len(d.Annotations))
		}
		if seen[ann.ID] {
			return Errorf(ErrSchemaInvariant, "duplicate annotation id %v", ann.ID)
		}
		seen[ann.ID] = true
	}
	return nil
}

// CheckReferences verifies that every annotation refers to an image in the same dataset.
func CheckReferences(d *Dataset) error {
	ids := make(map[int]bool, len(d.Images))
	for _, img := range d.Images {
		ids[img.ID] = true
	}
	for _, ann := range d.Annotations {
		if !ids[ann.ImageID] {
			return Errorf(ErrReferentialIntegrity, "annotation %v refers to image %v, which does not exist", ann.ID, ann.ImageID)
		}
	}
	return nil
}

// Validate runs CheckDensity and CheckReferences
func Validate(d *Dataset) error {
	if err := CheckDensity(d); err != nil {
		return err
	}
	return CheckReferences(d)
}
