// Package coco is the object detection annotation model that every source is normalized into.
// The JSON form is the COCO detection document (info, licenses, categories, images, annotations).
package coco

type Info struct {
	Description string `json:"description"`
	URL         string `json:"url"`
	Version     string `json:"version"`
	Year        int    `json:"year"`
	Contributor string `json:"contributor"`
	DateCreated string `json:"date_created"`
}

type License struct {
	URL  string `json:"url"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Image is one kept frame of a clip
type Image struct {
	ID       int    `json:"id"` // Dense, starting at 1, in the order that frames were kept
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	License  int    `json:"license"`
}

// Annotation is one bounding box on an Image
type Annotation struct {
	ID         int         `json:"id"` // Dense, starting at 1, shared across all images of the dataset
	ImageID    int         `json:"image_id"`
	CategoryID int         `json:"category_id"`
	BBox       BoundingBox `json:"bbox"`
	Area       float64     `json:"area"`
	IsCrowd    int         `json:"iscrowd"` // 0 or 1
}

// Dataset is the annotation document of one clip, or of several merged clips.
type Dataset struct {
	Info        Info         `json:"info"`
	Licenses    []License    `json:"licenses"`
	Categories  []Category   `json:"categories"`
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
}

// NewDataset returns an empty dataset with the given header.
func NewDataset(info Info, license License, category Category) *Dataset {
	return &Dataset{
		Info:        info,
		Licenses:    []License{license},
		Categories:  []Category{category},
		Images:      []Image{},
		Annotations: []Annotation{},
	}
}

// Clone returns a deep copy of d
func (d *Dataset) Clone() *Dataset {
	return &Dataset{
		Info:        d.Info,
		Licenses:    append([]License{}, d.Licenses...),
		Categories:  append([]Category{}, d.Categories...),
		Images:      append([]Image{}, d.Images...),
		Annotations: append([]Annotation{}, d.Annotations...),
	}
}

// FileNames returns the file name of every image, in image order.
func (d *Dataset) FileNames() []string {
	names := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		names = append(names, img.FileName)
	}
	return names
}

// CAVIAR defaults, as published on the CAVIAR project page.
var (
	CaviarInfo = Info{
		Description: "CAVIAR Dataset",
		URL:         "http://homepages.inf.ed.ac.uk/rbf/CAVIAR/",
		Version:     "1.0.0",
		Year:        2004,
		Contributor: "EC Funded CAVIAR project/IST 2001 37540",
	}

	AtriumInfo = Info{
		Description: "Atrium Dataset",
		URL:         "http://www.jpjodoin.com/urbantracker/",
		Version:     "1.0.0",
	}

	DefaultLicense = License{
		URL:  "http://creativecommons.org/licenses/by-nc-sa/2.0/",
		ID:   1,
		Name: "Attribution-NonCommercial-ShareAlike License",
	}

	PersonCategory = Category{
		ID:   0,
		Name: "person",
	}
)
