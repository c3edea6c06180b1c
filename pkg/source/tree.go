package source

import (
	"io"
	"strconv"

	"github.com/beevik/etree"
	"github.com/cyclopcam/pedset/pkg/coco"
)

// TreeSource reads a CAVIAR-style XML ground truth document:
//
//	<dataset>
//	  <frame number="0">
//	    <objectlist>
//	      <object id="0"><box xc="120" yc="80" w="20" h="45"/></object>
//	    </objectlist>
//	  </frame>
//	</dataset>
//
// An objectlist may hold one object, many objects, or none, and may be missing entirely.
type TreeSource struct {
	doc  *etree.Document
	name string
}

// OpenTree parses the XML file at filename
func OpenTree(filename string) (*TreeSource, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(filename); err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "failed to read %v: %v", filename, err)
	}
	return &TreeSource{doc: doc, name: filename}, nil
}

// ReadTree parses an XML document from r. name is used in error messages.
func ReadTree(r io.Reader, name string) (*TreeSource, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "failed to parse %v: %v", name, err)
	}
	return &TreeSource{doc: doc, name: name}, nil
}

func (s *TreeSource) ListFrames() ([]Frame, error) {
	root := s.doc.SelectElement("dataset")
	if root == nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "%v has no <dataset> root", s.name)
	}

	frames := []Frame{}
	for _, node := range root.SelectElements("frame") {
		frame, err := s.readFrame(node)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}

	if err := sortFrames(frames); err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *TreeSource) readFrame(node *etree.Element) (Frame, error) {
	attr := node.SelectAttr("number")
	if attr == nil {
		return Frame{}, coco.Errorf(coco.ErrSourceRead, "%v: <frame> without a number", s.name)
	}
	number, err := strconv.Atoi(attr.Value)
	if err != nil {
		return Frame{}, coco.Errorf(coco.ErrSourceRead, "%v: invalid frame number '%v'", s.name, attr.Value)
	}

	frame := Frame{
		Number: number,
		Boxes:  []coco.BoundingBox{},
	}
	for _, list := range node.SelectElements("objectlist") {
		for _, obj := range list.SelectElements("object") {
			box, err := s.readBox(number, obj)
			if err != nil {
				return Frame{}, err
			}
			frame.Boxes = append(frame.Boxes, box)
		}
	}
	return frame, nil
}

func (s *TreeSource) readBox(frame int, obj *etree.Element) (coco.BoundingBox, error) {
	box := obj.SelectElement("box")
	if box == nil {
		return coco.BoundingBox{}, coco.Errorf(coco.ErrSourceRead, "%v: frame %v has an object without a <box>", s.name, frame)
	}
	var v [4]float64
	for i, key := range [4]string{"xc", "yc", "w", "h"} {
		raw := box.SelectAttrValue(key, "")
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return coco.BoundingBox{}, coco.Errorf(coco.ErrSourceRead, "%v: frame %v has a box with invalid %v '%v'", s.name, frame, key, raw)
		}
		v[i] = f
	}
	return coco.BoxFromCenter(v[0], v[1], v[2], v[3]), nil
}
