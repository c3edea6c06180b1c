package convert

import (
	"strconv"

	"github.com/cyclopcam/pedset/pkg/source"
)

// Namer chooses the image file name of a frame
type Namer interface {
	FileName(f source.Frame) string
}

// PrefixNamer names frames Prefix + (Number + Offset) + Ext, unless the frame already
// knows its file name.
// The CAVIAR images of clip "wk1gt" are named "wk1gt1.jpg", "wk1gt2.jpg"... for frames 0, 1...
type PrefixNamer struct {
	Prefix string
	Offset int
	Ext    string
}

func (n PrefixNamer) FileName(f source.Frame) string {
	if f.FileName != "" {
		return f.FileName
	}
	return n.Prefix + strconv.Itoa(f.Number+n.Offset) + n.Ext
}

// CaviarNamer returns the naming scheme of the extracted CAVIAR archives
func CaviarNamer(clip string) PrefixNamer {
	return PrefixNamer{
		Prefix: clip,
		Offset: 1,
		Ext:    ".jpg",
	}
}
