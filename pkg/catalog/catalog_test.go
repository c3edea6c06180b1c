package catalog

import (
	"errors"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/merge"
	"github.com/cyclopcam/pedset/pkg/storage"
	"github.com/stretchr/testify/require"
)

var _ merge.Lookup = (*Catalog)(nil)

func testCatalog(t *testing.T) *Catalog {
	s, err := storage.NewStorageFS(logs.NewTestingLog(t), t.TempDir())
	require.NoError(t, err)
	return New(s, true)
}

func TestSaveLoad(t *testing.T) {
	c := testCatalog(t)
	d := coco.NewDataset(coco.CaviarInfo, coco.DefaultLicense, coco.PersonCategory)
	d.Images = append(d.Images, coco.Image{ID: 1, FileName: "wk1gt1.jpg", Width: 384, Height: 288, License: 1})
	box := coco.BoundingBox{X: 10, Y: 10, Width: 20, Height: 30}
	d.Annotations = append(d.Annotations, coco.Annotation{ID: 1, ImageID: 1, BBox: box, Area: box.Area()})

	has, err := c.Has("wk1gt")
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, c.Save("wk1gt", d))
	has, err = c.Has("wk1gt")
	require.NoError(t, err)
	require.True(t, has)

	loaded, err := c.Load("wk1gt")
	require.NoError(t, err)
	require.Equal(t, d, loaded)

	_, err = c.Load("wk2gt")
	require.True(t, errors.Is(err, coco.ErrSourceRead))
}

func TestBadClipNames(t *testing.T) {
	c := testCatalog(t)
	d := coco.NewDataset(coco.CaviarInfo, coco.DefaultLicense, coco.PersonCategory)
	for _, name := range []string{"", "a/b", `a\b`, ".."} {
		require.True(t, errors.Is(c.Save(name, d), coco.ErrConfiguration), name)
		_, err := c.Load(name)
		require.True(t, errors.Is(err, coco.ErrConfiguration), name)
		_, err = c.Has(name)
		require.True(t, errors.Is(err, coco.ErrConfiguration), name)
	}
}
