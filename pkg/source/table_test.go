package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/stretchr/testify/require"
)

// createTable writes rows into a new annotation database, and returns its filename
func createTable(t *testing.T, rows []BoxRow) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "atrium_gt.sqlite")
	db, err := CreateTable(logs.NewTestingLog(t), filename)
	require.NoError(t, err)
	require.NoError(t, db.Insert(rows))
	require.NoError(t, db.Close())
	return filename
}

func openTable(t *testing.T, filename string) *TableSource {
	t.Helper()
	src, err := OpenTable(filename)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	return src
}

func TestTableSource(t *testing.T) {
	filename := createTable(t, []BoxRow{
		{ObjectID: 1, FrameNumber: 7, XTopLeft: 10, YTopLeft: 10, XBottomRight: 30, YBottomRight: 40},
		{ObjectID: 2, FrameNumber: 3, XTopLeft: 0, YTopLeft: 5, XBottomRight: 4, YBottomRight: 6},
		{ObjectID: 1, FrameNumber: 3, XTopLeft: 100, YTopLeft: 200, XBottomRight: 150, YBottomRight: 300},
	})
	src := openTable(t, filename)

	frames, err := src.ListFrames()
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.Equal(t, 3, frames[0].Number)
	require.Equal(t, 7, frames[1].Number)

	// Row order within a frame is preserved
	require.Equal(t, []coco.BoundingBox{
		{X: 0, Y: 5, Width: 4, Height: 1},
		{X: 100, Y: 200, Width: 50, Height: 100},
	}, frames[0].Boxes)
	require.Equal(t, []coco.BoundingBox{{X: 10, Y: 10, Width: 20, Height: 30}}, frames[1].Boxes)

	boxes, err := src.BoxesForFrame(7)
	require.NoError(t, err)
	require.Equal(t, frames[1].Boxes, boxes)

	boxes, err = src.BoxesForFrame(99)
	require.NoError(t, err)
	require.NotNil(t, boxes)
	require.Empty(t, boxes)
}

func TestTableSourceWithFrameDir(t *testing.T) {
	filename := createTable(t, []BoxRow{
		{ObjectID: 1, FrameNumber: 2, XTopLeft: 10, YTopLeft: 10, XBottomRight: 30, YBottomRight: 40},
	})
	frameDir := t.TempDir()
	// Created out of order, and with some noise
	for _, name := range []string{"00010.jpg", "00002.jpg", "00001.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(frameDir, name), []byte{}, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(frameDir, "thumbs"), 0755))

	src := openTable(t, filename)
	src.FrameDir = frameDir
	frames, err := src.ListFrames()
	require.NoError(t, err)
	require.Len(t, frames, 3)

	require.Equal(t, Frame{Number: 1, FileName: "00001.jpg", Boxes: []coco.BoundingBox{}}, frames[0])
	require.Equal(t, Frame{Number: 2, FileName: "00002.jpg", Boxes: []coco.BoundingBox{{X: 10, Y: 10, Width: 20, Height: 30}}}, frames[1])
	require.Equal(t, Frame{Number: 10, FileName: "00010.jpg", Boxes: []coco.BoundingBox{}}, frames[2])
	require.Empty(t, src.Unlisted)
}

func TestTableSourceUnlistedFrames(t *testing.T) {
	filename := createTable(t, []BoxRow{
		{ObjectID: 1, FrameNumber: 1, XTopLeft: 10, YTopLeft: 10, XBottomRight: 30, YBottomRight: 40},
		{ObjectID: 1, FrameNumber: 5, XTopLeft: 10, YTopLeft: 10, XBottomRight: 30, YBottomRight: 40},
		{ObjectID: 2, FrameNumber: 5, XTopLeft: 0, YTopLeft: 0, XBottomRight: 5, YBottomRight: 5},
		{ObjectID: 1, FrameNumber: 9, XTopLeft: 10, YTopLeft: 10, XBottomRight: 30, YBottomRight: 40},
	})
	frameDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(frameDir, "1.jpg"), []byte{}, 0644))

	src := openTable(t, filename)
	src.FrameDir = frameDir
	src.Log = logs.NewTestingLog(t)
	frames, err := src.ListFrames()
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Boxes, 1)
	require.Equal(t, []int{5, 9}, src.Unlisted)

	// Without a frame directory, every table frame is listed
	src.FrameDir = ""
	frames, err = src.ListFrames()
	require.NoError(t, err)
	require.Len(t, frames, 3)
	require.Empty(t, src.Unlisted)
}

func TestOpenTableMissing(t *testing.T) {
	_, err := OpenTable(filepath.Join(t.TempDir(), "missing.sqlite"))
	require.True(t, errors.Is(err, coco.ErrSourceRead))
}

func TestListFrameDirErrors(t *testing.T) {
	_, err := ListFrameDir(filepath.Join(t.TempDir(), "missing"), "")
	require.True(t, errors.Is(err, coco.ErrSourceRead))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame-a.jpg"), []byte{}, 0644))
	_, err = ListFrameDir(dir, ".jpg")
	require.True(t, errors.Is(err, coco.ErrSourceRead))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.jpg"), []byte{}, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001.jpg"), []byte{}, 0644))
	_, err = ListFrameDir(dir, ".jpg")
	require.True(t, errors.Is(err, coco.ErrSourceRead))
}
