package source

import (
	stdlog "log"
	"os"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/coco"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// BoxRow is one row of the bounding_boxes table (UrbanTracker ground truth layout).
// Boxes are stored as top-left and bottom-right corners.
type BoxRow struct {
	ObjectID     int64
	FrameNumber  int
	XTopLeft     float64
	YTopLeft     float64
	XBottomRight float64
	YBottomRight float64
}

func (BoxRow) TableName() string {
	return "bounding_boxes"
}

// TableSource reads boxes from the bounding_boxes table of a SQLite database.
// If FrameDir is set, the frames are the numbered image files in that directory,
// so that frames without any boxes are still listed. Otherwise, the frames are the
// distinct frame numbers in the table.
type TableSource struct {
	DB       *gorm.DB
	FrameDir string
	FrameExt string   // Only files with this extension are listed from FrameDir (default ".jpg")
	Log      logs.Log // Optional. Warns about boxes whose frame has no image in FrameDir.

	// After ListFrames, the frame numbers that have boxes in the table, but no image in FrameDir.
	// The boxes of these frames are not returned.
	Unlisted []int
}

// OpenTable opens an annotation database read-only.
func OpenTable(filename string) (*TableSource, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "failed to open %v: %v", filename, err)
	}
	db, err := gormOpenReadOnly(filename)
	if err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "failed to open %v: %v", filename, err)
	}
	return &TableSource{DB: db}, nil
}

func (s *TableSource) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// BoxesForFrame returns the canonical boxes of one frame, in table order
func (s *TableSource) BoxesForFrame(frameNumber int) ([]coco.BoundingBox, error) {
	rows := []BoxRow{}
	if err := s.DB.Where("frame_number = ?", frameNumber).Order("rowid").Find(&rows).Error; err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "failed to read boxes of frame %v: %v", frameNumber, err)
	}
	boxes := make([]coco.BoundingBox, 0, len(rows))
	for _, r := range rows {
		boxes = append(boxes, r.Box())
	}
	return boxes, nil
}

// Box converts the row into the canonical form
func (r BoxRow) Box() coco.BoundingBox {
	return coco.BoxFromCorners(r.XTopLeft, r.YTopLeft, r.XBottomRight, r.YBottomRight)
}

func (s *TableSource) ListFrames() ([]Frame, error) {
	// Read the whole table in one pass, rather than one query per frame
	rows := []BoxRow{}
	if err := s.DB.Order("frame_number, rowid").Find(&rows).Error; err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "failed to read bounding_boxes: %v", err)
	}

	boxes := map[int][]coco.BoundingBox{}
	tableFrames := []int{}
	for _, r := range rows {
		if _, ok := boxes[r.FrameNumber]; !ok {
			tableFrames = append(tableFrames, r.FrameNumber)
		}
		boxes[r.FrameNumber] = append(boxes[r.FrameNumber], r.Box())
	}

	var frames []Frame
	if s.FrameDir != "" {
		listed, err := ListFrameDir(s.FrameDir, s.FrameExt)
		if err != nil {
			return nil, err
		}
		frames = listed
	} else {
		frames = make([]Frame, 0, len(tableFrames))
		for _, n := range tableFrames {
			frames = append(frames, Frame{Number: n})
		}
	}

	s.Unlisted = nil
	if s.FrameDir != "" {
		listed := map[int]bool{}
		for _, f := range frames {
			listed[f.Number] = true
		}
		for _, n := range tableFrames {
			if !listed[n] {
				s.Unlisted = append(s.Unlisted, n)
			}
		}
		if len(s.Unlisted) != 0 && s.Log != nil {
			s.Log.Warnf("%v frames of the table have boxes but no image in %v (first is frame %v)", len(s.Unlisted), s.FrameDir, s.Unlisted[0])
		}
	}

	for i := range frames {
		frames[i].Boxes = boxes[frames[i].Number]
		if frames[i].Boxes == nil {
			frames[i].Boxes = []coco.BoundingBox{}
		}
	}

	if err := sortFrames(frames); err != nil {
		return nil, err
	}
	return frames, nil
}

func gormOpenReadOnly(filename string) (*gorm.DB, error) {
	newLogger := logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	config := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		Logger: newLogger,
	}
	return gorm.Open(sqlite.Open("file:"+filename+"?mode=ro"), config)
}
