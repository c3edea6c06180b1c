package pipeline

import (
	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/split"
)

// Observer is told about the progress of a pipeline run
type Observer interface {
	ClipConverted(clip string, kept, skipped int, d *coco.Dataset)
	SplitComputed(r split.Result)
	SplitMerged(name string, d *coco.Dataset)
	MediaRelocated(name, clip string, files int)
}

// LogObserver writes progress to a log
type LogObserver struct {
	Log logs.Log
}

func (o *LogObserver) ClipConverted(clip string, kept, skipped int, d *coco.Dataset) {
	o.Log.Infof("Converted clip %v: kept %v frames, skipped %v, %v annotations", clip, kept, skipped, len(d.Annotations))
}

func (o *LogObserver) SplitComputed(r split.Result) {
	o.Log.Infof("Split: %v test clips %v, %v validation clips %v", len(r.Test), r.Test, len(r.Validation), r.Validation)
}

func (o *LogObserver) SplitMerged(name string, d *coco.Dataset) {
	o.Log.Infof("Merged %v: %v images, %v annotations", name, len(d.Images), len(d.Annotations))
}

func (o *LogObserver) MediaRelocated(name, clip string, files int) {
	o.Log.Infof("Copied %v images of %v into %v", files, clip, name)
}
