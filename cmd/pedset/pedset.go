package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/cyclopcam/pedset/pkg/config"
	"github.com/cyclopcam/pedset/pkg/merge"
	"github.com/cyclopcam/pedset/pkg/pipeline"
)

// fileLookup loads datasets by their filename
type fileLookup struct{}

func (fileLookup) Load(filename string) (*coco.Dataset, error) {
	d, err := coco.ReadFile(filename)
	if err != nil {
		return nil, coco.Errorf(coco.ErrSourceRead, "%v", err)
	}
	return d, nil
}

func run(log logs.Log, configFile string, onlyClip string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	p, clips, closer, err := pipeline.FromConfig(log, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if onlyClip == "" {
		return p.Run(clips)
	}
	for _, c := range clips {
		if c.Name == onlyClip {
			_, err := p.ConvertClip(c)
			return err
		}
	}
	return coco.Errorf(coco.ErrConfiguration, "clip %v is not in %v", onlyClip, configFile)
}

func mergeFiles(log logs.Log, output string, inputs []string, indent bool) error {
	d, err := merge.MergeNamed(fileLookup{}, inputs)
	if err != nil {
		return err
	}
	if err := coco.WriteFile(output, d, indent); err != nil {
		return err
	}
	log.Infof("Wrote %v images and %v annotations to %v", len(d.Images), len(d.Annotations), output)
	return nil
}

func summarize(input string, minIoU float64) error {
	d, err := coco.ReadFile(input)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(coco.Summarize(d, minIoU))
}

func main() {
	parser := argparse.NewParser("pedset", "Convert pedestrian annotations into merged COCO datasets")

	runCmd := parser.NewCommand("run", "Convert every clip, then split and merge them")
	runConfig := runCmd.String("c", "config", &argparse.Options{Help: "Config file path", Default: "pedset.yaml"})

	convertCmd := parser.NewCommand("convert", "Convert one clip into the catalog")
	convertConfig := convertCmd.String("c", "config", &argparse.Options{Help: "Config file path", Default: "pedset.yaml"})
	convertClip := convertCmd.String("", "clip", &argparse.Options{Help: "Name of the clip", Required: true})

	mergeCmd := parser.NewCommand("merge", "Merge dataset files")
	mergeOutput := mergeCmd.String("o", "output", &argparse.Options{Help: "Output dataset file", Required: true})
	mergeInputs := mergeCmd.StringList("i", "input", &argparse.Options{Help: "Input dataset file (repeat for each input, in order)", Required: true})
	mergeIndent := mergeCmd.Flag("", "indent", &argparse.Options{Help: "Indent the output JSON", Default: false})

	summaryCmd := parser.NewCommand("summary", "Print the empty and occupied images of a dataset")
	summaryInput := summaryCmd.String("i", "input", &argparse.Options{Help: "Dataset file", Required: true})
	summaryIoU := summaryCmd.Float("", "iou", &argparse.Options{Help: "IoU at which two subjects count as overlapping", Default: coco.DefaultOverlapIoU})

	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	switch {
	case runCmd.Happened():
		err = run(logger, *runConfig, "")
	case convertCmd.Happened():
		err = run(logger, *convertConfig, *convertClip)
	case mergeCmd.Happened():
		err = mergeFiles(logger, *mergeOutput, *mergeInputs, *mergeIndent)
	case summaryCmd.Happened():
		err = summarize(*summaryInput, *summaryIoU)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
