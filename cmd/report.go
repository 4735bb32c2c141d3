package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/meter"
	"github.com/jsphweid/meterdetect/midi"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/util"
)

var reportUseAnnotations bool
var reportBeam int

func init() {
	reportCmd.Flags().BoolVar(&reportUseAnnotations, "annotations", false, "override notated meters with DynamoDB annotations")
	reportCmd.Flags().IntVar(&reportBeam, "beam", 0, "cap on live hypotheses per step, 0 for unbounded")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <midi-dir> [maxNum]",
	Short: "Leave-one-out accuracy report over a directory",
	Long:  `Leave-one-out accuracy report over a directory`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			panic("Need the midi directory...")
		}
		var maxNum int
		if len(args) == 2 {
			arg1, err := strconv.Atoi(args[1])
			if err != nil {
				panic(err)
			}
			maxNum = arg1
		}
		report(args[0], maxNum)
	},
}

type songEntry struct {
	path      string
	song      *midi.Song
	gold      *meter.FromFileState
	anacrusis int
	trees     []*lpcfg.Tree
}

// goldState is the reference meter state a song is scored against: the
// annotated signature when one exists, otherwise the notated one.
func goldState(song *midi.Song, base string, annotations map[string]model.MeterAnnotation) *meter.FromFileState {
	sig := song.Sigs[0]
	if a, ok := annotations[base]; ok {
		sig = model.TimeSignatureChange{Numerator: a.Numerator, Denominator: a.Denominator}
	}
	return meter.NewFromFileState(sig)
}

func report(dir string, maxNum int) {
	paths := util.GatherAllMidiPaths(dir, maxNum)

	annotations := make(map[string]model.MeterAnnotation)
	if reportUseAnnotations {
		annotations = fetchAnnotations(paths)
	}

	// Train on everything once; each song's trees are extracted before its
	// own evaluation and re-added after.
	grammar := lpcfg.NewGrammar()
	var entries []songEntry
	for _, path := range paths {
		song, err := midi.ReadFile(path)
		if err != nil {
			fmt.Printf("Skipping %v: %v\n", path, err)
			continue
		}

		measure, subBeatLength, anacrusis, err := songMeter(song, filepath.Base(path), annotations)
		if err != nil {
			fmt.Printf("Skipping %v: %v\n", path, err)
			continue
		}
		trees := songTrees(song, measure, subBeatLength, anacrusis)

		for _, tree := range trees {
			grammar.AddTree(tree)
		}
		gold := goldState(song, filepath.Base(path), annotations)
		entries = append(entries, songEntry{path: path, song: song, gold: gold, anacrusis: anacrusis, trees: trees})
	}

	var measureCorrect, anacrusisCorrect, evaluated, empty float64
	for _, entry := range entries {
		for _, tree := range entry.trees {
			if err := grammar.ExtractTree(tree); err != nil {
				panic("Grammar corrupted during leave-one-out: " + err.Error())
			}
		}

		results := runDetection(grammar, entry.song, model.Config{Beam: reportBeam})

		evaluated++
		if len(results) == 0 {
			empty++
			fmt.Printf("%v: no hypothesis survived\n", entry.path)
		} else {
			top := results[0]
			guessed := model.Measure{BeatsPerMeasure: top.BeatsPerMeasure, SubBeatsPerBeat: top.SubBeatsPerBeat}
			goldMeasure, _ := entry.gold.Measure()
			if guessed == goldMeasure {
				measureCorrect++
				if top.AnacrusisLength == entry.anacrusis {
					anacrusisCorrect++
				}
			}
			fmt.Printf("%v: guessed %v anacrusis=%v (gold %v anacrusis=%v)\n",
				entry.path, guessed, top.AnacrusisLength, goldMeasure, entry.anacrusis)
		}

		for _, tree := range entry.trees {
			grammar.AddTree(tree)
		}
	}

	fmt.Printf("evaluated: %v\n", evaluated)
	fmt.Printf("no-result rate: %v\n", util.SafeRatio(empty, evaluated))
	fmt.Printf("measure accuracy: %v\n", util.SafeRatio(measureCorrect, evaluated))
	fmt.Printf("measure+anacrusis accuracy: %v\n", util.SafeRatio(anacrusisCorrect, evaluated))
}
