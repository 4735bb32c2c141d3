package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jsphweid/meterdetect/constants"
	"github.com/jsphweid/meterdetect/db"
	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/midi"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/util"
)

var trainUseAnnotations bool

func init() {
	trainCmd.Flags().BoolVar(&trainUseAnnotations, "annotations", false, "override notated meters with DynamoDB annotations")
	rootCmd.AddCommand(trainCmd)
}

var trainCmd = &cobra.Command{
	Use:   "train <midi-dir> [maxNum]",
	Short: "Trains a grammar from a directory of MIDI files",
	Long:  `Trains a grammar from a directory of MIDI files`,
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
		train(args[0], maxNum)
	},
}

func train(dir string, maxNum int) {
	paths := util.GatherAllMidiPaths(dir, maxNum)
	fmt.Printf("Training on %v files\n", len(paths))

	annotations := make(map[string]model.MeterAnnotation)
	if trainUseAnnotations {
		annotations = fetchAnnotations(paths)
	}

	grammar := lpcfg.NewGrammar()
	trained := 0
	for _, path := range paths {
		trees, err := gatherSongTrees(path, annotations)
		if err != nil {
			fmt.Printf("Skipping %v: %v\n", path, err)
			continue
		}
		for _, tree := range trees {
			grammar.AddTree(tree)
		}
		trained++
	}

	if err := lpcfg.Save(grammar, constants.GetGrammarPath()); err != nil {
		panic("Could not save grammar: " + err.Error())
	}
	fmt.Printf("Trained on %v files, %v trees, %v measure types\n", trained, len(grammar.Trees), len(grammar.Measures()))
	fmt.Printf("Wrote grammar to %v\n", constants.GetGrammarPath())
}

func fetchAnnotations(paths []string) map[string]model.MeterAnnotation {
	annotations := make(map[string]model.MeterAnnotation)
	for start := 0; start < len(paths); start += 10 {
		end := util.Min(start+10, len(paths))
		batch := make([]string, 0, 10)
		for _, p := range paths[start:end] {
			batch = append(batch, filepath.Base(p))
		}
		for k, v := range db.GetMeterAnnotations(batch) {
			annotations[k] = v
		}
	}
	return annotations
}

// songMeter resolves the meter to train a song under: the annotation when
// one exists, otherwise the notated signature. Returns the measure type, the
// sub beat length in tatums, and the anacrusis in sub beats.
func songMeter(song *midi.Song, base string, annotations map[string]model.MeterAnnotation) (model.Measure, int, int, error) {
	measure := song.Sigs[0].MetricalMeasure()
	anacrusisSubBeats := 0
	if a, ok := annotations[base]; ok {
		measure = a.MetricalMeasure()
		anacrusisSubBeats = a.AnacrusisSubBeats
	}

	tactiPerBar := song.Sigs[0].Notes32PerBar()
	subBeatsPerMeasure := measure.BeatsPerMeasure * measure.SubBeatsPerBeat
	if subBeatsPerMeasure == 0 || tactiPerBar%subBeatsPerMeasure != 0 {
		return measure, 0, 0, fmt.Errorf("meter %v does not divide %v tacti per bar", measure, tactiPerBar)
	}
	subBeatLength := tactiPerBar / subBeatsPerMeasure
	if subBeatLength == 0 {
		return measure, 0, 0, fmt.Errorf("meter %v is finer than the tatum grid", measure)
	}

	return measure, subBeatLength, anacrusisSubBeats, nil
}

// gatherSongTrees parses every measure of every gold voice of the file into
// grammar trees, under the file's notated (or annotated) meter.
func gatherSongTrees(path string, annotations map[string]model.MeterAnnotation) ([]*lpcfg.Tree, error) {
	song, err := midi.ReadFile(path)
	if err != nil {
		return nil, err
	}

	measure, subBeatLength, anacrusisSubBeats, err := songMeter(song, filepath.Base(path), annotations)
	if err != nil {
		return nil, err
	}

	return songTrees(song, measure, subBeatLength, anacrusisSubBeats), nil
}

func songTrees(song *midi.Song, measure model.Measure, subBeatLength, anacrusisSubBeats int) []*lpcfg.Tree {
	measureLength := subBeatLength * measure.BeatsPerMeasure * measure.SubBeatsPerBeat

	var trees []*lpcfg.Tree
	for _, voiceNotes := range song.GoldVoices {
		hasBegun := false
		measureNum := 0
		if anacrusisSubBeats != 0 {
			measureNum = -1
		}
		for ; measureLength*measureNum+anacrusisSubBeats*subBeatLength < len(song.Beats); measureNum++ {
			tree := lpcfg.MakeTree(voiceNotes, song.Beats, measure, subBeatLength, anacrusisSubBeats, measureNum)
			if tree.IsEmpty() {
				continue
			}
			if !hasBegun {
				hasBegun = true
				if tree.StartsWithRest() {
					continue
				}
			}
			trees = append(trees, tree)
		}
	}
	return trees
}
