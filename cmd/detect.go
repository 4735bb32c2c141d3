package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/constants"
	"github.com/jsphweid/meterdetect/joint"
	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/meter"
	"github.com/jsphweid/meterdetect/midi"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

var detectVerbose bool
var detectBeam int
var detectWriteJSON bool

func init() {
	detectCmd.Flags().BoolVarP(&detectVerbose, "verbose", "v", false, "print hypothesis sets after every step")
	detectCmd.Flags().IntVar(&detectBeam, "beam", 0, "cap on live hypotheses per step, 0 for unbounded")
	detectCmd.Flags().BoolVar(&detectWriteJSON, "json", false, "also write ranked hypotheses as JSON into the output dir")
	rootCmd.AddCommand(detectCmd)
}

var detectCmd = &cobra.Command{
	Use:   "detect <midi-file>",
	Short: "Detects the metrical structure of a MIDI file",
	Long:  `Detects the metrical structure of a MIDI file`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		detect(args[0])
	},
}

// runDetection drives the joint search over a song and returns the accepted
// hypotheses, best first.
func runDetection(grammar *lpcfg.Grammar, song *midi.Song, cfg model.Config) []model.HypothesisResult {
	voiceState, err := voice.NewFromFileState(song.GoldVoices)
	if err != nil {
		panic("Bad voices in file: " + err.Error())
	}
	beatState := beat.NewFromFileState(song.Beats, song.Sigs)
	meterState := meter.NewGrammarState(grammar, cfg)

	m := joint.NewModel(joint.NewState(voiceState, beatState, meterState), cfg)
	for _, batch := range song.Batches {
		m.HandleIncoming(batch)
	}
	m.Close()

	return collectHypotheses(m)
}

func collectHypotheses(m *joint.Model) []model.HypothesisResult {
	res := make([]model.HypothesisResult, 0)
	for _, s := range m.Hypotheses() {
		ms := s.MeterState()
		measure, ok := ms.Measure()
		if !ok {
			continue
		}
		res = append(res, model.HypothesisResult{
			BeatsPerMeasure: measure.BeatsPerMeasure,
			SubBeatsPerBeat: measure.SubBeatsPerBeat,
			SubBeatLength:   ms.SubBeatLength(),
			AnacrusisLength: ms.AnacrusisLength(),
			LogProbability:  ms.Score(),
		})
	}
	return res
}

func detect(path string) {
	grammar, err := lpcfg.Load(constants.GetGrammarPath())
	if err != nil {
		panic("Could not load grammar: " + err.Error())
	}

	song, err := midi.ReadFile(path)
	if err != nil {
		panic("Could not read midi file: " + err.Error())
	}

	cfg := model.Config{Verbose: detectVerbose, Beam: detectBeam}
	results := runDetection(grammar, song, cfg)

	if len(results) == 0 {
		fmt.Println("No hypothesis survived")
		return
	}

	for i, r := range results {
		fmt.Printf("%v: %v beats x %v sub beats, sub beat length %v, anacrusis %v, logprob %v\n",
			i+1, r.BeatsPerMeasure, r.SubBeatsPerBeat, r.SubBeatLength, r.AnacrusisLength, r.LogProbability)
	}

	if detectWriteJSON {
		writeResultsJSON(results)
	}
}

func writeResultsJSON(results []model.HypothesisResult) {
	os.MkdirAll(constants.GetOutputDir(), 0777)
	outPath := filepath.Join(constants.GetOutputDir(), uuid.New().String()+".json")
	f, err := os.Create(outPath)
	if err != nil {
		panic("Could not create output file: " + err.Error())
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(model.DetectResponse{Hypotheses: results}); err != nil {
		panic("Could not write output file: " + err.Error())
	}
	fmt.Printf("Wrote %v\n", outPath)
}
