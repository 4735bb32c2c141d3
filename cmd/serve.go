package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/constants"
	"github.com/jsphweid/meterdetect/joint"
	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/meter"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/util"
	"github.com/jsphweid/meterdetect/voice"
)

var serveGrammar *lpcfg.Grammar

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves detection over HTTP",
	Long:  `Serves detection over HTTP`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func LoadServeGrammar() {
	grammar, err := lpcfg.Load(constants.GetGrammarPath())
	if err != nil {
		panic("Could not load grammar: " + err.Error())
	}
	serveGrammar = grammar
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

// HandleDetect scores a posted note list against the loaded grammar. The
// request supplies notes (voice ids resolved) and the tatum grid they were
// aligned to; the response is the ranked hypothesis list.
func HandleDetect(w http.ResponseWriter, r *http.Request) {
	var input model.DetectRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, 400, "Could not unmarshal request body: "+err.Error())
		return
	}

	if len(input.Notes) == 0 {
		writeError(w, 400, "No notes given")
		return
	}
	if len(input.Beats) == 0 {
		writeError(w, 400, "No beats given")
		return
	}

	results, err := detectFromRequest(serveGrammar, input)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}

	json.NewEncoder(w).Encode(model.DetectResponse{Hypotheses: results})
}

func detectFromRequest(grammar *lpcfg.Grammar, input model.DetectRequestBody) ([]model.HypothesisResult, error) {
	byVoice := make(map[int][]model.Note)
	for _, n := range input.Notes {
		byVoice[n.Voice] = append(byVoice[n.Voice], n)
	}
	goldVoices := make([][]model.Note, 0, len(byVoice))
	for _, id := range util.GetKeysSorted(byVoice) {
		notes := byVoice[id]
		sort.Slice(notes, func(i, j int) bool { return notes[i].Compare(notes[j]) < 0 })
		goldVoices = append(goldVoices, notes)
	}

	voiceState, err := voice.NewFromFileState(goldVoices)
	if err != nil {
		return nil, err
	}
	beatState := beat.NewGridState(input.Beats, tactiPerMeasure(input.Beats))
	meterState := meter.NewGrammarState(grammar, model.Config{})

	m := joint.NewModel(joint.NewState(voiceState, beatState, meterState), model.Config{})
	for _, batch := range model.BatchNotes(input.Notes) {
		m.HandleIncoming(batch)
	}
	m.Close()

	return collectHypotheses(m), nil
}

// tactiPerMeasure recovers the tatums-per-measure of a posted grid from its
// beat labels. A grid whose beats all sit in measure 0 carries absolute beat
// numbers and has no measure period.
func tactiPerMeasure(beats []model.Beat) int {
	tacti := 0
	labeled := false
	for _, b := range beats {
		if b.Measure != 0 {
			labeled = true
		}
		tacti = util.Max(tacti, b.Beat+1)
	}
	if !labeled {
		return 0
	}
	return tacti
}

func serve() {
	LoadServeGrammar()

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/detect", HandleDetect).Methods("POST")

	handler := cors.Default().Handler(router)
	fmt.Println("Listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}
