package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/constants"
	"github.com/jsphweid/meterdetect/joint"
	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/meter"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

var listenTatumMs int64

func init() {
	listenCmd.Flags().Int64Var(&listenTatumMs, "tatum", 125, "tatum length in milliseconds for the live grid")
	rootCmd.AddCommand(listenCmd)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Detects meter from a live MIDI input",
	Long:  `Detects meter from a live MIDI input`,
	Run: func(cmd *cobra.Command, args []string) {
		listen()
	},
}

// liveNotes collects completed notes from a MIDI input. Onsets without a
// matching offset yet are parked in open until their note end arrives.
type liveNotes struct {
	mu    sync.Mutex
	open  map[uint16]model.Note
	notes []model.Note
}

func liveKey(ch, key uint8) uint16 {
	return uint16(ch)<<8 | uint16(key)
}

func (l *liveNotes) start(ch, key, vel uint8, timeMs int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open[liveKey(ch, key)] = model.Note{
		Pitch:     key,
		Velocity:  vel,
		OnsetTime: int64(timeMs),
		OnsetTick: int64(timeMs),
		Voice:     int(ch),
	}
}

func (l *liveNotes) end(ch, key uint8, timeMs int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	note, ok := l.open[liveKey(ch, key)]
	if !ok {
		return
	}
	delete(l.open, liveKey(ch, key))
	note.OffsetTime = int64(timeMs)
	note.OffsetTick = int64(timeMs)
	l.notes = append(l.notes, note)
}

func (l *liveNotes) snapshot() []model.Note {
	l.mu.Lock()
	defer l.mu.Unlock()
	notes := make([]model.Note, len(l.notes))
	copy(notes, l.notes)
	return notes
}

func detectLive(grammar *lpcfg.Grammar, notes []model.Note) {
	if len(notes) == 0 {
		return
	}

	byVoice := make(map[int][]model.Note)
	for _, n := range notes {
		byVoice[n.Voice] = append(byVoice[n.Voice], n)
	}
	goldVoices := make([][]model.Note, 0, len(byVoice))
	for _, vn := range byVoice {
		goldVoices = append(goldVoices, vn)
	}

	voiceState, err := voice.NewFromFileState(goldVoices)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}
	beatState := beat.NewUniformState(listenTatumMs)
	meterState := meter.NewGrammarState(grammar, model.Config{})

	m := joint.NewModel(joint.NewState(voiceState, beatState, meterState), model.Config{})
	for _, batch := range model.BatchNotes(notes) {
		m.HandleIncoming(batch)
	}
	m.Close()

	results := collectHypotheses(m)
	if len(results) == 0 {
		fmt.Printf("%v notes so far, no hypothesis yet\n", len(notes))
		return
	}
	best := results[0]
	fmt.Printf("%v notes so far, best guess: %v beats x %v sub beats, anacrusis %v, logprob %v\n",
		len(notes), best.BeatsPerMeasure, best.SubBeatsPerBeat, best.AnacrusisLength, best.LogProbability)
}

func listen() {
	grammar, err := lpcfg.Load(constants.GetGrammarPath())
	if err != nil {
		panic("Could not load grammar: " + err.Error())
	}

	defer midi.CloseDriver()
	in, err := midi.InPort(0)
	if err != nil {
		fmt.Println("can't find a MIDI input port")
		return
	}

	collected := &liveNotes{open: make(map[uint16]model.Note)}
	debounced := debounce.New(2 * time.Second)

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			collected.start(ch, key, vel, timestampms)
		case msg.GetNoteEnd(&ch, &key):
			collected.end(ch, key, timestampms)
			debounced(func() {
				detectLive(grammar, collected.snapshot())
			})
		default:
			// ignore
		}
	})

	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return
	}

	fmt.Printf("Listening on %v, play something...\n", in)
	time.Sleep(time.Second * 5000) // lol
	stop()
}
