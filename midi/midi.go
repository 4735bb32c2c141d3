package midi

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/meterdetect/constants"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/util"
)

// Song is everything the hypothesis search needs from one MIDI file: the
// notes with resolved offsets, the same notes batched by onset time, the
// 32nd-note tatum grid, the notated time signature changes, and the
// per-channel gold voice partition.
type Song struct {
	Notes      []model.Note
	Batches    [][]model.Note
	Beats      []model.Beat
	Sigs       []model.TimeSignatureChange
	GoldVoices [][]model.Note
}

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF
	var err error

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)

	if err != nil {
		errText := fmt.Sprintf("Error reading midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))

	if err != nil {
		errText := fmt.Sprintf("Error parsing midi file... %s", err.Error())
		return &blank, errors.New(errText)
	}

	return res, nil
}

func ReadFile(filepath string) (*Song, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, err
	}
	return ReadSong(s)
}

type pendingOnset struct {
	tick     int64
	time     int64
	velocity uint8
}

func ReadSong(s *smf.SMF) (*Song, error) {
	metricTicks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported midi time format %v", s.TimeFormat)
	}
	ticksPerQuarter := int64(metricTicks)

	var song Song

	// key is channel<<8 | midi key; a note off closes the earliest open
	// onset for that key (running voices never interleave same pitches)
	open := make(map[uint16][]pendingOnset)

	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			absTime := s.TimeAt(absTicks)

			var channel, key, velocity uint8
			var num, den uint8
			switch {
			case event.Message.GetNoteStart(&channel, &key, &velocity):
				k := uint16(channel)<<8 | uint16(key)
				open[k] = append(open[k], pendingOnset{tick: absTicks, time: absTime, velocity: velocity})
			case event.Message.GetNoteEnd(&channel, &key):
				k := uint16(channel)<<8 | uint16(key)
				if len(open[k]) == 0 {
					continue
				}
				onset := open[k][0]
				open[k] = open[k][1:]
				song.Notes = append(song.Notes, model.Note{
					Pitch:      key,
					Velocity:   onset.velocity,
					OnsetTime:  onset.time,
					OnsetTick:  onset.tick,
					OffsetTime: absTime,
					OffsetTick: absTicks,
					Voice:      int(channel),
				})
			case event.Message.GetMetaMeter(&num, &den):
				sig := model.TimeSignatureChange{
					Tick:        absTicks,
					Time:        absTime,
					Numerator:   int(num),
					Denominator: int(den),
				}
				if sig.Numerator == 0 || sig.Denominator == 0 {
					sig.Numerator = constants.DefaultNumerator
					sig.Denominator = constants.DefaultDenominator
				}
				song.Sigs = append(song.Sigs, sig)
			}
		}
	}

	if len(song.Notes) == 0 {
		return nil, errors.New("midi file contains no notes")
	}

	sort.Slice(song.Notes, func(i, j int) bool {
		return song.Notes[i].Compare(song.Notes[j]) < 0
	})

	sort.Slice(song.Sigs, func(i, j int) bool {
		return song.Sigs[i].Tick < song.Sigs[j].Tick
	})
	if len(song.Sigs) == 0 || song.Sigs[0].Tick != 0 {
		song.Sigs = append([]model.TimeSignatureChange{
			{Numerator: constants.DefaultNumerator, Denominator: constants.DefaultDenominator},
		}, song.Sigs...)
	}

	song.Beats = buildBeatGrid(s, song.Sigs, lastOffsetTick(song.Notes), ticksPerQuarter)
	song.Batches = model.BatchNotes(song.Notes)
	song.GoldVoices = goldVoices(song.Notes)

	return &song, nil
}

func lastOffsetTick(notes []model.Note) int64 {
	var last int64
	for _, n := range notes {
		if n.OffsetTick > last {
			last = n.OffsetTick
		}
	}
	return last
}

// buildBeatGrid lays a 32nd-note tatum grid over the song, labeling each
// slot with its measure number and tatum index within the measure per the
// active time signature. The grid runs one full measure past the last note
// offset so closing parse steps always have beats to consume.
func buildBeatGrid(s *smf.SMF, sigs []model.TimeSignatureChange, lastTick, ticksPerQuarter int64) []model.Beat {
	tatumTicks := ticksPerQuarter / 8
	if tatumTicks == 0 {
		tatumTicks = 1
	}

	var beats []model.Beat
	measureNum := 0

	for sigIndex, sig := range sigs {
		tactiPerBar := sig.Notes32PerBar()
		if tactiPerBar <= 0 {
			tactiPerBar = 32
		}

		endTick := lastTick + int64(tactiPerBar)*tatumTicks
		if sigIndex+1 < len(sigs) {
			endTick = sigs[sigIndex+1].Tick
		} else if endTick <= sig.Tick {
			endTick = sig.Tick + int64(tactiPerBar)*tatumTicks
		}

		tatum := 0
		for tick := sig.Tick; tick < endTick; tick += tatumTicks {
			beats = append(beats, model.Beat{
				Measure: measureNum,
				Beat:    tatum,
				Time:    s.TimeAt(tick),
				Tick:    tick,
			})
			tatum++
			if tatum == tactiPerBar {
				tatum = 0
				measureNum++
			}
		}
		if tatum != 0 {
			measureNum++
		}
	}

	return beats
}

func goldVoices(notes []model.Note) [][]model.Note {
	byVoice := make(map[int][]model.Note)
	for _, n := range notes {
		byVoice[n.Voice] = append(byVoice[n.Voice], n)
	}

	var voices [][]model.Note
	for _, v := range util.GetKeysSorted(byVoice) {
		voices = append(voices, byVoice[v])
	}
	return voices
}
