package meter

import (
	"fmt"

	"github.com/jsphweid/meterdetect/beat"
	"github.com/jsphweid/meterdetect/lpcfg"
	"github.com/jsphweid/meterdetect/model"
	"github.com/jsphweid/meterdetect/voice"
)

const wrongMatchLimit = 5

// GrammarState is a metrical hypothesis scored against a trained grammar.
// It starts uncommitted; on the first completed note it branches into one
// candidate per (measure type, anacrusis) pair the grammar knows, and from
// then on each candidate incrementally parses measure windows as the beat
// grid advances, accumulating log probability and match evidence until it is
// either eliminated or accepted at close.
type GrammarState struct {
	grammar      *lpcfg.Grammar
	localGrammar *lpcfg.Grammar

	measure    model.Measure
	hasMeasure bool

	subBeatLen   int
	anacrusisLen int

	logProbability   float64
	measureNum       int
	nextMeasureIndex int

	hasBegun         []bool
	unfinishedNotes  [][]model.Note
	notesToCheck     []model.Note
	notesToCheckBeat [][]model.Note

	subBeatMatches int
	beatMatches    int
	wrongMatches   int

	voiceState voice.State
	beatState  beat.State

	verbose bool
}

func NewGrammarState(grammar *lpcfg.Grammar, cfg model.Config) *GrammarState {
	return &GrammarState{
		grammar:      grammar,
		localGrammar: lpcfg.NewGrammar(),
		verbose:      cfg.Verbose,
	}
}

// branch makes a partial deep copy committed to the given measure type,
// sub beat length and anacrusis.
func (s *GrammarState) branch(measure model.Measure, subBeatLen, anacrusisLen int) *GrammarState {
	n := &GrammarState{
		grammar:      s.grammar,
		localGrammar: s.localGrammar.DeepCopy(),

		measure:    measure,
		hasMeasure: true,

		subBeatLen:   subBeatLen,
		anacrusisLen: anacrusisLen,

		logProbability:   s.logProbability,
		measureNum:       s.measureNum,
		nextMeasureIndex: s.nextMeasureIndex,

		subBeatMatches: s.subBeatMatches,
		beatMatches:    s.beatMatches,
		wrongMatches:   s.wrongMatches,

		voiceState: s.voiceState,
		beatState:  s.beatState,

		verbose: s.verbose,
	}

	if n.nextMeasureIndex == 0 {
		if anacrusisLen != 0 {
			n.nextMeasureIndex = anacrusisLen * subBeatLen
			n.measureNum = -1
		} else {
			n.nextMeasureIndex = subBeatLen * measure.BeatsPerMeasure * measure.SubBeatsPerBeat
		}
	}

	n.hasBegun = append([]bool(nil), s.hasBegun...)
	n.unfinishedNotes = copyNoteQueues(s.unfinishedNotes)
	n.notesToCheck = append([]model.Note(nil), s.notesToCheck...)
	n.notesToCheckBeat = copyNoteQueues(s.notesToCheckBeat)

	return n
}

func copyNoteQueues(queues [][]model.Note) [][]model.Note {
	out := make([][]model.Note, len(queues))
	for i, q := range queues {
		out[i] = append([]model.Note(nil), q...)
	}
	return out
}

func (s *GrammarState) HandleIncoming(notes []model.Note) []State {
	if !s.isFullyMatched() {
		s.notesToCheck = append(s.notesToCheck, notes...)
	}

	s.addNewVoices(notes)

	if s.hasMeasure {
		for len(s.beatState.Beats()) > s.nextMeasureIndex {
			s.parseStep()
		}
	}

	if !s.hasMeasure {
		return s.firstStepBranches()
	}

	if !s.isFullyMatched() {
		s.updateMatches()
	}

	if s.isWrong() {
		if s.verbose {
			fmt.Printf("Eliminating %v\n", s)
		}
		return nil
	}
	return []State{s}
}

// firstStepBranches waits until the beat grid has passed the first queued
// note's offset, then produces one candidate per known measure type and
// anacrusis, dropping any that are immediately wrong.
func (s *GrammarState) firstStepBranches() []State {
	if len(s.notesToCheck) == 0 {
		return []State{s}
	}
	lastTime := s.notesToCheck[0].OffsetTime
	beats := s.beatState.Beats()
	if len(beats) == 0 || beats[len(beats)-1].Time < lastTime {
		return []State{s}
	}

	var newStates []State
	subBeatLen := 1
	for _, measure := range s.grammar.Measures() {
		subBeatsPerMeasure := measure.BeatsPerMeasure * measure.SubBeatsPerBeat
		for anacrusisLen := 0; anacrusisLen < subBeatsPerMeasure; anacrusisLen++ {
			newState := s.branch(measure, subBeatLen, anacrusisLen)
			newState.updateMatches()

			if !newState.isWrong() {
				newStates = append(newStates, newState)
				if s.verbose {
					fmt.Printf("Adding %v\n", newState)
				}
			}
		}
	}
	return newStates
}

func (s *GrammarState) Close() []State {
	// Never committed to a measure: nothing to accept.
	if !s.hasMeasure {
		return nil
	}

	for !s.allNotesFinished() {
		s.parseStep()
	}

	if !s.isFullyMatched() {
		s.updateMatches()
	}

	if !s.isWrong() && s.isFullyMatched() {
		return []State{s}
	}
	if s.verbose {
		fmt.Printf("Eliminating %v\n", s)
	}
	return nil
}

// parseStep builds one measure tree per voice out of the buffered notes,
// scores and records it, then advances the measure window.
func (s *GrammarState) parseStep() {
	for voiceIndex, voiceNotes := range s.unfinishedNotes {
		tree := lpcfg.MakeTree(voiceNotes, s.beatState.Beats(), s.measure, s.subBeatLen, s.anacrusisLen, s.measureNum)

		if tree.IsEmpty() {
			continue
		}

		if !s.hasBegun[voiceIndex] {
			s.hasBegun[voiceIndex] = true
			// Leading silence carries no evidence; skipping it keeps an
			// anacrusis hypothesis from being penalized for its short
			// first window.
			if tree.StartsWithRest() {
				continue
			}
		}

		s.logProbability += s.grammar.TreeLogProbability(tree)
		s.localGrammar.AddTree(tree)
	}

	s.removeFinishedNotes()
	s.nextMeasureIndex += s.subBeatLen * s.measure.BeatsPerMeasure * s.measure.SubBeatsPerBeat
	s.measureNum++
}

func (s *GrammarState) allNotesFinished() bool {
	for _, voiceNotes := range s.unfinishedNotes {
		if len(voiceNotes) != 0 {
			return false
		}
	}
	return true
}

func (s *GrammarState) removeFinishedNotes() {
	beats := s.beatState.Beats()

	for voiceIndex, voiceNotes := range s.unfinishedNotes {
		kept := voiceNotes[:0]
		for _, note := range voiceNotes {
			lastIndex := model.OffsetBeatIndex(beats, note.OffsetTime)
			finished := (lastIndex != len(beats)-1 && lastIndex == s.nextMeasureIndex) || lastIndex < s.nextMeasureIndex
			if !finished {
				kept = append(kept, note)
			}
		}
		s.unfinishedNotes[voiceIndex] = kept
	}
}

// addNewVoices buffers the incoming notes per voice, distinguishing a brand
// new voice (every note of its chain arrived in this batch) from a
// continuation of one we already track.
func (s *GrammarState) addNewVoices(notes []model.Note) {
	inBatch := func(note model.Note) bool {
		for _, n := range notes {
			if n == note {
				return true
			}
		}
		return false
	}

	for voiceIndex, v := range s.voiceState.Voices() {
		if !inBatch(v.MostRecentNote()) {
			continue
		}

		var newNotes []model.Note
		newVoice := true
		for _, voiceNote := range v.Notes() {
			if !inBatch(voiceNote) {
				newVoice = false
			} else {
				newNotes = append(newNotes, voiceNote)
			}
		}

		if newVoice {
			insertAt := voiceIndex
			if insertAt > len(s.unfinishedNotes) {
				insertAt = len(s.unfinishedNotes)
			}
			s.unfinishedNotes = insertNoteQueue(s.unfinishedNotes, insertAt, newNotes)
			s.hasBegun = insertBool(s.hasBegun, insertAt, false)
			if s.beatMatches == 0 {
				s.notesToCheckBeat = insertNoteQueue(s.notesToCheckBeat, insertAt, append([]model.Note(nil), newNotes...))
			}
		} else {
			s.unfinishedNotes[voiceIndex] = append(s.unfinishedNotes[voiceIndex], newNotes...)
			if s.beatMatches == 0 {
				s.notesToCheckBeat[voiceIndex] = append(s.notesToCheckBeat[voiceIndex], newNotes...)
			}
		}
	}
}

func insertNoteQueue(queues [][]model.Note, index int, queue []model.Note) [][]model.Note {
	queues = append(queues, nil)
	copy(queues[index+1:], queues[index:])
	queues[index] = queue
	return queues
}

func insertBool(values []bool, index int, value bool) []bool {
	values = append(values, false)
	copy(values[index+1:], values[index:])
	values[index] = value
	return values
}

// updateMatches classifies all newly completed notes against the
// hypothesis's sub beat and beat lengths, and scans per-voice queues for
// conglomerate beat matches.
func (s *GrammarState) updateMatches() {
	for voiceIndex := 0; !s.isWrong() && s.beatMatches == 0 && voiceIndex < len(s.notesToCheckBeat); voiceIndex++ {
		for s.checkConglomerateBeatMatch(voiceIndex) {
		}
		if s.beatMatches > 0 {
			s.notesToCheckBeat = nil
		}
	}

	beats := s.beatState.Beats()
	lastTime := beats[len(beats)-1].Time

	for !s.isWrong() && !s.isFullyMatched() && len(s.notesToCheck) > 0 && s.notesToCheck[0].OffsetTime <= lastTime {
		note := s.notesToCheck[0]
		s.notesToCheck = s.notesToCheck[1:]
		s.updateMatchForNote(note)
	}
}

// normalizeTactus converts a (measure, beat) grid label to an absolute tatum
// index from the start of the grid. A tactiPerMeasure of 0 means the beat
// numbers already are absolute indices.
func normalizeTactus(tactiPerMeasure int, firstBeat model.Beat, measure, tactus int) int {
	if tactiPerMeasure != 0 {
		measure -= firstBeat.Measure
		tactus += tactiPerMeasure * measure
		tactus -= firstBeat.Beat
	}
	return tactus
}

func (s *GrammarState) noteSpan(note model.Note, beats []model.Beat, tactiPerMeasure int) (startTactus, noteLengthTacti int) {
	onsetIndex := model.OnsetBeatIndex(beats, note.OnsetTime)
	offsetIndex := model.OffsetBeatIndex(beats, note.OffsetTime)

	startBeat := beats[onsetIndex]
	endBeat := beats[offsetIndex]

	startTactus = normalizeTactus(tactiPerMeasure, beats[0], startBeat.Measure, startBeat.Beat)
	endTactus := normalizeTactus(tactiPerMeasure, beats[0], endBeat.Measure, endBeat.Beat)

	noteLengthTacti = endTactus - startTactus
	if noteLengthTacti < 1 {
		noteLengthTacti = 1
	}
	startTactus -= s.anacrusisLen * s.subBeatLen
	return startTactus, noteLengthTacti
}

// checkConglomerateBeatMatch looks for consecutive notes in one voice that
// exactly tile a beat with differing lengths. A uniform tiling is skipped:
// it is indistinguishable from a finer sub beat division. Returns whether
// this voice's queue needs another pass.
func (s *GrammarState) checkConglomerateBeatMatch(voiceIndex int) bool {
	queue := s.notesToCheckBeat[voiceIndex]
	if len(queue) == 0 {
		return false
	}

	tactiPerMeasure := s.beatState.TactiPerMeasure()
	beatLength := s.subBeatLen * s.measure.SubBeatsPerBeat
	beats := s.beatState.Beats()

	partialBeatPad := 0
	if s.anacrusisLen%s.measure.SubBeatsPerBeat != 0 {
		partialBeatPad = s.subBeatLen * (s.measure.SubBeatsPerBeat - (s.anacrusisLen % s.measure.SubBeatsPerBeat))
	}

	lastBeat := beats[len(beats)-1]
	lastBeatTactus := normalizeTactus(tactiPerMeasure, beats[0], lastBeat.Measure, lastBeat.Beat)
	lastBeatTactus -= s.anacrusisLen * s.subBeatLen
	lastBeatTactus += partialBeatPad
	lastBeatNum := lastBeatTactus / beatLength

	first := queue[0]
	queue = queue[1:]

	startTactus, noteLengthTacti := s.noteSpan(first, beats, tactiPerMeasure)
	startTactus += partialBeatPad
	beatOffset := startTactus % beatLength
	firstBeatNum := startTactus / beatLength

	// First note's beat hasn't finished yet; put it back and wait.
	if firstBeatNum == lastBeatNum {
		return false
	}

	// First note doesn't begin on a beat.
	if beatOffset != 0 {
		s.notesToCheckBeat[voiceIndex] = queue
		return len(queue) > 0
	}

	quantums := make([]lpcfg.Quantum, beatLength+1)
	quantums[beatOffset] = lpcfg.Onset
	for tactus := beatOffset + 1; tactus < noteLengthTacti && tactus < len(quantums); tactus++ {
		quantums[tactus] = lpcfg.Tie
	}

	consumed := 0
	broke := false
	for _, note := range queue {
		startTactus, noteLengthTacti = s.noteSpan(note, beats, tactiPerMeasure)
		startTactus += partialBeatPad
		beatOffset = startTactus % beatLength
		beatNum := startTactus / beatLength

		if beatNum != firstBeatNum {
			if beatOffset == 0 {
				quantums[beatLength] = lpcfg.Onset
			}
			broke = true
			break
		}

		consumed++
		quantums[beatOffset] = lpcfg.Onset
		for tactus := beatOffset + 1; tactus-beatOffset < noteLengthTacti && tactus < len(quantums); tactus++ {
			quantums[tactus] = lpcfg.Tie
		}
	}

	queue = queue[consumed:]
	s.notesToCheckBeat[voiceIndex] = queue
	hasNext := broke && len(queue) > 1

	// Some note tied over the beat boundary.
	if quantums[beatLength] == lpcfg.Tie {
		return hasNext
	}

	var onsets []int
	for tactus := 0; tactus < beatLength; tactus++ {
		switch quantums[tactus] {
		case lpcfg.Rest:
			return hasNext
		case lpcfg.Onset:
			onsets = append(onsets, tactus)
		}
	}

	lengths := make([]int, 0, len(onsets))
	for i := 1; i < len(onsets); i++ {
		lengths = append(lengths, onsets[i]-onsets[i-1])
	}
	lengths = append(lengths, beatLength-onsets[len(onsets)-1])

	if len(lengths) == 1 {
		return hasNext
	}

	for i := 1; i < len(lengths); i++ {
		if lengths[i] != lengths[i-1] {
			s.beatMatches++
			return false
		}
	}

	// All lengths equal: ambiguous with a finer subdivision.
	return hasNext
}

// updateMatchForNote splits a completed note into prefix, middle and postfix
// spans relative to whatever level has already matched, then classifies each
// span.
func (s *GrammarState) updateMatchForNote(note model.Note) {
	beats := s.beatState.Beats()
	tactiPerMeasure := s.beatState.TactiPerMeasure()

	startTactus, noteLengthTacti := s.noteSpan(note, beats, tactiPerMeasure)
	endTactus := startTactus + noteLengthTacti

	prefixStart := startTactus
	middleStart := startTactus
	postfixStart := endTactus

	prefixLength := 0
	middleLength := noteLengthTacti
	postfixLength := 0

	beatLength := s.subBeatLen * s.measure.SubBeatsPerBeat

	if s.subBeatMatches > 0 && startTactus/s.subBeatLen != (endTactus-1)/s.subBeatLen {
		// Interpret the note as sub beats.
		subBeatOffset := startTactus % s.subBeatLen
		subBeatEndOffset := endTactus % s.subBeatLen

		if subBeatOffset != 0 {
			prefixLength = s.subBeatLen - subBeatOffset
		}
		middleStart += prefixLength
		middleLength -= prefixLength

		postfixStart -= subBeatEndOffset
		postfixLength += subBeatEndOffset
		middleLength -= postfixLength

	} else if s.beatMatches > 0 && startTactus/beatLength != (endTactus-1)/beatLength {
		// Interpret the note as beats.
		anacrusisPart := s.anacrusisLen % s.measure.SubBeatsPerBeat
		if anacrusisPart != 0 {
			diff := s.subBeatLen * (s.measure.SubBeatsPerBeat - anacrusisPart)
			startTactus += diff
			endTactus += diff
		}
		beatOffset := (startTactus + s.subBeatLen*anacrusisPart) % beatLength
		beatEndOffset := (endTactus + s.subBeatLen*anacrusisPart) % beatLength

		if beatOffset != 0 {
			prefixLength = beatLength - beatOffset
		}
		middleStart += prefixLength
		middleLength -= prefixLength

		postfixStart -= beatEndOffset
		postfixLength += beatEndOffset
		middleLength -= postfixLength
	}

	if prefixLength != 0 {
		s.updateMatchForSpan(prefixStart, prefixLength)
	}
	if !s.isFullyMatched() && !s.isWrong() && middleLength != 0 {
		s.updateMatchForSpan(middleStart, middleLength)
	}
	if !s.isFullyMatched() && !s.isWrong() && postfixLength != 0 {
		s.updateMatchForSpan(postfixStart, postfixLength)
	}
}

// updateMatchForSpan classifies one span against the hypothesis. Exact
// length-and-phase agreement at the sub beat or beat level counts as a
// match; a divisibility or phase violation counts as wrong.
func (s *GrammarState) updateMatchForSpan(startTactus, noteLengthTacti int) {
	beatLength := s.subBeatLen * s.measure.SubBeatsPerBeat
	measureLength := beatLength * s.measure.BeatsPerMeasure

	subBeatOffset := startTactus % s.subBeatLen
	beatOffset := startTactus % beatLength
	measureOffset := startTactus % measureLength

	switch {
	case s.subBeatMatches > 0:
		// Already matched at the sub beat level.
		switch {
		case noteLengthTacti < s.subBeatLen:
		case noteLengthTacti == s.subBeatLen:
		case noteLengthTacti < beatLength:
			// Can only happen with a triple beat division and a
			// two-sub-beat note.
			s.wrongMatches++
		case noteLengthTacti == beatLength:
			if beatOffset == 0 {
				s.beatMatches++
			} else {
				s.wrongMatches++
			}
		default:
			if noteLengthTacti%beatLength != 0 {
				s.wrongMatches++
			}
		}

	case s.beatMatches > 0:
		// Already matched at the beat level.
		switch {
		case noteLengthTacti < s.subBeatLen:
			if s.subBeatLen%noteLengthTacti != 0 || subBeatOffset%noteLengthTacti != 0 {
				s.wrongMatches++
			}
		case noteLengthTacti == s.subBeatLen:
			if subBeatOffset == 0 {
				s.subBeatMatches++
			} else {
				s.wrongMatches++
			}
		case noteLengthTacti < beatLength:
			if beatOffset != 0 && beatOffset+noteLengthTacti != beatLength {
				s.wrongMatches++
			}
		}

	default:
		// No level matched yet.
		switch {
		case noteLengthTacti < s.subBeatLen:
			if s.subBeatLen%noteLengthTacti != 0 || subBeatOffset%noteLengthTacti != 0 {
				s.wrongMatches++
			}
		case noteLengthTacti == s.subBeatLen:
			if subBeatOffset == 0 {
				s.subBeatMatches++
			} else {
				s.wrongMatches++
			}
		case noteLengthTacti < beatLength:
			if beatOffset != 0 && beatOffset+noteLengthTacti != beatLength {
				s.wrongMatches++
			}
		case noteLengthTacti == beatLength:
			if beatOffset == 0 {
				s.beatMatches++
			} else {
				s.wrongMatches++
			}
		default:
			if measureLength%noteLengthTacti != 0 || measureOffset%noteLengthTacti != 0 ||
				beatOffset != 0 || noteLengthTacti%beatLength != 0 {
				s.wrongMatches++
			}
		}
	}
}

func (s *GrammarState) isFullyMatched() bool {
	return s.subBeatMatches > 0 && s.beatMatches > 0
}

func (s *GrammarState) isWrong() bool {
	return s.wrongMatches >= wrongMatchLimit
}

func (s *GrammarState) Measure() (model.Measure, bool) {
	return s.measure, s.hasMeasure
}

func (s *GrammarState) SubBeatLength() int {
	return s.subBeatLen
}

func (s *GrammarState) AnacrusisLength() int {
	return s.anacrusisLen
}

func (s *GrammarState) LocalGrammar() *lpcfg.Grammar {
	return s.localGrammar
}

func (s *GrammarState) Score() float64 {
	return s.logProbability
}

func (s *GrammarState) DeepCopy() State {
	n := s.branch(s.measure, s.subBeatLen, s.anacrusisLen)
	n.hasMeasure = s.hasMeasure
	n.measureNum = s.measureNum
	n.nextMeasureIndex = s.nextMeasureIndex
	return n
}

func (s *GrammarState) SetVoiceState(vs voice.State) {
	s.voiceState = vs
}

func (s *GrammarState) SetBeatState(bs beat.State) {
	s.beatState = bs
}

func (s *GrammarState) VoiceState() voice.State {
	return s.voiceState
}

func (s *GrammarState) BeatState() beat.State {
	return s.beatState
}

func (s *GrammarState) Compare(other State) int {
	o, ok := other.(*GrammarState)
	if !ok {
		return -1
	}

	// Higher scores first. A raw score of exactly 0.0 means the state has
	// not accumulated any probability yet; those sort after scored states
	// regardless of sign.
	if result := compareFloat(o.Score(), s.Score()); result != 0 {
		if o.Score() == 0.0 || s.Score() == 0.0 {
			return -result
		}
		return result
	}

	if result := s.subBeatLen - o.subBeatLen; result != 0 {
		return result
	}
	if result := s.anacrusisLen - o.anacrusisLen; result != 0 {
		return result
	}
	if s.hasMeasure {
		if result := s.measure.Compare(o.measure); result != 0 {
			return result
		}
	}

	if s.voiceState == o.voiceState && s.beatState == o.beatState {
		return 0
	}
	return 1
}

func compareFloat(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (s *GrammarState) String() string {
	return fmt.Sprintf("%v length=%d anacrusis=%d Score=%v", s.measure, s.subBeatLen, s.anacrusisLen, s.logProbability)
}
