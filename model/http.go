package model

// DetectRequestBody is the input of the HTTP detect endpoint: the notes of a
// performance (with voice ids already assigned) and the tatum grid they were
// aligned to.
type DetectRequestBody struct {
	Notes []Note `json:"notes"`
	Beats []Beat `json:"beats"`
}

// HypothesisResult is one ranked metrical hypothesis.
type HypothesisResult struct {
	BeatsPerMeasure int     `json:"beats_per_measure"`
	SubBeatsPerBeat int     `json:"sub_beats_per_beat"`
	SubBeatLength   int     `json:"sub_beat_length"`
	AnacrusisLength int     `json:"anacrusis_length"`
	LogProbability  float64 `json:"log_probability"`
}

type DetectResponse struct {
	Hypotheses []HypothesisResult `json:"hypotheses"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
