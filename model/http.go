package model

// JSON shapes for the serve API. All timing fields are already converted
// to milliseconds.

type Summary struct {
	RecordTotal   int `json:"record_total"`
	RecordValid   int `json:"record_valid"`
	ReplayTotal   int `json:"replay_total"`
	ReplayValid   int `json:"replay_valid"`
	MatchedPairs  int `json:"matched_pairs"`
	DropCount     int `json:"drop_count"`
	MultiCount    int `json:"multi_count"`
	SilentCount   int `json:"silent_count"`
	FailureCount  int `json:"failure_count"`

	GlobalOffsetMs float64 `json:"global_offset_ms"`
	MeanMs         float64 `json:"mean_ms"`
	MAEMs          float64 `json:"mae_ms"`
	MSEMs2         float64 `json:"mse_ms2"`
	StdMs          float64 `json:"std_ms"`
	GlobalDelayMs  float64 `json:"global_delay_ms"`
}

type AnalyzeResponse struct {
	SessionID string  `json:"session_id"`
	Summary   Summary `json:"summary"`
}

type ReportResponse struct {
	Summary  Summary           `json:"summary"`
	Failures map[string]string `json:"failures"`
}

type FaultJSON struct {
	Kind     string  `json:"kind"`
	Side     string  `json:"side"`
	Index    int     `json:"index"`
	KeyID    int     `json:"key_id"`
	KeyOnMs  float64 `json:"key_on_ms"`
	KeyOffMs float64 `json:"key_off_ms"`
}

type FaultsResponse struct {
	Drops       []FaultJSON `json:"drops"`
	Multis      []FaultJSON `json:"multis"`
	NonSounding []FaultJSON `json:"non_sounding"`
}

type HistogramResponse struct {
	Values []float64 `json:"values_ms"`
	MeanMs float64   `json:"mean_ms"`
	StdMs  float64   `json:"std_ms"`
	CurveX []float64 `json:"curve_x"`
	CurveY []float64 `json:"curve_y"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
