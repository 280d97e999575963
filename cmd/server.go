package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/XiaoShengSPiano/test-tools/analysis"
	"github.com/XiaoShengSPiano/test-tools/model"
	"github.com/XiaoShengSPiano/test-tools/session"
	"github.com/XiaoShengSPiano/test-tools/spmid"
)

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := mux.Vars(r)["id"]
	s, ok := sessions.Get(id)
	if !ok {
		writeError(w, 404, "No session with id "+id)
		return nil, false
	}
	return s, true
}

func buildSummary(res *analysis.Result) model.Summary {
	return model.Summary{
		RecordTotal:  res.RecordCounts.Total,
		RecordValid:  res.RecordCounts.Valid,
		ReplayTotal:  res.ReplayCounts.Total,
		ReplayValid:  res.ReplayCounts.Valid,
		MatchedPairs: len(res.Pairs),
		DropCount:    len(res.Drops),
		MultiCount:   len(res.Multis),
		SilentCount:  len(res.NonSounding),
		FailureCount: len(res.Failures),

		GlobalOffsetMs: res.GlobalOffset / 10,
		MeanMs:         res.Metrics.Mean / 10,
		MAEMs:          res.Metrics.MAE / 10,
		MSEMs2:         res.Metrics.MSE / 100,
		StdMs:          res.Metrics.Std / 10,
		GlobalDelayMs:  res.GlobalDelay / 10,
	}
}

func HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, 400, "Could not read uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, 400, "Could not read uploaded file: "+err.Error())
		return
	}

	f, err := spmid.Read(data)
	if err != nil {
		writeError(w, 400, "Could not parse spmid file: "+err.Error())
		return
	}
	if f.TrackCount() < 2 {
		writeError(w, 400, fmt.Sprintf("Need at least 2 tracks, file has %v", f.TrackCount()))
		return
	}

	s, err := sessions.Create()
	if err != nil {
		writeError(w, 500, "Could not create session: "+err.Error())
		return
	}
	if _, err := s.SaveUpload(header.Filename, data); err != nil {
		s.Discard()
		writeError(w, 500, "Could not store upload: "+err.Error())
		return
	}

	preset := r.FormValue("preset")
	if preset == "" {
		preset = "classic"
	}
	align, _ := strconv.ParseBool(r.FormValue("align"))

	s.Result = analysis.Run(f.Tracks[0], f.Tracks[1], analysis.Options{
		Match:   presetByName(preset),
		Align:   align,
		Checker: loadChecker(),
	})
	// Register only once Result is set; a concurrent report request must
	// never observe a half-built session.
	sessions.Register(s)

	writeJSON(w, model.AnalyzeResponse{
		SessionID: s.ID,
		Summary:   buildSummary(s.Result),
	})
}

func HandleReport(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	failures := make(map[string]string)
	for i, cause := range s.Result.Failures {
		failures[strconv.Itoa(i)] = cause
	}
	writeJSON(w, model.ReportResponse{
		Summary:  buildSummary(s.Result),
		Failures: failures,
	})
}

func faultsToJSON(faults []model.FaultRecord) []model.FaultJSON {
	res := make([]model.FaultJSON, 0, len(faults))
	for _, f := range faults {
		res = append(res, model.FaultJSON{
			Kind:     string(f.Kind),
			Side:     string(f.Side),
			Index:    f.Index,
			KeyID:    f.KeyID,
			KeyOnMs:  float64(f.KeyOn) / 10,
			KeyOffMs: float64(f.KeyOff) / 10,
		})
	}
	return res
}

func HandleFaults(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, model.FaultsResponse{
		Drops:       faultsToJSON(s.Result.Drops),
		Multis:      faultsToJSON(s.Result.Multis),
		NonSounding: faultsToJSON(s.Result.NonSounding),
	})
}

func HandleHistogram(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}

	h := s.Result.Histogram
	res := model.HistogramResponse{
		Values: h.Values,
		MeanMs: h.MeanMs,
		StdMs:  h.StdMs,
	}
	if h.Curve != nil {
		res.CurveX = h.Curve.X
		res.CurveY = h.Curve.Y
	}
	writeJSON(w, res)
}

func HandleClose(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r)
	if !ok {
		return
	}
	sessions.Close(s.ID)
	w.WriteHeader(204)
}
