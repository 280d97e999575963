//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/XiaoShengSPiano/test-tools/cmd"
	"github.com/XiaoShengSPiano/test-tools/model"
	"github.com/XiaoShengSPiano/test-tools/spmid"
)

var server *httptest.Server

func TestMain(m *testing.M) {
	cmd.InitSessions()
	server = httptest.NewServer(cmd.NewRouter())

	exitVal := m.Run()

	server.Close()
	os.Exit(exitVal)
}

func makeNote(keyID int, keyOn, duration int64, velocity int) model.Note {
	return model.Note{
		Offset:     keyOn,
		KeyID:      keyID,
		Velocity:   velocity,
		Hammers:    []model.Sample{{Time: 0, Value: velocity}},
		AfterTouch: []model.Sample{{Time: 0, Value: 100}, {Time: duration, Value: 100}},
	}
}

func makeSpmidUpload(t *testing.T, f *spmid.File) (*bytes.Buffer, string) {
	data, err := spmid.Write(f)
	assert.Nil(t, err)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "upload.spmid")
	assert.Nil(t, err)
	_, err = part.Write(data)
	assert.Nil(t, err)
	assert.Nil(t, writer.Close())
	return body, writer.FormDataContentType()
}

func analyzeFile(t *testing.T, f *spmid.File) model.AnalyzeResponse {
	body, contentType := makeSpmidUpload(t, f)
	resp, err := http.Post(server.URL+"/analyze", contentType, body)
	assert.Nil(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	var ar model.AnalyzeResponse
	assert.Nil(t, json.NewDecoder(resp.Body).Decode(&ar))
	return ar
}

func twoTrackFile() *spmid.File {
	record := []model.Note{
		makeNote(40, 10000, 5000, 300),
		makeNote(45, 20000, 5000, 280),
	}
	replay := []model.Note{
		makeNote(40, 10100, 5000, 300),
		makeNote(45, 20300, 5000, 280),
	}
	return &spmid.File{Version: 2, TotalTime: 60000, Tracks: [][]model.Note{record, replay}}
}

func TestAnalyzeUploadE2E(t *testing.T) {
	ar := analyzeFile(t, twoTrackFile())

	assert := assert.New(t)
	assert.NotEmpty(ar.SessionID)
	assert.Equal(2, ar.Summary.RecordValid)
	assert.Equal(2, ar.Summary.ReplayValid)
	assert.Equal(2, ar.Summary.MatchedPairs)
	assert.Equal(0, ar.Summary.DropCount)
	// offsets 100 and 300 ticks: 20ms mean absolute error
	assert.InDelta(20.0, ar.Summary.MAEMs, 1e-9)
}

func TestAnalyzeRejectsSingleTrackE2E(t *testing.T) {
	f := &spmid.File{Version: 2, Tracks: [][]model.Note{{makeNote(40, 1000, 5000, 300)}}}
	body, contentType := makeSpmidUpload(t, f)

	resp, err := http.Post(server.URL+"/analyze", contentType, body)
	assert.Nil(t, err)
	defer resp.Body.Close()

	assert := assert.New(t)
	assert.Equal(400, resp.StatusCode)

	var er model.ErrorResponse
	assert.Nil(json.NewDecoder(resp.Body).Decode(&er))
	assert.Equal("Need at least 2 tracks, file has 1", er.Error)
}

func TestReportAndHistogramE2E(t *testing.T) {
	ar := analyzeFile(t, twoTrackFile())

	assert := assert.New(t)

	resp, err := http.Get(server.URL + "/sessions/" + ar.SessionID + "/report")
	assert.Nil(err)
	var report model.ReportResponse
	assert.Nil(json.NewDecoder(resp.Body).Decode(&report))
	resp.Body.Close()
	assert.Equal(2, report.Summary.MatchedPairs)
	assert.Equal(0, len(report.Failures))

	resp, err = http.Get(server.URL + "/sessions/" + ar.SessionID + "/histogram")
	assert.Nil(err)
	var hist model.HistogramResponse
	assert.Nil(json.NewDecoder(resp.Body).Decode(&hist))
	resp.Body.Close()
	assert.Equal([]float64{10, 30}, hist.Values)
}

func TestSessionLifecycleE2E(t *testing.T) {
	ar := analyzeFile(t, twoTrackFile())

	client := &http.Client{}
	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/sessions/"+ar.SessionID, nil)
	resp, err := client.Do(req)

	assert := assert.New(t)
	assert.Nil(err)
	assert.Equal(204, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/sessions/" + ar.SessionID + "/report")
	assert.Nil(err)
	assert.Equal(404, resp.StatusCode)
	resp.Body.Close()
}
