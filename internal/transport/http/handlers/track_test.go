package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votelane/reco-service/internal/events"
	"github.com/votelane/reco-service/internal/transport/http/dto"
)

type stubUploader struct {
	batches int
	err     error
}

func (u *stubUploader) UploadInteractions(ctx context.Context, batch []events.Interaction) error {
	u.batches++
	return u.err
}

func newTrackHandler(up *stubUploader) *TrackHandler {
	return NewTrackHandler(events.NewTracker(up, nil, 50, 100, nil))
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestTrackEndpoint(t *testing.T) {
	h := newTrackHandler(&stubUploader{})

	rec := postJSON(t, h.Track, `{"userId":"u1","electionId":"e1","eventType":"election_view"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TrackResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Buffered)
	assert.Equal(t, "election_view", resp.Event.EventType)
	assert.Equal(t, 0.3, resp.Event.Label)
	assert.NotEmpty(t, resp.Event.EventID)
}

func TestTrackHighValueNotBuffered(t *testing.T) {
	up := &stubUploader{}
	h := newTrackHandler(up)

	rec := postJSON(t, h.Track, `{"userId":"u1","electionId":"e1","eventType":"vote_cast"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TrackResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Buffered)
	assert.Equal(t, 1, up.batches)
}

func TestTrackValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing userId", `{"electionId":"e1","eventType":"vote_cast"}`},
		{"missing electionId", `{"userId":"u1","eventType":"vote_cast"}`},
		{"missing eventType", `{"userId":"u1","electionId":"e1"}`},
		{"unknown field", `{"userId":"u1","electionId":"e1","eventType":"vote_cast","bogus":1}`},
		{"malformed json", `{"userId":`},
	}

	h := newTrackHandler(&stubUploader{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Track, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "validation")
		})
	}
}

func TestTrackUploadFailureStillSucceeds(t *testing.T) {
	h := newTrackHandler(&stubUploader{err: errors.New("platform down")})

	rec := postJSON(t, h.Track, `{"userId":"u1","electionId":"e1","eventType":"vote_cast"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.TrackResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Buffered, "failed immediate upload lands in the buffer")
}

func TestBatchTrackEndpoint(t *testing.T) {
	up := &stubUploader{}
	h := newTrackHandler(up)

	rec := postJSON(t, h.BatchTrack, `{"events":[
		{"userId":"u1","electionId":"e1","eventType":"election_view"},
		{"userId":"u1","electionId":"e2","eventType":"vote_cast"}
	]}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BatchTrackResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalSent)
	assert.Zero(t, resp.FailedChunks)
}

func TestBatchTrackEmptyRejected(t *testing.T) {
	h := newTrackHandler(&stubUploader{})

	rec := postJSON(t, h.BatchTrack, `{"events":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchTrackPartialFailure(t *testing.T) {
	h := newTrackHandler(&stubUploader{err: errors.New("platform down")})

	rec := postJSON(t, h.BatchTrack, `{"events":[
		{"userId":"u1","electionId":"e1","eventType":"election_view"}
	]}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BatchTrackResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Zero(t, resp.TotalSent)
	assert.Equal(t, 1, resp.FailedChunks)
}

func TestBufferSizeAndFlush(t *testing.T) {
	up := &stubUploader{}
	h := newTrackHandler(up)

	postJSON(t, h.Track, `{"userId":"u1","electionId":"e1","eventType":"election_view"}`)

	rec := httptest.NewRecorder()
	h.BufferSize(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var buf dto.BufferResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buf))
	assert.Equal(t, 1, buf.Size)

	rec = httptest.NewRecorder()
	h.Flush(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, up.batches)

	rec = httptest.NewRecorder()
	h.BufferSize(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buf))
	assert.Zero(t, buf.Size)
}
