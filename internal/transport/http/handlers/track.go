package handlers

import (
	"net/http"

	"github.com/votelane/reco-service/internal/events"
	"github.com/votelane/reco-service/internal/transport/http/dto"
	"github.com/votelane/reco-service/internal/transport/http/response"
	"github.com/votelane/reco-service/internal/transport/http/validate"
)

type TrackHandler struct {
	tracker *events.Tracker
}

func NewTrackHandler(tracker *events.Tracker) *TrackHandler {
	return &TrackHandler{tracker: tracker}
}

// Track handles POST /api/events/track. Validation failures are the only
// errors a caller sees; upload trouble is absorbed by the buffer.
func (h *TrackHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req dto.TrackEventReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, err)
		return
	}

	res, err := h.tracker.Track(r.Context(), events.TrackSpec{
		UserID:    req.UserID,
		ItemID:    req.ElectionID,
		EventType: events.EventType(req.EventType),
		Metadata:  req.Metadata,
	})
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.TrackResp{
		Success:  true,
		Buffered: res.Buffered,
		Event:    res.Event,
	})
}

// BatchTrack handles POST /api/events/track/batch. Chunks that fail are
// reported, not retried here.
func (h *TrackHandler) BatchTrack(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchTrackReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, err)
		return
	}

	specs := make([]events.TrackSpec, 0, len(req.Events))
	for _, e := range req.Events {
		specs = append(specs, events.TrackSpec{
			UserID:    e.UserID,
			ItemID:    e.ElectionID,
			EventType: events.EventType(e.EventType),
			Metadata:  e.Metadata,
		})
	}

	res, err := h.tracker.BatchTrack(r.Context(), specs)
	if err != nil {
		response.Err(w, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.BatchTrackResp{
		Success:      res.FailedChunks == 0,
		TotalSent:    res.TotalSent,
		FailedChunks: res.FailedChunks,
	})
}

// BufferSize handles GET /api/events/buffer.
func (h *TrackHandler) BufferSize(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, dto.BufferResp{Size: h.tracker.BufferSize()})
}

// Flush handles POST /api/events/flush.
func (h *TrackHandler) Flush(w http.ResponseWriter, r *http.Request) {
	h.tracker.ForceFlush(r.Context())
	response.JSON(w, http.StatusOK, map[string]any{"success": true, "size": h.tracker.BufferSize()})
}
