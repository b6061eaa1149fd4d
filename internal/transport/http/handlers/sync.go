package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/votelane/reco-service/internal/syncer"
	"github.com/votelane/reco-service/internal/transport/http/dto"
	"github.com/votelane/reco-service/internal/transport/http/response"
	"github.com/votelane/reco-service/internal/transport/http/validate"
)

type SyncHandler struct {
	svc *syncer.Service
}

func NewSyncHandler(svc *syncer.Service) *SyncHandler {
	return &SyncHandler{svc: svc}
}

func syncOptions(r *http.Request) (syncer.Options, error) {
	var req dto.SyncReq
	if r.ContentLength > 0 {
		if err := validate.DecodeJSON(r, &req); err != nil {
			return syncer.Options{}, err
		}
	}
	return syncer.Options{
		FullSync:             req.FullSync,
		Since:                req.Since,
		Status:               req.Status,
		IncludeParticipation: req.IncludeParticipation,
	}, nil
}

// Users handles POST /api/sync/users.
func (h *SyncHandler) Users(w http.ResponseWriter, r *http.Request) {
	opts, err := syncOptions(r)
	if err != nil {
		response.Err(w, err)
		return
	}
	total, err := h.svc.SyncUsers(r.Context(), opts)
	h.respond(w, total, err)
}

// Elections handles POST /api/sync/elections.
func (h *SyncHandler) Elections(w http.ResponseWriter, r *http.Request) {
	opts, err := syncOptions(r)
	if err != nil {
		response.Err(w, err)
		return
	}
	total, err := h.svc.SyncElections(r.Context(), opts)
	h.respond(w, total, err)
}

// Votes handles POST /api/sync/votes.
func (h *SyncHandler) Votes(w http.ResponseWriter, r *http.Request) {
	opts, err := syncOptions(r)
	if err != nil {
		response.Err(w, err)
		return
	}
	total, err := h.svc.SyncVotes(r.Context(), opts)
	h.respond(w, total, err)
}

// Full handles POST /api/sync/full. Families run independently; the report
// carries per-family outcomes and the call itself always answers 200.
func (h *SyncHandler) Full(w http.ResponseWriter, r *http.Request) {
	opts, err := syncOptions(r)
	if err != nil {
		response.Err(w, err)
		return
	}
	report := h.svc.FullSync(r.Context(), opts.IncludeParticipation)
	response.JSON(w, http.StatusOK, report)
}

// User handles POST /api/sync/users/{id}.
func (h *SyncHandler) User(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SyncSingleUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// Election handles POST /api/sync/elections/{id}.
func (h *SyncHandler) Election(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SyncSingleElection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// Vote handles POST /api/sync/votes/{id}.
func (h *SyncHandler) Vote(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.SyncSingleVote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *SyncHandler) respond(w http.ResponseWriter, total int, err error) {
	resp := dto.SyncResp{Success: err == nil, TotalSynced: total}
	if err != nil {
		resp.Error = err.Error()
		response.JSON(w, http.StatusBadGateway, resp)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}
