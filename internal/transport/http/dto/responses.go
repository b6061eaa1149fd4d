package dto

import "github.com/votelane/reco-service/internal/events"

type TrackResp struct {
	Success  bool               `json:"success"`
	Buffered bool               `json:"buffered"`
	Event    events.Interaction `json:"event"`
}

type BatchTrackResp struct {
	Success      bool `json:"success"`
	TotalSent    int  `json:"totalSent"`
	FailedChunks int  `json:"failedChunks,omitempty"`
}

type BufferResp struct {
	Size int `json:"size"`
}

type SyncResp struct {
	Success     bool   `json:"success"`
	TotalSynced int    `json:"totalSynced"`
	Error       string `json:"error,omitempty"`
}
