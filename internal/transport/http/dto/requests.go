package dto

import "time"

type TrackEventReq struct {
	UserID     string         `json:"userId" validate:"required"`
	ElectionID string         `json:"electionId" validate:"required"`
	EventType  string         `json:"eventType" validate:"required"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type BatchTrackReq struct {
	Events []TrackEventReq `json:"events" validate:"required,min=1,dive"`
}

type SyncReq struct {
	FullSync             bool       `json:"fullSync"`
	Since                *time.Time `json:"since,omitempty"`
	Status               string     `json:"status,omitempty"`
	IncludeParticipation bool       `json:"includeParticipation,omitempty"`
}
