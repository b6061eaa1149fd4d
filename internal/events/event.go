package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/votelane/reco-service/internal/domain"
)

// Interaction is one user action on one item, shaped for the external
// platform's interaction_events table. Only declared columns are present.
type Interaction struct {
	EventID   string  `json:"event_id"`
	UserID    string  `json:"user_id"`
	ItemID    string  `json:"item_id"`
	EventType string  `json:"event_type"`
	Label     float64 `json:"label"`
	CreatedAt string  `json:"created_at"`
	Metadata  string  `json:"metadata,omitempty"`
}

// TrackSpec is the inbound description of an event to record.
type TrackSpec struct {
	EventID   string
	UserID    string
	ItemID    string
	EventType EventType
	Metadata  map[string]any
}

// NewInteraction validates a spec and materializes it. The label is derived
// from the event type, the metadata payload is serialized as text.
func NewInteraction(spec TrackSpec, now time.Time) (Interaction, error) {
	userID := strings.TrimSpace(spec.UserID)
	itemID := strings.TrimSpace(spec.ItemID)

	if userID == "" {
		return Interaction{}, domain.ErrValidation("userId is required")
	}
	if itemID == "" {
		return Interaction{}, domain.ErrValidation("electionId is required")
	}
	if spec.EventType == "" {
		return Interaction{}, domain.ErrValidation("eventType is required")
	}

	eventID := strings.TrimSpace(spec.EventID)
	if eventID == "" {
		eventID = uuid.NewString()
	}

	meta := ""
	if len(spec.Metadata) > 0 {
		b, err := json.Marshal(spec.Metadata)
		if err != nil {
			return Interaction{}, domain.ErrValidation("metadata is not serializable")
		}
		meta = string(b)
	}

	return Interaction{
		EventID:   eventID,
		UserID:    userID,
		ItemID:    itemID,
		EventType: string(spec.EventType),
		Label:     LabelOf(spec.EventType),
		CreatedAt: now.UTC().Format(time.RFC3339),
		Metadata:  meta,
	}, nil
}
