package domain

type ElectionStatus string

const (
	StatusDraft     ElectionStatus = "draft"
	StatusPublished ElectionStatus = "published"
	StatusActive    ElectionStatus = "active"
	StatusCompleted ElectionStatus = "completed"
	StatusCancelled ElectionStatus = "cancelled"
)

func (s ElectionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Listable reports whether elections in this status may appear in
// recommendation results.
func (s ElectionStatus) Listable() bool {
	return s != StatusDraft && s != StatusCancelled
}
