package events

// EventType is one of the closed set of user actions the platform is
// trained on.
type EventType string

const (
	EventVoteCast             EventType = "vote_cast"
	EventLotteryWin           EventType = "lottery_win"
	EventElectionCreate       EventType = "election_create"
	EventVerificationComplete EventType = "verification_complete"
	EventElectionSave         EventType = "election_save"
	EventElectionShare        EventType = "election_share"
	EventCommentAdd           EventType = "comment_add"
	EventResultsView          EventType = "results_view"
	EventVideoWatch           EventType = "video_watch"
	EventElectionView         EventType = "election_view"
	EventSearchClick          EventType = "search_click"
	EventFeedImpression       EventType = "feed_impression"
	EventElectionSkip         EventType = "election_skip"
	EventElectionHide         EventType = "election_hide"
	EventElectionReport       EventType = "election_report"
)

// highValueThreshold marks events worth sending synchronously instead of
// through the buffer.
const highValueThreshold = 0.7

// labelTable maps each event kind to its training weight in [-1, 1].
var labelTable = map[EventType]float64{
	EventVoteCast:             1.0,
	EventLotteryWin:           1.0,
	EventElectionCreate:       0.9,
	EventVerificationComplete: 0.8,
	EventElectionSave:         0.7,
	EventElectionShare:        0.6,
	EventCommentAdd:           0.5,
	EventResultsView:          0.4,
	EventVideoWatch:           0.4,
	EventElectionView:         0.3,
	EventSearchClick:          0.2,
	EventFeedImpression:       0.0,
	EventElectionSkip:         -0.3,
	EventElectionHide:         -0.6,
	EventElectionReport:       -1.0,
}

// LabelOf returns the training weight for an event kind. Unknown kinds are
// neutral (0.0); the lookup never fails.
func LabelOf(t EventType) float64 {
	return labelTable[t]
}

func IsPositive(t EventType) bool { return LabelOf(t) > 0 }

func IsNegative(t EventType) bool { return LabelOf(t) < 0 }

// IsKnown reports whether t is part of the closed enumeration.
func IsKnown(t EventType) bool {
	_, ok := labelTable[t]
	return ok
}

// IsHighValue reports whether t should bypass the buffer.
func IsHighValue(t EventType) bool { return LabelOf(t) >= highValueThreshold }

// PositiveEventTypes returns the set of kinds with a strictly positive label.
func PositiveEventTypes() map[EventType]struct{} {
	out := make(map[EventType]struct{})
	for t, w := range labelTable {
		if w > 0 {
			out[t] = struct{}{}
		}
	}
	return out
}

// HighValueEventTypes returns the set of kinds with label >= 0.7.
func HighValueEventTypes() map[EventType]struct{} {
	out := make(map[EventType]struct{})
	for t, w := range labelTable {
		if w >= highValueThreshold {
			out[t] = struct{}{}
		}
	}
	return out
}
