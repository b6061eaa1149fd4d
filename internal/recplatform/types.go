package recplatform

// Item is one candidate row as returned by engine queries and rank calls.
// Every field is optional on the wire; absent fields keep their zero value
// so call sites never have to nil-check.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status,omitempty"`

	// Timestamps arrive as strings and may lack a timezone offset.
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`

	EngagementScore float64 `json:"engagement_score,omitempty"`
	VoteCount       int     `json:"vote_count,omitempty"`
	ViewCount       int     `json:"view_count,omitempty"`
	LotteryEnabled  bool    `json:"lottery_enabled,omitempty"`
	PrizeAmount     float64 `json:"prize_amount,omitempty"`
	DaysRemaining   int     `json:"days_remaining,omitempty"`

	// Score is the engine's own ranking score, when the call produces one.
	Score float64 `json:"score,omitempty"`
}

// TableInfo describes a managed row store on the platform.
type TableInfo struct {
	Name       string `json:"name"`
	SchemaType string `json:"schema_type,omitempty"`
	RowCount   int64  `json:"row_count,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateResult reports an idempotent create: Exists is set when the
// resource was already provisioned.
type CreateResult struct {
	Name   string
	Exists bool
}

// EngineSpec is the full engine definition sent on create: table bindings,
// per-connector extraction queries, and optional scoring policy.
type EngineSpec struct {
	Name       string            `json:"name"`
	ItemTable  string            `json:"item_table"`
	UserTable  string            `json:"user_table,omitempty"`
	EventTable string            `json:"event_table,omitempty"`
	Queries    map[string]string `json:"queries,omitempty"`
	Policy     *ScoringPolicy    `json:"policy,omitempty"`
}

// ScoringPolicy tunes the engine's ranker.
type ScoringPolicy struct {
	Objective      string  `json:"objective,omitempty"`
	ExplorationPct float64 `json:"exploration_pct,omitempty"`
}

// EngineStatus is the platform's view of a trained engine.
type EngineStatus struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	TrainedAt string `json:"trained_at,omitempty"`
}

type createTableRequest struct {
	Name       string `json:"name"`
	SchemaType string `json:"schema_type"`
}

type insertRequest struct {
	Data any `json:"data"`
}

type insertResponse struct {
	Inserted int `json:"inserted"`
}

type queryRequest struct {
	Query      string         `json:"query"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type queryResponse struct {
	Results []Item `json:"results"`
}

type rankRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

type rankResponse struct {
	Items []Item `json:"items"`
}

type listTablesResponse struct {
	Tables []TableInfo `json:"tables"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
