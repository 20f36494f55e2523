package trends

import "time"

// TimestampLayout formats record timestamps in local time.
const TimestampLayout = "2006-01-02 15:04:05"

// MaxTopics caps the number of topics kept per record.
const MaxTopics = 5

// Status is the lifecycle state of the fetch orchestrator.
type Status int

// Orchestrator states.
const (
	StatusIdle Status = iota
	StatusFetching
	StatusCompleted
)

// String renders the status as used in logs and JSON payloads.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// FetchRecord is the immutable result of one successful scrape.
type FetchRecord struct {
	ID        string
	Topics    []string
	Timestamp time.Time
	Address   string
}

// Document returns the persisted shape of the record.
func (r FetchRecord) Document() RecordDocument {
	return RecordDocument{
		ID:        r.ID,
		Topics:    append([]string(nil), r.Topics...),
		Timestamp: r.Timestamp.Format(TimestampLayout),
		Address:   r.Address,
	}
}

// RecordDocument is one stored document per fetch.
type RecordDocument struct {
	ID        string   `json:"_id" bson:"_id"`
	Topics    []string `json:"trending_topics" bson:"trending_topics"`
	Timestamp string   `json:"timestamp" bson:"timestamp"`
	Address   string   `json:"ip_address" bson:"ip_address"`
}

// Outcome is either a successful record or a failure reason.
// Exactly one of Record and Reason is set.
type Outcome struct {
	Record *FetchRecord
	Reason string
}

// Success wraps a record into an outcome.
func Success(record FetchRecord) Outcome {
	rec := record
	rec.Topics = append([]string(nil), record.Topics...)
	return Outcome{Record: &rec}
}

// Failure builds a failed outcome.
func Failure(reason string) Outcome {
	if reason == "" {
		reason = "unknown error"
	}
	return Outcome{Reason: reason}
}

// OK reports whether the outcome carries a record.
func (o Outcome) OK() bool {
	return o.Record != nil
}

// Snapshot is a consistent view of the orchestrator state.
// Outcome is only set when Status is StatusCompleted.
type Snapshot struct {
	Status  Status
	Attempt uint64
	Outcome *Outcome
}

// Element is a located page element.
type Element struct {
	Locator string
}
