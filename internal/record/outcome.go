package record

// Outcome is the per-record result of a reconciliation pass. Outcomes are
// used for counting and logging only, never persisted.
type Outcome int

const (
	Unchanged Outcome = iota
	Created
	Updated
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
