package updater

import "fmt"

// State of a run. A run moves forward only and may jump to Done on failure.
type State int

const (
	Idle State = iota
	Fetching
	Extracting
	Merging
	RestoringHeaders
	DiffReporting
	Validating
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Extracting:
		return "extracting"
	case Merging:
		return "merging"
	case RestoringHeaders:
		return "restoring-headers"
	case DiffReporting:
		return "diff-reporting"
	case Validating:
		return "validating"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
