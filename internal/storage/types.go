package storage

// SlotContent is what a physical slot holds.
type SlotContent int

const (
	Open SlotContent = iota
	Green
	Purple
)

func (c SlotContent) String() string {
	switch c {
	case Open:
		return "open"
	case Green:
		return "green"
	case Purple:
		return "purple"
	default:
		return "unknown"
	}
}

// Task is a queued storage request.
type Task int

const (
	LoadPurple Task = iota
	LoadGreen
	ReadyForCollection
	ClockwiseBump
	CounterclockwiseBump
)

func (t Task) String() string {
	switch t {
	case LoadPurple:
		return "load_purple"
	case LoadGreen:
		return "load_green"
	case ReadyForCollection:
		return "ready_for_collection"
	case ClockwiseBump:
		return "clockwise_bump"
	case CounterclockwiseBump:
		return "counterclockwise_bump"
	default:
		return "unknown"
	}
}

// ParseTask maps the names used in scenario files back to tasks.
func ParseTask(s string) (Task, bool) {
	for _, t := range []Task{LoadPurple, LoadGreen, ReadyForCollection, ClockwiseBump, CounterclockwiseBump} {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// content is the slot content a load task wants at the feeder.
func (t Task) content() (SlotContent, bool) {
	switch t {
	case LoadGreen:
		return Green, true
	case LoadPurple:
		return Purple, true
	default:
		return Open, false
	}
}

type State int

const (
	Resting State = iota
	Bumping
	ReadyingGreen
	ReadyingPurple
	LoadingGreen
	LoadingPurple
)

func (s State) String() string {
	switch s {
	case Resting:
		return "resting"
	case Bumping:
		return "bumping"
	case ReadyingGreen:
		return "readying_green"
	case ReadyingPurple:
		return "readying_purple"
	case LoadingGreen:
		return "loading_green"
	case LoadingPurple:
		return "loading_purple"
	default:
		return "unknown"
	}
}

// TaskResult is how a task's future completes.
type TaskResult int

const (
	// Fed means a piece went through the feeder.
	Fed TaskResult = iota
	// Done means the requested rotation, or nothing at all, was needed.
	Done
	// Abandoned means the task could not be carried out, such as loading a
	// colour that is not in storage or making room when storage is full.
	Abandoned
	// Dropped means the task was cleared from the queue before it started.
	Dropped
)

func (r TaskResult) String() string {
	switch r {
	case Fed:
		return "fed"
	case Done:
		return "done"
	case Abandoned:
		return "abandoned"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}
