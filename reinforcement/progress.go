package reinforcement

// Phase names the stage of a solve a Progress snapshot was taken in.
type Phase string

const (
	PHASE_VALUE_SWEEP Phase = "value-sweep"
	PHASE_EVALUATION  Phase = "evaluation"
	PHASE_IMPROVEMENT Phase = "improvement"
	PHASE_DONE        Phase = "done"
)

// Progress is a snapshot lent to observers while a solver runs.
type Progress struct {
	Algorithm Algorithm
	Phase     Phase
	// Sweep is the running sweep count; Improvement the running improvement count.
	Sweep       int
	Improvement int
	Delta       float64
	Values      *ValueFunction
	// Policy is nil for value iteration until the policy is extracted.
	Policy *Policy
}

// ProgressFunc is a callback by which a solver lends progress details to observers (views,
// console printers). It is called synchronously from the solving goroutine and should complete
// quickly; snapshots are copies and may be retained.
type ProgressFunc func(Progress)
