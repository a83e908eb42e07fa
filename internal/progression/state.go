package progression

// Defaults for a freshly initialized lift.
const (
	DefaultWorkoutPercentage = 90
	DefaultUpperIncrement    = 2.5
	DefaultLowerIncrement    = 5.0
)

// TrainingState is where a lift stands in the program.
type TrainingState struct {
	TrainingMax float64 `json:"training_max"`
	// Week is the position in the cycle, 1 through 4.
	Week int `json:"week"`
	// Cycle counts cycles and never decreases.
	Cycle int `json:"cycle"`
	// CycleDisplayName is the cycle label shown to the trainee. A deload can move Cycle without it.
	CycleDisplayName int     `json:"cycle_display_name"`
	PendingDeload    bool    `json:"pending_deload"`
	Increment        float64 `json:"increment"`
	// WorkoutPercentage is the share of the true one-rep max used as training max.
	WorkoutPercentage int `json:"workout_percentage"`
}

// NewTrainingState returns the state of a lift that has not been trained yet.
func NewTrainingState(trainingMax, increment float64, workoutPercentage int) TrainingState {
	return TrainingState{
		TrainingMax:       trainingMax,
		Week:              1,
		Cycle:             1,
		CycleDisplayName:  1,
		PendingDeload:     false,
		Increment:         increment,
		WorkoutPercentage: workoutPercentage,
	}
}

// TrainingMaxFromOneRepMax derives the training max from a true one-rep max.
func TrainingMaxFromOneRepMax(oneRepMax float64, workoutPercentage int, roundingIncrement float64) float64 {
	return WeightForPercentage(oneRepMax, float64(workoutPercentage), roundingIncrement)
}

// Outcome is the result of a finished workout as seen by Advance.
type Outcome struct {
	Week              int     `json:"week"`
	Cycle             int     `json:"cycle"`
	TrainingMaxAtTime float64 `json:"training_max_at_time"`
	LastSetWeight     float64 `json:"last_set_weight"`
	RepsPerformed     int     `json:"reps_performed"`
	Completed         bool    `json:"completed"`
	Won               bool    `json:"won"`
}

// Evaluate scores the top set of sets against state. A workout that is not completed is never won.
func Evaluate(state TrainingState, sets []ExerciseSet, completed bool) Outcome {
	top, _ := TopSet(sets)
	return Outcome{
		Week:              state.Week,
		Cycle:             state.Cycle,
		TrainingMaxAtTime: state.TrainingMax,
		LastSetWeight:     top.Weight,
		RepsPerformed:     top.Progress,
		Completed:         completed,
		Won:               completed && top.IsWon(),
	}
}

// Advance returns the state that follows outcome.
//
// Winning moves to the next week, and winning the last week starts a new cycle with a training max raised by the
// increment. Failing is handed to policy.
func Advance(state TrainingState, outcome Outcome, policy DeloadPolicy) TrainingState {
	if !outcome.Completed {
		return state
	}

	next := state
	switch {
	case outcome.Won && state.Week < WeeksPerCycle:
		next.Week++
	case outcome.Won:
		next.Week = 1
		next.Cycle++
		next.CycleDisplayName++
		next.TrainingMax += state.Increment
	default:
		res := policy.Apply(state)
		next.Week = res.Week
		next.Cycle = res.Cycle
		next.CycleDisplayName = res.CycleDisplayName
		next.TrainingMax = res.TrainingMax
		next.PendingDeload = res.DoDelayedDeload()
	}
	return clamp(next)
}

// clamp pulls a state back into range. Stored states from older data can carry a cycle below one.
func clamp(s TrainingState) TrainingState {
	if s.Cycle < 1 {
		s.Cycle = 1
		s.CycleDisplayName = 1
	}
	s.CycleDisplayName = max(s.CycleDisplayName, 1)
	s.Week = min(max(s.Week, 1), WeeksPerCycle)
	s.TrainingMax = max(s.TrainingMax, 0)
	return s
}
