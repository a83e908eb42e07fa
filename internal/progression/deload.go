package progression

// DeloadPolicy decides what a failed workout does to the state.
//
// The zero value flags the failure and deloads at the next week 4. Immediate deloads on every failure.
type DeloadPolicy struct {
	Immediate bool
}

// DeloadResult is the next position after a failed workout.
type DeloadResult struct {
	Week             int     `json:"week"`
	Cycle            int     `json:"cycle"`
	TrainingMax      float64 `json:"training_max"`
	CycleDisplayName int     `json:"cycle_display_name"`
	DelayDeload      bool    `json:"delay_deload"`
}

// DoDelayedDeload reports whether the deload was postponed and must be persisted as pending.
func (r DeloadResult) DoDelayedDeload() bool {
	return r.DelayDeload
}

// Apply computes the position after a failed workout from state.
func (p DeloadPolicy) Apply(state TrainingState) DeloadResult {
	if p.Immediate || DeloadDue(state) {
		// The cycle label is kept so the trainee repeats the cycle they failed.
		return DeloadResult{
			Week:             1,
			Cycle:            state.Cycle + 1,
			TrainingMax:      max(state.TrainingMax-state.Increment, 0),
			CycleDisplayName: state.CycleDisplayName,
			DelayDeload:      false,
		}
	}

	if state.Week < WeeksPerCycle {
		return DeloadResult{
			Week:             state.Week + 1,
			Cycle:            state.Cycle,
			TrainingMax:      state.TrainingMax,
			CycleDisplayName: state.CycleDisplayName,
			DelayDeload:      true,
		}
	}

	return DeloadResult{
		Week:             1,
		Cycle:            state.Cycle + 1,
		TrainingMax:      state.TrainingMax,
		CycleDisplayName: state.CycleDisplayName + 1,
		DelayDeload:      true,
	}
}

// DeloadDue reports whether a failure at the current position deloads right away.
func DeloadDue(state TrainingState) bool {
	return state.PendingDeload && state.Week >= DeloadWeek
}
