package progression

import "math"

// EpleyCoefficient scales weight times reps in the one-rep max estimate.
const EpleyCoefficient = 0.0333

// EstimateOneRepMax estimates a one-rep max from reps done at weight. ok is false when reps is not positive since
// there is nothing to estimate from.
func EstimateOneRepMax(weight float64, reps int) (float64, bool) {
	if reps <= 0 {
		return 0, false
	}
	return weight*float64(reps)*EpleyCoefficient + weight, true
}

// IsWon reports whether progress met repGoal. Hitting the goal exactly counts.
func IsWon(repGoal, progress int) bool {
	return progress >= repGoal
}

// RepsToBeat returns the fewest reps on the top set that would estimate a one-rep max above highest.
//
// ok is false when there is no prior estimate or when the top set is not a plus set.
func RepsToBeat(sets []ExerciseSet, highest *float64) (int, bool) {
	top, ok := TopSet(sets)
	if !ok || top.Type != SetTypePlusSet || highest == nil || *highest <= 0 || top.Weight <= 0 {
		return 0, false
	}
	h := *highest
	w := top.Weight

	// Solve w*r*k + w > h for r, then step to absorb float error at the boundary.
	reps := max(int(math.Floor((h-w)/(w*EpleyCoefficient)))+1, 1)
	for {
		est, _ := EstimateOneRepMax(w, reps)
		if est > h {
			break
		}
		reps++
	}
	for reps > 1 {
		est, _ := EstimateOneRepMax(w, reps-1)
		if est <= h {
			break
		}
		reps--
	}
	return reps, true
}
