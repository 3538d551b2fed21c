package simulator

// FailureMinutes counts empty and full flags, or 0 when the station is
// unreliable.
func FailureMinutes(isEmpty, isFull, isReliable bool) int {
	if !isReliable {
		return 0
	}
	n := 0
	if isEmpty {
		n++
	}
	if isFull {
		n++
	}
	return n
}

// ScoreSteps sums failure minutes over every step, scaled to binMinutes.
// Stations missing from reliable count as reliable.
func ScoreSteps(steps map[string][]StepState, reliable map[string]bool, binMinutes int) int {
	total := 0
	for id, seq := range steps {
		ok := true
		if v, found := reliable[id]; found {
			ok = v
		}
		for _, s := range seq {
			total += FailureMinutes(s.Empty(), s.Full(), ok) * binMinutes
		}
	}
	return total
}
