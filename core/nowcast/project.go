package nowcast

import (
	"math"

	"github.com/kilianp07/dockflow/core/model"
)

// ProjectDeltas extends each station's drift over steps bins, rounded to
// whole bikes. Stations with a sub-bike drift project zero change.
func ProjectDeltas(risk map[string]model.RiskAssessment, steps int) map[string][]int {
	out := make(map[string][]int, len(risk))
	if steps <= 0 {
		return out
	}
	for id, a := range risk {
		d := int(math.Round(a.Drift))
		seq := make([]int, steps)
		for i := range seq {
			seq[i] = d
		}
		out[id] = seq
	}
	return out
}
