package optimizer

// TieBreakerScore orders plans lexicographically: fewer moves, then less
// travel, then smaller quantity.
type TieBreakerScore struct {
	Moves         int `json:"moves"`
	TravelMinutes int `json:"travel_minutes"`
	Quantity      int `json:"quantity"`
}

// CompareScores reports whether a is strictly better than b.
func CompareScores(a, b TieBreakerScore) bool {
	if a.Moves != b.Moves {
		return a.Moves < b.Moves
	}
	if a.TravelMinutes != b.TravelMinutes {
		return a.TravelMinutes < b.TravelMinutes
	}
	return a.Quantity < b.Quantity
}

// PickBetter returns the smaller score, a on ties.
func PickBetter(a, b TieBreakerScore) TieBreakerScore {
	if CompareScores(b, a) {
		return b
	}
	return a
}
