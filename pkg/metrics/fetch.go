package metrics

// FetchStats summarizes a fan-out over several upstream locations.
type FetchStats struct {
	Requested int   `json:"requested"`
	Succeeded int   `json:"succeeded"`
	Failed    int   `json:"failed"`
	ElapsedMs int64 `json:"elapsedMs"`
}
