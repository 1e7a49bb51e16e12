package sail

// Random maps a seed to a float in [0, 1). It is a single mulberry32 step
// evaluated in uint32 arithmetic so every overflow wraps exactly as a
// 32-bit imul would. Callers derive further values with new seeds.
func Random(seed int) float64 {
	a := uint32(seed) + 0x6D2B79F5
	t := (a ^ a>>15) * (1 | a)
	t = (t + (t^t>>7)*(61|t)) ^ t
	return float64(t^t>>14) / 4294967296
}
