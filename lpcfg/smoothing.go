package lpcfg

// goodTuringProbability computes the Good-Turing smoothed probability of an
// event seen count times, given the full count distribution of its
// conditioned table. The frequency-of-frequencies is rebuilt on every call;
// the tables are small enough that caching never paid for itself.
func goodTuringProbability[K comparable](conditioned map[K]int, count int) float64 {
	frequencies := make(map[int]int)
	total := 0
	for _, c := range conditioned {
		frequencies[c]++
		total += c
	}

	if total == 0 {
		return 0.0
	}

	if count == 0 {
		return float64(frequencies[1]) / float64(total)
	}

	if next := frequencies[count+1]; next != 0 {
		return float64(count+1) * float64(next) / (float64(frequencies[count]) * float64(total))
	}
	return float64(count) / float64(total)
}
