package lockbench

// Fairness returns Jain's fairness index of iters: 1.0 when every worker
// made the same number of acquisitions, 1/n when a single worker made all
// of them. An empty or all-zero slice is reported as perfectly fair.
//
// See https://en.wikipedia.org/wiki/Fairness_measure
func Fairness(iters []int64) float64 {
	if len(iters) == 0 {
		return 1
	}
	var sum, squares float64
	for _, v := range iters {
		x := float64(v)
		sum += x
		squares += x * x
	}
	if squares == 0 {
		return 1
	}
	return sum * sum / (float64(len(iters)) * squares)
}
