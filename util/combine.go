package util

// Combine returns the Cartesian product of lists: one slice per way of picking
// a single element from every list, in list order. The first list varies slowest.
//
// Combine of no lists is a single empty combination, and any empty list makes
// the whole product empty.
//
// It folds from the right, so depth does not grow with len(lists).
func Combine[A any](lists [][]A) [][]A {
	acc := [][]A{{}}
	for i := len(lists) - 1; i >= 0; i-- {
		next := make([][]A, 0, len(acc)*len(lists[i]))
		for _, head := range lists[i] {
			for _, tail := range acc {
				combo := make([]A, 0, len(tail)+1)
				combo = append(combo, head)
				combo = append(combo, tail...)
				next = append(next, combo)
			}
		}
		acc = next
	}
	return acc
}
