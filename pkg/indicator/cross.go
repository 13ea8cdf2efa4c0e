package indicator

// CrossAge returns how many bars ago fast last crossed above slow. Zero means the cross
// happened on the last bar. ok is false when fast is not above slow on the last bar, or
// when fast has been above slow for the whole defined window so the cross is not visible.
func CrossAge(fast, slow []float64) (age int, ok bool) {
	n := len(fast)
	if n == 0 || len(slow) != n {
		return 0, false
	}
	if !above(fast[n-1], slow[n-1]) {
		return 0, false
	}

	for i := n - 2; i >= 0; i-- {
		if !IsDefined(fast[i]) || !IsDefined(slow[i]) {
			return 0, false
		}
		if !above(fast[i], slow[i]) {
			return n - 2 - i, true
		}
	}
	return 0, false
}

func above(fast, slow float64) bool {
	return IsDefined(fast) && IsDefined(slow) && fast > slow
}
