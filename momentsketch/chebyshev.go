package momentsketch

// chebyshevCoefficients returns the polynomial coefficients of the
// first n Chebyshev polynomials of the first kind, T_0..T_{n-1}, each
// as a length-n slice where coeffs[j][i] is the coefficient of x^i in
// T_j(x). Built from the standard recurrence T_j = 2x·T_{j-1} − T_{j-2}
// applied to the coefficient vectors themselves.
func chebyshevCoefficients(n int) [][]float64 {
	coeffs := make([][]float64, n)
	for j := range coeffs {
		coeffs[j] = make([]float64, n)
	}
	if n > 0 {
		coeffs[0][0] = 1
	}
	if n > 1 {
		coeffs[1][1] = 1
	}
	for j := 2; j < n; j++ {
		for i := 0; i < n; i++ {
			var term float64
			if i > 0 {
				term += 2 * coeffs[j-1][i-1]
			}
			term -= coeffs[j-2][i]
			coeffs[j][i] = term
		}
	}
	return coeffs
}

// evaluateChebyshevBasis evaluates T_0(x)..T_{k-1}(x) via the same
// three-term recurrence, without materializing polynomial coefficients
// — the form used on every solver iteration and density evaluation.
func evaluateChebyshevBasis(k int, x float64) []float64 {
	t := make([]float64, k)
	if k > 0 {
		t[0] = 1
	}
	if k > 1 {
		t[1] = x
	}
	for j := 2; j < k; j++ {
		t[j] = 2*x*t[j-1] - t[j-2]
	}
	return t
}

// momentsToChebyshevMoments converts a vector of rescaled power moments
// m_0..m_{k-1} (with m_0 = 1) into the corresponding Chebyshev moments
// E[T_j(x)], which is what the maximum-entropy solver matches against.
func momentsToChebyshevMoments(powerMoments []float64) []float64 {
	k := len(powerMoments)
	coeffs := chebyshevCoefficients(k)
	out := make([]float64, k)
	for j := 0; j < k; j++ {
		var sum float64
		for i := 0; i <= j; i++ {
			sum += coeffs[j][i] * powerMoments[i]
		}
		out[j] = sum
	}
	return out
}
