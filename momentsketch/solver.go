package momentsketch

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// 16-point Gauss-Legendre quadrature nodes and weights on [-1, 1].
// Reused for every integral the solver and CDF evaluation need: the
// maximum-entropy density is a smooth exponential of a low-degree
// polynomial, so a fixed, modest-order rule is accurate across the
// whole domain.
var (
	glNodes16 = []float64{
		-0.9894009349916499, -0.9445750230732326, -0.8656312023878318, -0.7554044083550030,
		-0.6178762444026438, -0.4580167776572274, -0.2816035507792589, -0.0950125098376374,
		0.0950125098376374, 0.2816035507792589, 0.4580167776572274, 0.6178762444026438,
		0.7554044083550030, 0.8656312023878318, 0.9445750230732326, 0.9894009349916499,
	}
	glWeights16 = []float64{
		0.0271524594117541, 0.0622535239386479, 0.0951585116824928, 0.1246289712555339,
		0.1495959888165767, 0.1691565193950025, 0.1826034150449236, 0.1894506104550685,
		0.1894506104550685, 0.1826034150449236, 0.1691565193950025, 0.1495959888165767,
		0.1246289712555339, 0.0951585116824928, 0.0622535239386479, 0.0271524594117541,
	}
)

// hessianRegularization is added to the Newton Hessian's diagonal on
// every iteration so a near-singular moment matrix (high-order moments
// on a near-degenerate distribution) still yields a solvable system.
const hessianRegularization = 1e-10

// maxEntDensity evaluates p(x) = exp(Σ λ_j·T_j(x)).
func maxEntDensity(lambda []float64, x float64) float64 {
	basis := evaluateChebyshevBasis(len(lambda), x)
	var exponent float64
	for j, l := range lambda {
		exponent += l * basis[j]
	}
	return math.Exp(exponent)
}

// solveMaxEntLambda solves for the Lagrange multipliers λ of the
// maximum-entropy density whose Chebyshev moments match target, via
// Newton iteration on the dual objective's gradient (the moment
// residual). Every iteration takes the full Newton step: there is no
// line search or step-size damping, only the fixed diagonal
// hessianRegularization. It never fails outright: it returns its best current
// estimate and a converged flag instead of erroring, per the solver's
// never-panic contract.
func solveMaxEntLambda(target []float64, tolerance float64, maxIterations int) (lambda []float64, converged bool) {
	k := len(target)
	lambda = make([]float64, k)

	for iter := 0; iter < maxIterations; iter++ {
		grad := make([]float64, k)
		hessian := mat.NewDense(k, k, nil)

		for n, x := range glNodes16 {
			w := glWeights16[n]
			basis := evaluateChebyshevBasis(k, x)
			density := maxEntDensity(lambda, x)
			for i := 0; i < k; i++ {
				grad[i] += w * density * basis[i]
				for j := 0; j < k; j++ {
					hessian.Set(i, j, hessian.At(i, j)+w*density*basis[i]*basis[j])
				}
			}
		}

		maxResidual := 0.0
		for i := range grad {
			grad[i] -= target[i]
			if r := math.Abs(grad[i]); r > maxResidual {
				maxResidual = r
			}
		}
		if maxResidual <= tolerance {
			return lambda, true
		}

		for i := 0; i < k; i++ {
			hessian.Set(i, i, hessian.At(i, i)+hessianRegularization)
		}

		negGrad := mat.NewVecDense(k, nil)
		for i, g := range grad {
			negGrad.SetVec(i, -g)
		}

		var delta mat.VecDense
		if err := delta.SolveVec(hessian, negGrad); err != nil {
			return lambda, false
		}

		for i := 0; i < k; i++ {
			lambda[i] += delta.AtVec(i)
		}
	}

	return lambda, false
}

// maxEntCDF integrates the maximum-entropy density from -1 to x using
// the same quadrature rule, rescaled onto [-1, x].
func maxEntCDF(lambda []float64, x float64) float64 {
	half := (x + 1) / 2
	mid := (x - 1) / 2
	var sum float64
	for i, node := range glNodes16 {
		sum += glWeights16[i] * half * maxEntDensity(lambda, half*node+mid)
	}
	return sum
}

// bisectQuantile finds x ∈ [-1, 1] with maxEntCDF(lambda, x) ≈ q via
// bisection; the density is non-negative so the CDF is monotone.
func bisectQuantile(lambda []float64, q float64) float64 {
	lo, hi := -1.0, 1.0
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		if maxEntCDF(lambda, mid) < q {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
