package ml

import "math"

const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8

	gradClip = 5.0
)

// Adam keeps first/second moment estimates parallel to the parameter
// list returned by Network.Params.
type Adam struct {
	lr float64
	t  int
	m  [][]float64
	v  [][]float64
}

func NewAdam(params []*Matrix, lr float64) *Adam {
	m := make([][]float64, len(params))
	v := make([][]float64, len(params))
	for i, p := range params {
		m[i] = make([]float64, len(p.W))
		v[i] = make([]float64, len(p.W))
	}
	return &Adam{lr: lr, m: m, v: v}
}

// Step applies one Adam update from the accumulated gradients, then
// clears them.
func (a *Adam) Step(params []*Matrix) {
	a.t++
	b1Corr := 1.0 - math.Pow(adamBeta1, float64(a.t))
	b2Corr := 1.0 - math.Pow(adamBeta2, float64(a.t))

	clipGrads(params)

	for i, p := range params {
		mi, vi := a.m[i], a.v[i]
		for j := range p.W {
			g := p.G[j]
			mi[j] = adamBeta1*mi[j] + (1.0-adamBeta1)*g
			vi[j] = adamBeta2*vi[j] + (1.0-adamBeta2)*g*g
			mhat := mi[j] / b1Corr
			vhat := vi[j] / b2Corr
			p.W[j] -= a.lr * mhat / (math.Sqrt(vhat) + adamEps)
			p.G[j] = 0
		}
	}
}

// clipGrads rescales all gradients if their global norm exceeds the
// clip threshold. Keeps BPTT stable on small, spiky batches.
func clipGrads(params []*Matrix) {
	total := 0.0
	for _, p := range params {
		for _, g := range p.G {
			total += g * g
		}
	}
	norm := math.Sqrt(total)
	if norm <= gradClip {
		return
	}
	scale := gradClip / norm
	for _, p := range params {
		for j := range p.G {
			p.G[j] *= scale
		}
	}
}
