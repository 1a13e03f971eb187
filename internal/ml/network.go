package ml

import (
	"math"
	"math/rand"
)

// Config fixes the classifier architecture for one training run.
// VocabSize excludes the reserved padding index; the embedding table
// has VocabSize+1 rows so index 0 stays addressable.
type Config struct {
	VocabSize    int `json:"vocab_size"`
	EmbeddingDim int `json:"embedding_dim"`
	LSTMUnits    int `json:"lstm_units"`
	HiddenUnits  int `json:"hidden_units"`
	NumClasses   int `json:"num_classes"`

	DropoutRecurrent float64 `json:"dropout_recurrent"`
	DropoutHidden    float64 `json:"dropout_hidden"`
	LearningRate     float64 `json:"learning_rate"`
	BatchSize        int     `json:"batch_size"`
	Patience         int     `json:"patience"`
	Seed             int64   `json:"seed"`
}

// Network is the sequence classifier: embedding -> LSTM -> dropout ->
// dense ReLU -> dropout -> softmax. Gradients are accumulated by an
// explicit backward pass; there is no autograd tape.
type Network struct {
	Cfg Config

	Emb *Matrix // (VocabSize+1) x EmbeddingDim

	// LSTM gate parameters: input (i), forget (f), cell (g), output (o).
	Wi, Wf, Wg, Wo *Matrix // LSTMUnits x EmbeddingDim
	Ui, Uf, Ug, Uo *Matrix // LSTMUnits x LSTMUnits
	Bi, Bf, Bg, Bo *Matrix // 1 x LSTMUnits

	W1 *Matrix // HiddenUnits x LSTMUnits
	B1 *Matrix // 1 x HiddenUnits
	W2 *Matrix // NumClasses x HiddenUnits
	B2 *Matrix // 1 x NumClasses

	rng *rand.Rand
}

func NewNetwork(cfg Config) *Network {
	rng := rand.New(rand.NewSource(cfg.Seed))
	embStd := 0.05
	lstmStd := 1.0 / math.Sqrt(float64(cfg.LSTMUnits))
	denseStd := 1.0 / math.Sqrt(float64(cfg.HiddenUnits))

	n := &Network{
		Cfg: cfg,
		Emb: NewMatrix(cfg.VocabSize+1, cfg.EmbeddingDim, embStd, rng),

		Wi: NewMatrix(cfg.LSTMUnits, cfg.EmbeddingDim, lstmStd, rng),
		Wf: NewMatrix(cfg.LSTMUnits, cfg.EmbeddingDim, lstmStd, rng),
		Wg: NewMatrix(cfg.LSTMUnits, cfg.EmbeddingDim, lstmStd, rng),
		Wo: NewMatrix(cfg.LSTMUnits, cfg.EmbeddingDim, lstmStd, rng),
		Ui: NewMatrix(cfg.LSTMUnits, cfg.LSTMUnits, lstmStd, rng),
		Uf: NewMatrix(cfg.LSTMUnits, cfg.LSTMUnits, lstmStd, rng),
		Ug: NewMatrix(cfg.LSTMUnits, cfg.LSTMUnits, lstmStd, rng),
		Uo: NewMatrix(cfg.LSTMUnits, cfg.LSTMUnits, lstmStd, rng),
		Bi: NewMatrix(1, cfg.LSTMUnits, 0, rng),
		Bf: NewMatrix(1, cfg.LSTMUnits, 0, rng),
		Bg: NewMatrix(1, cfg.LSTMUnits, 0, rng),
		Bo: NewMatrix(1, cfg.LSTMUnits, 0, rng),

		W1: NewMatrix(cfg.HiddenUnits, cfg.LSTMUnits, denseStd, rng),
		B1: NewMatrix(1, cfg.HiddenUnits, 0, rng),
		W2: NewMatrix(cfg.NumClasses, cfg.HiddenUnits, denseStd, rng),
		B2: NewMatrix(1, cfg.NumClasses, 0, rng),

		rng: rng,
	}
	// Forget-gate bias starts at 1 so early training retains state.
	for k := range n.Bf.W {
		n.Bf.W[k] = 1.0
	}
	return n
}

// Params returns every trainable matrix in a fixed order.
func (n *Network) Params() []*Matrix {
	return []*Matrix{
		n.Emb,
		n.Wi, n.Wf, n.Wg, n.Wo,
		n.Ui, n.Uf, n.Ug, n.Uo,
		n.Bi, n.Bf, n.Bg, n.Bo,
		n.W1, n.B1, n.W2, n.B2,
	}
}

func (n *Network) zeroGrads() {
	for _, p := range n.Params() {
		p.ZeroGrad()
	}
}

// forwardCache records every intermediate needed by the backward pass.
type forwardCache struct {
	ids []int

	iT, fT, gT, oT [][]float64
	cT, tanhCT, hT [][]float64

	maskRec []float64 // inverted-dropout mask over the final LSTM state
	hDrop   []float64

	dense     []float64 // ReLU activations
	maskHid   []float64
	denseDrop []float64

	probs []float64
}

// dropoutMask returns an inverted-dropout mask: kept units are scaled
// by 1/(1-rate) so inference needs no rescaling.
func (n *Network) dropoutMask(size int, rate float64) []float64 {
	mask := make([]float64, size)
	if rate <= 0 {
		for k := range mask {
			mask[k] = 1
		}
		return mask
	}
	keep := 1.0 / (1.0 - rate)
	for k := range mask {
		if n.rng.Float64() >= rate {
			mask[k] = keep
		}
	}
	return mask
}

// forward runs one sequence through the network. With train=false the
// dropout layers are identity.
func (n *Network) forward(ids []int, train bool) *forwardCache {
	T := len(ids)
	H := n.Cfg.LSTMUnits

	cache := &forwardCache{
		ids: ids,
		iT:  make([][]float64, T), fT: make([][]float64, T),
		gT: make([][]float64, T), oT: make([][]float64, T),
		cT: make([][]float64, T), tanhCT: make([][]float64, T),
		hT: make([][]float64, T),
	}

	hPrev := make([]float64, H)
	cPrev := make([]float64, H)
	for t := 0; t < T; t++ {
		x := n.Emb.Row(ids[t])
		it := make([]float64, H)
		ft := make([]float64, H)
		gt := make([]float64, H)
		ot := make([]float64, H)
		ct := make([]float64, H)
		tanhCt := make([]float64, H)
		ht := make([]float64, H)
		for k := 0; k < H; k++ {
			it[k] = sigmoid(n.Bi.W[k] + dot(n.Wi.Row(k), x) + dot(n.Ui.Row(k), hPrev))
			ft[k] = sigmoid(n.Bf.W[k] + dot(n.Wf.Row(k), x) + dot(n.Uf.Row(k), hPrev))
			gt[k] = math.Tanh(n.Bg.W[k] + dot(n.Wg.Row(k), x) + dot(n.Ug.Row(k), hPrev))
			ot[k] = sigmoid(n.Bo.W[k] + dot(n.Wo.Row(k), x) + dot(n.Uo.Row(k), hPrev))
			ct[k] = ft[k]*cPrev[k] + it[k]*gt[k]
			tanhCt[k] = math.Tanh(ct[k])
			ht[k] = ot[k] * tanhCt[k]
		}
		cache.iT[t], cache.fT[t], cache.gT[t], cache.oT[t] = it, ft, gt, ot
		cache.cT[t], cache.tanhCT[t], cache.hT[t] = ct, tanhCt, ht
		hPrev, cPrev = ht, ct
	}

	if train {
		cache.maskRec = n.dropoutMask(H, n.Cfg.DropoutRecurrent)
	} else {
		cache.maskRec = onesMask(H)
	}
	cache.hDrop = make([]float64, H)
	for k := 0; k < H; k++ {
		cache.hDrop[k] = hPrev[k] * cache.maskRec[k]
	}

	D := n.Cfg.HiddenUnits
	cache.dense = make([]float64, D)
	for k := 0; k < D; k++ {
		v := n.B1.W[k] + dot(n.W1.Row(k), cache.hDrop)
		if v > 0 {
			cache.dense[k] = v
		}
	}

	if train {
		cache.maskHid = n.dropoutMask(D, n.Cfg.DropoutHidden)
	} else {
		cache.maskHid = onesMask(D)
	}
	cache.denseDrop = make([]float64, D)
	for k := 0; k < D; k++ {
		cache.denseDrop[k] = cache.dense[k] * cache.maskHid[k]
	}

	logits := make([]float64, n.Cfg.NumClasses)
	for j := 0; j < n.Cfg.NumClasses; j++ {
		logits[j] = n.B2.W[j] + dot(n.W2.Row(j), cache.denseDrop)
	}
	cache.probs = softmax(logits)
	return cache
}

func onesMask(size int) []float64 {
	mask := make([]float64, size)
	for k := range mask {
		mask[k] = 1
	}
	return mask
}

// backward accumulates gradients for one sample given its forward
// cache and target class. Softmax + cross-entropy collapse to
// (probs - onehot) at the logits.
func (n *Network) backward(cache *forwardCache, target int) {
	H := n.Cfg.LSTMUnits
	D := n.Cfg.HiddenUnits
	C := n.Cfg.NumClasses
	T := len(cache.ids)

	dLogits := make([]float64, C)
	copy(dLogits, cache.probs)
	dLogits[target] -= 1.0

	addOuter(n.W2, dLogits, cache.denseDrop)
	for j := 0; j < C; j++ {
		n.B2.G[j] += dLogits[j]
	}

	dDenseDrop := make([]float64, D)
	for j := 0; j < C; j++ {
		if dLogits[j] == 0 {
			continue
		}
		row := n.W2.Row(j)
		for k := 0; k < D; k++ {
			dDenseDrop[k] += dLogits[j] * row[k]
		}
	}

	dDensePre := make([]float64, D)
	for k := 0; k < D; k++ {
		if cache.dense[k] > 0 {
			dDensePre[k] = dDenseDrop[k] * cache.maskHid[k]
		}
	}

	addOuter(n.W1, dDensePre, cache.hDrop)
	for k := 0; k < D; k++ {
		n.B1.G[k] += dDensePre[k]
	}

	dh := make([]float64, H)
	for k := 0; k < D; k++ {
		if dDensePre[k] == 0 {
			continue
		}
		row := n.W1.Row(k)
		for j := 0; j < H; j++ {
			dh[j] += dDensePre[k] * row[j]
		}
	}
	for j := 0; j < H; j++ {
		dh[j] *= cache.maskRec[j]
	}

	// Backpropagation through time over the LSTM.
	dc := make([]float64, H)
	for t := T - 1; t >= 0; t-- {
		it, ft, gt, ot := cache.iT[t], cache.fT[t], cache.gT[t], cache.oT[t]
		tanhCt := cache.tanhCT[t]

		var cPrev, hPrev []float64
		if t > 0 {
			cPrev = cache.cT[t-1]
			hPrev = cache.hT[t-1]
		} else {
			cPrev = make([]float64, H)
			hPrev = make([]float64, H)
		}

		dzi := make([]float64, H)
		dzf := make([]float64, H)
		dzg := make([]float64, H)
		dzo := make([]float64, H)
		for k := 0; k < H; k++ {
			do := dh[k] * tanhCt[k]
			dct := dc[k] + dh[k]*ot[k]*(1.0-tanhCt[k]*tanhCt[k])

			dzi[k] = dct * gt[k] * it[k] * (1.0 - it[k])
			dzf[k] = dct * cPrev[k] * ft[k] * (1.0 - ft[k])
			dzg[k] = dct * it[k] * (1.0 - gt[k]*gt[k])
			dzo[k] = do * ot[k] * (1.0 - ot[k])

			dc[k] = dct * ft[k]
		}

		x := n.Emb.Row(cache.ids[t])
		addOuter(n.Wi, dzi, x)
		addOuter(n.Wf, dzf, x)
		addOuter(n.Wg, dzg, x)
		addOuter(n.Wo, dzo, x)
		addOuter(n.Ui, dzi, hPrev)
		addOuter(n.Uf, dzf, hPrev)
		addOuter(n.Ug, dzg, hPrev)
		addOuter(n.Uo, dzo, hPrev)
		for k := 0; k < H; k++ {
			n.Bi.G[k] += dzi[k]
			n.Bf.G[k] += dzf[k]
			n.Bg.G[k] += dzg[k]
			n.Bo.G[k] += dzo[k]
		}

		dx := n.Emb.GradRow(cache.ids[t])
		dhPrev := make([]float64, H)
		for k := 0; k < H; k++ {
			wi, wf, wg, wo := n.Wi.Row(k), n.Wf.Row(k), n.Wg.Row(k), n.Wo.Row(k)
			for j := 0; j < n.Cfg.EmbeddingDim; j++ {
				dx[j] += dzi[k]*wi[j] + dzf[k]*wf[j] + dzg[k]*wg[j] + dzo[k]*wo[j]
			}
			ui, uf, ug, uo := n.Ui.Row(k), n.Uf.Row(k), n.Ug.Row(k), n.Uo.Row(k)
			for j := 0; j < H; j++ {
				dhPrev[j] += dzi[k]*ui[j] + dzf[k]*uf[j] + dzg[k]*ug[j] + dzo[k]*uo[j]
			}
		}
		dh = dhPrev
	}
}

// Predict returns the class probability distribution for one encoded
// sequence, with dropout disabled.
func (n *Network) Predict(ids []int) []float64 {
	return n.forward(ids, false).probs
}

// snapshotWeights deep-copies every parameter (early stopping keeps
// the best-seen generation here).
func (n *Network) snapshotWeights() [][]float64 {
	params := n.Params()
	snap := make([][]float64, len(params))
	for i, p := range params {
		snap[i] = make([]float64, len(p.W))
		copy(snap[i], p.W)
	}
	return snap
}

func (n *Network) restoreWeights(snap [][]float64) {
	for i, p := range n.Params() {
		copy(p.W, snap[i])
	}
}
