package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// FitResult summarizes one completed fit, after the best-seen weights
// have been restored.
type FitResult struct {
	EpochsRun int
	TrainLoss float64
	TrainAcc  float64
	ValLoss   float64
	ValAcc    float64
}

// Fit trains the network with mini-batch Adam and early stopping on
// validation loss. When the validation loss fails to improve for
// Cfg.Patience consecutive epochs, training stops and the best-seen
// weights are restored in place of the final ones. With no validation
// samples there is no loss to monitor, so early stopping is disabled
// and every requested epoch runs.
func (n *Network) Fit(X [][]int, y []int, Xval [][]int, yval []int, epochs int) (FitResult, error) {
	if len(X) == 0 {
		return FitResult{}, fmt.Errorf("fit: no training samples")
	}
	if len(X) != len(y) {
		return FitResult{}, fmt.Errorf("fit: samples/labels length mismatch: %d vs %d", len(X), len(y))
	}

	batchSize := n.Cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(X)
	}

	opt := NewAdam(n.Params(), n.Cfg.LearningRate)
	shuffleRng := rand.New(rand.NewSource(n.Cfg.Seed))

	bestValLoss := math.Inf(1)
	var bestWeights [][]float64
	sinceImproved := 0
	epochsRun := 0

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < epochs; epoch++ {
		epochsRun = epoch + 1
		shuffleRng.Shuffle(len(order), func(a, b int) {
			order[a], order[b] = order[b], order[a]
		})

		for start := 0; start < len(order); start += batchSize {
			end := start + batchSize
			if end > len(order) {
				end = len(order)
			}
			n.zeroGrads()
			for _, idx := range order[start:end] {
				cache := n.forward(X[idx], true)
				n.backward(cache, y[idx])
			}
			batchLen := float64(end - start)
			for _, p := range n.Params() {
				p.ScaleGrad(batchLen)
			}
			opt.Step(n.Params())
		}

		if len(Xval) == 0 {
			continue
		}
		valLoss, _ := n.Evaluate(Xval, yval)
		if valLoss < bestValLoss {
			bestValLoss = valLoss
			bestWeights = n.snapshotWeights()
			sinceImproved = 0
		} else {
			sinceImproved++
			if n.Cfg.Patience > 0 && sinceImproved >= n.Cfg.Patience {
				break
			}
		}
	}

	if bestWeights != nil {
		n.restoreWeights(bestWeights)
	}

	trainLoss, trainAcc := n.Evaluate(X, y)
	valLoss, valAcc := n.Evaluate(Xval, yval)
	return FitResult{
		EpochsRun: epochsRun,
		TrainLoss: trainLoss,
		TrainAcc:  trainAcc,
		ValLoss:   valLoss,
		ValAcc:    valAcc,
	}, nil
}
