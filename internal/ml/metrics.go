package ml

import "math"

// Evaluate computes mean cross-entropy loss and accuracy with dropout
// disabled. Safe on empty inputs (returns zeros).
func (n *Network) Evaluate(X [][]int, y []int) (loss, acc float64) {
	if len(X) == 0 {
		return 0, 0
	}
	correct := 0
	for i, ids := range X {
		probs := n.Predict(ids)
		p := probs[y[i]]
		if p < 1e-12 {
			p = 1e-12
		}
		loss -= math.Log(p)
		if argmax(probs) == y[i] {
			correct++
		}
	}
	loss /= float64(len(X))
	acc = float64(correct) / float64(len(X))
	return loss, acc
}

// PredictClasses returns the argmax class for each sequence.
func (n *Network) PredictClasses(X [][]int) []int {
	out := make([]int, len(X))
	for i, ids := range X {
		out[i] = argmax(n.Predict(ids))
	}
	return out
}

func argmax(probs []float64) int {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return best
}

// ConfusionMatrix builds the numClasses x numClasses matrix with true
// classes on rows and predicted classes on columns.
func ConfusionMatrix(yTrue, yPred []int, numClasses int) [][]int {
	m := make([][]int, numClasses)
	for i := range m {
		m[i] = make([]int, numClasses)
	}
	for i := range yTrue {
		m[yTrue[i]][yPred[i]]++
	}
	return m
}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport computes per-class precision/recall/F1 keyed by
// class name. Classes absent from both truth and predictions report
// zeros with zero support.
func ClassificationReport(yTrue, yPred []int, classes []string) map[string]ClassMetrics {
	cm := ConfusionMatrix(yTrue, yPred, len(classes))
	report := make(map[string]ClassMetrics, len(classes))
	for c, name := range classes {
		tp := cm[c][c]
		support := 0
		predicted := 0
		for j := 0; j < len(classes); j++ {
			support += cm[c][j]
			predicted += cm[j][c]
		}
		var precision, recall, f1 float64
		if predicted > 0 {
			precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			recall = float64(tp) / float64(support)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report[name] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		}
	}
	return report
}
