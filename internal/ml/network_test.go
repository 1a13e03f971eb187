package ml

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"
)

func tinyConfig(vocab, classes int) Config {
	return Config{
		VocabSize:        vocab,
		EmbeddingDim:     8,
		LSTMUnits:        8,
		HiddenUnits:      8,
		NumClasses:       classes,
		DropoutRecurrent: 0,
		DropoutHidden:    0,
		LearningRate:     0.01,
		BatchSize:        4,
		Patience:         0,
		Seed:             42,
	}
}

// Two well-separated classes over a tiny vocabulary.
func tinyDataset() (X [][]int, y []int) {
	X = [][]int{
		{0, 0, 1}, {0, 1, 2}, {0, 0, 2}, {0, 2, 1},
		{0, 0, 3}, {0, 3, 4}, {0, 0, 4}, {0, 4, 3},
	}
	y = []int{0, 0, 0, 0, 1, 1, 1, 1}
	return X, y
}

func TestPredictReturnsDistribution(t *testing.T) {
	n := NewNetwork(tinyConfig(4, 3))
	probs := n.Predict([]int{0, 1, 2})
	if len(probs) != 3 {
		t.Fatalf("probs length: want=3 got=%d", len(probs))
	}
	sum := 0.0
	for _, p := range probs {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", probs)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("probabilities should sum to 1, got %v", sum)
	}
}

func TestFitLearnsSeparableClasses(t *testing.T) {
	X, y := tinyDataset()
	n := NewNetwork(tinyConfig(4, 2))

	startLoss, _ := n.Evaluate(X, y)
	res, err := n.Fit(X, y, X, y, 80)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if res.EpochsRun == 0 {
		t.Fatalf("EpochsRun should be positive")
	}
	if res.TrainLoss >= startLoss {
		t.Fatalf("training should reduce loss: start=%v final=%v", startLoss, res.TrainLoss)
	}
	if res.TrainAcc < 0.9 {
		t.Fatalf("separable dataset should be learned, accuracy=%v", res.TrainAcc)
	}
}

func TestFitWithoutValidationRunsAllEpochs(t *testing.T) {
	X, y := tinyDataset()
	cfg := tinyConfig(4, 2)
	cfg.Patience = 10
	n := NewNetwork(cfg)

	res, err := n.Fit(X, y, nil, nil, 60)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if res.EpochsRun != 60 {
		t.Fatalf("empty validation set must not trigger early stopping: ran %d/60 epochs", res.EpochsRun)
	}
	if res.TrainAcc < 0.9 {
		t.Fatalf("final weights should be the trained ones, accuracy=%v", res.TrainAcc)
	}
}

func TestFitDeterministicForSeed(t *testing.T) {
	X, y := tinyDataset()

	a := NewNetwork(tinyConfig(4, 2))
	b := NewNetwork(tinyConfig(4, 2))
	if _, err := a.Fit(X, y, X, y, 10); err != nil {
		t.Fatalf("Fit a: %v", err)
	}
	if _, err := b.Fit(X, y, X, y, 10); err != nil {
		t.Fatalf("Fit b: %v", err)
	}

	pa := a.Predict([]int{0, 1, 3})
	pb := b.Predict([]int{0, 1, 3})
	if !reflect.DeepEqual(pa, pb) {
		t.Fatalf("same seed should give same model: %v vs %v", pa, pb)
	}
}

func TestFitRejectsBadInput(t *testing.T) {
	n := NewNetwork(tinyConfig(4, 2))
	if _, err := n.Fit(nil, nil, nil, nil, 5); err == nil {
		t.Fatalf("Fit with no samples should fail")
	}
	if _, err := n.Fit([][]int{{1}}, []int{0, 1}, nil, nil, 5); err == nil {
		t.Fatalf("Fit with mismatched labels should fail")
	}
}

func TestSaveLoadWeightsRoundTrip(t *testing.T) {
	X, y := tinyDataset()
	n := NewNetwork(tinyConfig(4, 2))
	if _, err := n.Fit(X, y, X, y, 5); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	path := filepath.Join(t.TempDir(), "weights.json")
	if err := n.SaveWeights(path); err != nil {
		t.Fatalf("SaveWeights: %v", err)
	}
	loaded, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}

	in := []int{0, 2, 4}
	want := n.Predict(in)
	got := loaded.Predict(in)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("loaded model should predict identically: want=%v got=%v", want, got)
	}
}

func TestLoadWeightsMissingFile(t *testing.T) {
	if _, err := LoadWeights(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("LoadWeights on missing file should fail")
	}
}

func TestConfusionMatrix(t *testing.T) {
	got := ConfusionMatrix([]int{0, 0, 1, 1, 2}, []int{0, 1, 1, 1, 0}, 3)
	want := [][]int{
		{1, 1, 0},
		{0, 2, 0},
		{1, 0, 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("confusion matrix: want=%v got=%v", want, got)
	}
}

func TestClassificationReport(t *testing.T) {
	report := ClassificationReport(
		[]int{0, 0, 1, 1},
		[]int{0, 1, 1, 1},
		[]string{"greeting", "goodbye"},
	)

	g := report["greeting"]
	if g.Support != 2 {
		t.Fatalf("greeting support: want=2 got=%d", g.Support)
	}
	if math.Abs(g.Precision-1.0) > 1e-9 || math.Abs(g.Recall-0.5) > 1e-9 {
		t.Fatalf("greeting precision/recall: got=%v/%v", g.Precision, g.Recall)
	}

	b := report["goodbye"]
	if math.Abs(b.Precision-2.0/3.0) > 1e-9 || math.Abs(b.Recall-1.0) > 1e-9 {
		t.Fatalf("goodbye precision/recall: got=%v/%v", b.Precision, b.Recall)
	}
	wantF1 := 2 * (2.0 / 3.0) * 1.0 / ((2.0 / 3.0) + 1.0)
	if math.Abs(b.F1-wantF1) > 1e-9 {
		t.Fatalf("goodbye f1: want=%v got=%v", wantF1, b.F1)
	}
}
