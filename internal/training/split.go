package training

import (
	"fmt"
	"math"
	"math/rand"

	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
)

// splitFractions maps a split-ratio label to the test fraction and the
// validation fraction of what remains after the test cut. "70:30"
// holds out 30% for test and ~15% of the total for validation; "80:20"
// holds out 20% and ~10%.
func splitFractions(ratio string) (testFrac, valFrac float64, err error) {
	switch ratio {
	case "70:30":
		return 0.30, 15.0 / 70.0, nil
	case "80:20":
		return 0.20, 10.0 / 80.0, nil
	default:
		return 0, 0, fmt.Errorf("%w: split ratio %q (want 70:30 or 80:20)", pkgerrors.ErrInvalidArgument, ratio)
	}
}

// stratifiedSplit partitions sample indices into train/validation/test
// so each partition keeps the full set's class proportions. Shuffling
// is seeded, so one dataset snapshot always splits the same way. The
// three partitions cover every index exactly once.
func stratifiedSplit(y []int, numClasses int, testFrac, valFrac float64, seed int64) (train, val, test []int) {
	byClass := make([][]int, numClasses)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	rng := rand.New(rand.NewSource(seed))
	for c := 0; c < numClasses; c++ {
		members := byClass[c]
		rng.Shuffle(len(members), func(a, b int) {
			members[a], members[b] = members[b], members[a]
		})

		nTest := int(math.Round(float64(len(members)) * testFrac))
		if nTest > len(members) {
			nTest = len(members)
		}
		rest := members[nTest:]
		nVal := int(math.Round(float64(len(rest)) * valFrac))
		if nVal > len(rest) {
			nVal = len(rest)
		}

		test = append(test, members[:nTest]...)
		val = append(val, rest[:nVal]...)
		train = append(train, rest[nVal:]...)
	}
	return train, val, test
}

func gather[T any](src []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}
