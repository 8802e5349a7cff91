package loader

import (
	"fmt"
	"math"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

// TestSize returns the number of rows that go to the test partition:
// ceil(testRatio * n). The train partition gets the rest.
func TestSize(n int, testRatio float64) int {
	nTest := int(math.Ceil(testRatio * float64(n)))
	if nTest < 0 {
		return 0
	}
	if nTest > n {
		return n
	}
	return nTest
}

// SplitOrdered splits f by position into train and test partitions without
// shuffling: the first n-TestSize rows train, the rest test. Time series
// must not leak future rows into training.
func SplitOrdered(f *data.Frame, testRatio float64) (train, test *data.Frame, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("loader: test ratio %v not in (0, 1)", testRatio)
	}
	n := f.Len()
	nTest := TestSize(n, testRatio)
	nTrain := n - nTest
	if nTrain == 0 || nTest == 0 {
		return nil, nil, fmt.Errorf("loader: %d rows with test ratio %v leaves an empty partition", n, testRatio)
	}
	return f.Slice(0, nTrain), f.Slice(nTrain, n), nil
}
