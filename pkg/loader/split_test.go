package loader

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

func frameOf(n int) *data.Frame {
	t0 := time.Date(2004, 3, 10, 18, 0, 0, 0, time.UTC)
	f := &data.Frame{Columns: []string{"v"}}
	for i := 0; i < n; i++ {
		f.Index = append(f.Index, t0.Add(time.Duration(i)*time.Hour))
		f.Rows = append(f.Rows, []float64{float64(i)})
	}
	return f
}

func TestTestSize(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{5, 1}, {6, 2}, {7, 2}, {10, 2}, {11, 3}, {100, 20}, {9357, 1872},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TestSize(tt.n, 0.2), "n=%d", tt.n)
	}
}

func TestTestSize_CeilsProduct(t *testing.T) {
	// 0.1*3 is 0.30000000000000004 in float64; the product is ceiled as is
	assert.Equal(t, 1, TestSize(3, 0.1))
	assert.Equal(t, 3, TestSize(10, 0.25))
	assert.Equal(t, 0, TestSize(0, 0.2))
	for n := 1; n <= 1000; n++ {
		assert.Equal(t, int(math.Ceil(0.2*float64(n))), TestSize(n, 0.2), "n=%d", n)
	}
}

func TestSplitOrdered(t *testing.T) {
	for _, n := range []int{5, 7, 10, 23, 100} {
		f := frameOf(n)
		train, test, err := SplitOrdered(f, 0.2)
		require.NoError(t, err)

		assert.Equal(t, n-TestSize(n, 0.2), train.Len())
		assert.Equal(t, n, train.Len()+test.Len())

		// concatenation in order reconstructs the input, so no row is in both
		joined := append(append([][]float64{}, train.Rows...), test.Rows...)
		assert.Equal(t, f.Rows, joined)
		joinedIdx := append(append([]time.Time{}, train.Index...), test.Index...)
		assert.Equal(t, f.Index, joinedIdx)
	}
}

func TestSplitOrdered_Invalid(t *testing.T) {
	_, _, err := SplitOrdered(frameOf(10), 0)
	assert.Error(t, err)
	_, _, err = SplitOrdered(frameOf(10), 1)
	assert.Error(t, err)
	_, _, err = SplitOrdered(frameOf(1), 0.2)
	assert.Error(t, err)
}
