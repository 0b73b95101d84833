package batch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-filter/filter"
	"github.com/nvr-ai/go-filter/images"
)

func makeItem(scores ...float32) Item {
	boxes := make([]images.Rect, len(scores))
	classification := make([][]float32, len(scores))
	for i, s := range scores {
		off := float32(i * 10)
		boxes[i] = images.Rect{X1: off, Y1: off, X2: off + 1, Y2: off + 1}
		classification[i] = []float32{s}
	}
	return Item{Boxes: boxes, Classification: classification}
}

// TestRunOrdered validates that results land at their item's index no matter
// how many workers run.
func TestRunOrdered(t *testing.T) {
	items := []Item{
		makeItem(0.9),
		makeItem(0.8, 0.7),
		makeItem(),
		makeItem(0.6),
	}
	cfg := filter.Config{ScoreThreshold: 0.5, MaxDetections: 3, ClassSpecificFilter: true}

	out, err := Run(items, cfg, 4)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, float32(0.9), out[0].Scores[0])
	assert.Equal(t, 2, out[1].Count)
	assert.Equal(t, 0, out[2].Count, "empty item stays fully padded")
	assert.Equal(t, float32(0.6), out[3].Scores[0])
}

// TestRunSequentialMatchesParallel validates that worker count does not
// change the result.
func TestRunSequentialMatchesParallel(t *testing.T) {
	items := []Item{
		makeItem(0.9, 0.2, 0.7),
		makeItem(0.4, 0.6),
		makeItem(0.55),
	}
	cfg := filter.Config{ScoreThreshold: 0.5, MaxDetections: 2, ClassSpecificFilter: true, NMS: true, NMSThreshold: 0.5}

	sequential, err := Run(items, cfg, 1)
	require.NoError(t, err)
	parallel, err := Run(items, cfg, 8)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

// TestRunErrorReportsLowestIndex validates deterministic error propagation.
func TestRunErrorReportsLowestIndex(t *testing.T) {
	broken := makeItem(0.9)
	broken.Classification = nil // row count no longer matches the boxes

	items := []Item{makeItem(0.9), broken, broken}
	cfg := filter.Config{ScoreThreshold: 0.5, MaxDetections: 2}

	for _, workers := range []int{1, 4} {
		out, err := Run(items, cfg, workers)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.True(t, errors.Is(err, filter.ErrShapeMismatch))
		assert.Contains(t, err.Error(), "item 1")
	}
}

// TestRunEmptyBatch validates the trivial case.
func TestRunEmptyBatch(t *testing.T) {
	out, err := Run(nil, filter.Config{MaxDetections: 1}, 4)
	require.NoError(t, err)
	assert.Empty(t, out)
}
