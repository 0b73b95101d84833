package inference

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filter/images"
)

// DecodeOutput splits a flat (N, 4+C) detection tensor into boxes and
// per-class score rows for the filter. Each row is (x1, y1, x2, y2,
// class_0 .. class_C-1).
//
// Arguments:
//   - raw: The flat output tensor data.
//   - numClasses: The per-row class count C.
//
// Returns:
//   - The decoded boxes and score rows; score rows alias raw, no copy.
//   - error: An error if raw is not a whole number of rows.
func DecodeOutput(raw []float32, numClasses int) ([]images.Rect, [][]float32, error) {
	if numClasses <= 0 {
		return nil, nil, errors.Errorf("class count must be positive, got %d", numClasses)
	}
	rowSize := 4 + numClasses
	if len(raw)%rowSize != 0 {
		return nil, nil, errors.Errorf(
			"output length %d is not a multiple of row size %d", len(raw), rowSize)
	}

	numRows := len(raw) / rowSize
	boxes := make([]images.Rect, numRows)
	scores := make([][]float32, numRows)
	for i := 0; i < numRows; i++ {
		offset := i * rowSize
		boxes[i] = images.Rect{
			X1: raw[offset+0],
			Y1: raw[offset+1],
			X2: raw[offset+2],
			Y2: raw[offset+3],
		}
		scores[i] = raw[offset+4 : offset+rowSize]
	}
	return boxes, scores, nil
}
