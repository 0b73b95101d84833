package filter

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-filter/images"
)

// FromTensor unpacks dense tensors into the slice inputs Filter consumes.
//
// Arguments:
//   - boxes: float32 tensor of shape (N, 4).
//   - classification: float32 tensor of shape (N, C).
//   - other: Zero or more float32 tensors with leading dimension N; trailing
//     dimensions are flattened into the aux row.
//
// Returns:
//   - The boxes, classification rows and aux arrays, backed by the tensors'
//     data (no copy).
//   - error: ErrShapeMismatch when a tensor's shape or dtype disagrees.
func FromTensor(boxes, classification *tensor.Dense, other []*tensor.Dense) ([]images.Rect, [][]float32, []Aux, error) {
	bs := boxes.Shape()
	if len(bs) != 2 || bs[1] != 4 {
		return nil, nil, nil, errors.Wrapf(ErrShapeMismatch, "boxes tensor has shape %v, want (N, 4)", bs)
	}
	n := bs[0]
	bdata, err := float32Data(boxes)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "boxes tensor")
	}
	rects := make([]images.Rect, n)
	for i := 0; i < n; i++ {
		rects[i] = images.Rect{
			X1: bdata[i*4+0],
			Y1: bdata[i*4+1],
			X2: bdata[i*4+2],
			Y2: bdata[i*4+3],
		}
	}

	cs := classification.Shape()
	if len(cs) != 2 || cs[0] != n {
		return nil, nil, nil, errors.Wrapf(ErrShapeMismatch,
			"classification tensor has shape %v, want (%d, C)", cs, n)
	}
	numClasses := cs[1]
	cdata, err := float32Data(classification)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "classification tensor")
	}
	scores := make([][]float32, n)
	for i := 0; i < n; i++ {
		scores[i] = cdata[i*numClasses : (i+1)*numClasses]
	}

	aux := make([]Aux, len(other))
	for a, o := range other {
		os := o.Shape()
		if len(os) < 1 || os[0] != n {
			return nil, nil, nil, errors.Wrapf(ErrShapeMismatch,
				"other[%d] tensor has shape %v, want leading dimension %d", a, os, n)
		}
		width := 1
		for _, dim := range os[1:] {
			width *= dim
		}
		odata, err := float32Data(o)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "other[%d] tensor", a)
		}
		rows := make(Aux, n)
		for i := 0; i < n; i++ {
			rows[i] = odata[i*width : (i+1)*width]
		}
		aux[a] = rows
	}

	return rects, scores, aux, nil
}

// FilterTensor converts the tensors with FromTensor and runs Filter on the
// result.
func FilterTensor(boxes, classification *tensor.Dense, other []*tensor.Dense, cfg Config) (*Detections, error) {
	b, c, aux, err := FromTensor(boxes, classification, other)
	if err != nil {
		return nil, err
	}
	out, err := Filter(b, c, aux, cfg)
	if err != nil {
		return nil, err
	}
	// With no input rows the slice form cannot carry an aux row width, so the
	// pad rows come back zero-width; restore the width declared by the tensor
	// shapes.
	if len(b) == 0 {
		for a, o := range other {
			width := 1
			for _, dim := range o.Shape()[1:] {
				width *= dim
			}
			for r := range out.Other[a] {
				row := make([]float32, width)
				for j := range row {
					row[j] = PadValue
				}
				out.Other[a][r] = row
			}
		}
	}
	return out, nil
}

func float32Data(t *tensor.Dense) ([]float32, error) {
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(ErrShapeMismatch, "dtype %v, want float32", t.Dtype())
	}
	// Dense.Data panics on zero-element tensors; an empty batch item is
	// valid input, not a contract violation.
	if t.Size() == 0 {
		return nil, nil
	}
	// Dense.Data returns the bare scalar for single-element tensors.
	switch data := t.Data().(type) {
	case []float32:
		return data, nil
	case float32:
		return []float32{data}, nil
	}
	return nil, errors.Wrap(ErrShapeMismatch, "backing is not a float32 slice")
}
