package filter

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filter/images"
)

// PadValue is the sentinel written into every field of output rows beyond the
// real detections.
const PadValue = -1

// Config defines parameters for one filtering call.
type Config struct {
	// ClassSpecificFilter selects per-class thresholding and suppression, so a
	// single box may surface under several classes. When false each box
	// competes only under its best-scoring class.
	ClassSpecificFilter bool `json:"class_specific_filter" yaml:"class_specific_filter"`
	// NMS enables greedy Non-Maximum Suppression on the thresholded groups.
	NMS bool `json:"nms" yaml:"nms"`
	// ScoreThreshold prefilters candidates; only scores strictly greater
	// pass. NaN scores never pass.
	ScoreThreshold float32 `json:"score_threshold" yaml:"score_threshold"`
	// MaxDetections is the fixed output width.
	MaxDetections int `json:"max_detections" yaml:"max_detections"`
	// NMSThreshold is the IoU above which an overlapping box is suppressed.
	NMSThreshold float32 `json:"nms_threshold" yaml:"nms_threshold"`
}

// DefaultConfig returns the standard filtering parameters.
func DefaultConfig() Config {
	return Config{
		ClassSpecificFilter: true,
		NMS:                 true,
		ScoreThreshold:      0.05,
		MaxDetections:       300,
		NMSThreshold:        0.5,
	}
}

// Aux is one auxiliary per-box array (masks, extra regression targets)
// filtered and padded in lockstep with the boxes: one row per input box, all
// rows the same width.
type Aux [][]float32

// Detections is the fixed-width result of one Filter call. Boxes, Scores,
// Labels and every entry of Other hold exactly MaxDetections rows: the real
// detections first, in descending score order, then sentinel rows with
// PadValue in every field and every aux element.
type Detections struct {
	Boxes  []images.Rect
	Scores []float32
	Labels []int
	Other  []Aux
	// Count is the number of real (non-padded) rows.
	Count int
}

// candidate is one (box, class) pair surviving thresholding. Produced and
// consumed within a single Filter call.
type candidate struct {
	box   int
	label int
	score float32
}

// Filter reduces per-box class scores to a fixed-width set of detections:
// score thresholding, optional per-group greedy NMS, a global top-k over all
// surviving (box, class) candidates, then gathering and sentinel padding.
//
// Filter is a pure function of its inputs; identical inputs produce
// bit-identical output, and concurrent calls on separate data need no
// coordination.
//
// Arguments:
//   - boxes: N boxes in (x1, y1, x2, y2) form.
//   - classification: N rows of C class scores each. The scores are not
//     required to be normalized.
//   - other: Zero or more auxiliary arrays, each with N rows, filtered along
//     with the boxes.
//   - cfg: Filtering parameters.
//
// Returns:
//   - *Detections: Exactly cfg.MaxDetections rows, real detections first.
//   - error: ErrInvalidConfig or ErrShapeMismatch before any computation; no
//     partial results are produced.
func Filter(boxes []images.Rect, classification [][]float32, other []Aux, cfg Config) (*Detections, error) {
	numClasses, err := validate(boxes, classification, other, cfg)
	if err != nil {
		return nil, err
	}

	var cands []candidate
	if cfg.ClassSpecificFilter {
		// Threshold and suppress each class column independently; one box may
		// become a candidate under several classes.
		col := make([]float32, len(boxes))
		group := make([]int, 0, len(boxes))
		for c := 0; c < numClasses; c++ {
			group = group[:0]
			for i := range boxes {
				col[i] = classification[i][c]
				// A NaN score fails the comparison and is excluded.
				if col[i] > cfg.ScoreThreshold {
					group = append(group, i)
				}
			}
			if cfg.NMS {
				group = SuppressIndices(boxes, col, group, cfg.NMSThreshold, cfg.MaxDetections)
			}
			for _, i := range group {
				cands = append(cands, candidate{box: i, label: c, score: classification[i][c]})
			}
		}
	} else {
		// Each box competes once, under its best-scoring class.
		best := make([]float32, len(boxes))
		labels := make([]int, len(boxes))
		group := make([]int, 0, len(boxes))
		for i := range boxes {
			bestScore, bestLabel := math32.Inf(-1), 0
			for c, s := range classification[i] {
				if s > bestScore {
					bestScore, bestLabel = s, c
				}
			}
			best[i], labels[i] = bestScore, bestLabel
			if bestScore > cfg.ScoreThreshold {
				group = append(group, i)
			}
		}
		if cfg.NMS {
			group = SuppressIndices(boxes, best, group, cfg.NMSThreshold, cfg.MaxDetections)
		}
		for _, i := range group {
			cands = append(cands, candidate{box: i, label: labels[i], score: best[i]})
		}
	}

	// Global top-k across all candidates is the authoritative limit; the
	// per-group suppression cap only bounds intermediate work. Stable sort
	// keeps candidate order for equal scores.
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return cands[order[i]].score > cands[order[j]].score
	})

	count := min(cfg.MaxDetections, len(cands))
	out := newDetections(cfg.MaxDetections, other, count)
	for r := 0; r < count; r++ {
		c := cands[order[r]]
		out.Boxes[r] = boxes[c.box]
		out.Scores[r] = c.score
		out.Labels[r] = c.label
		for a := range other {
			copy(out.Other[a][r], other[a][c.box])
		}
	}
	return out, nil
}

// newDetections allocates a result with rows beyond count already holding the
// pad sentinel. Aux rows take their width from the corresponding input array.
func newDetections(maxDetections int, other []Aux, count int) *Detections {
	d := &Detections{
		Boxes:  make([]images.Rect, maxDetections),
		Scores: make([]float32, maxDetections),
		Labels: make([]int, maxDetections),
		Other:  make([]Aux, len(other)),
		Count:  count,
	}
	for r := count; r < maxDetections; r++ {
		d.Boxes[r] = images.Rect{X1: PadValue, Y1: PadValue, X2: PadValue, Y2: PadValue}
		d.Scores[r] = PadValue
		d.Labels[r] = PadValue
	}
	for a := range other {
		width := 0
		if len(other[a]) > 0 {
			width = len(other[a][0])
		}
		rows := make(Aux, maxDetections)
		for r := range rows {
			rows[r] = make([]float32, width)
			if r >= count {
				for j := range rows[r] {
					rows[r][j] = PadValue
				}
			}
		}
		d.Other[a] = rows
	}
	return d
}

// validate fails fast on caller contract violations and reports the class
// count (0 when there are no boxes).
func validate(boxes []images.Rect, classification [][]float32, other []Aux, cfg Config) (int, error) {
	if cfg.MaxDetections <= 0 {
		return 0, errors.Wrapf(ErrInvalidConfig, "max detections must be positive, got %d", cfg.MaxDetections)
	}
	if math32.IsNaN(cfg.NMSThreshold) || cfg.NMSThreshold < 0 || cfg.NMSThreshold > 1 {
		return 0, errors.Wrapf(ErrInvalidConfig, "nms threshold must be in [0, 1], got %v", cfg.NMSThreshold)
	}
	if math32.IsNaN(cfg.ScoreThreshold) {
		return 0, errors.Wrap(ErrInvalidConfig, "score threshold is NaN")
	}

	n := len(boxes)
	if len(classification) != n {
		return 0, errors.Wrapf(ErrShapeMismatch, "classification has %d rows, want %d", len(classification), n)
	}
	numClasses := 0
	if n > 0 {
		numClasses = len(classification[0])
	}
	for i, row := range classification {
		if len(row) != numClasses {
			return 0, errors.Wrapf(ErrShapeMismatch,
				"classification row %d has %d classes, want %d", i, len(row), numClasses)
		}
	}
	for a, aux := range other {
		if len(aux) != n {
			return 0, errors.Wrapf(ErrShapeMismatch, "other[%d] has %d rows, want %d", a, len(aux), n)
		}
		if n == 0 {
			continue
		}
		width := len(aux[0])
		for i, row := range aux {
			if len(row) != width {
				return 0, errors.Wrapf(ErrShapeMismatch,
					"other[%d] row %d has width %d, want %d", a, i, len(row), width)
			}
		}
	}
	return numClasses, nil
}
