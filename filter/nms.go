package filter

import (
	"sort"

	"github.com/nvr-ai/go-filter/images"
)

// SuppressIndices performs greedy Non-Maximum Suppression over one candidate
// group.
//
// idx holds box indices into boxes and scores; scores is indexed by box, not
// by position in idx. The group is ranked by descending score, equal scores
// keeping the order they appear in idx (callers build idx in ascending box
// order, so the lowest original index wins ties). The greedy loop then keeps
// the best remaining box and drops every other remaining box whose IoU with
// it exceeds iouThreshold, until the group is exhausted or maxOutput boxes
// have been kept.
//
// Arguments:
//   - boxes: All boxes of the filtering call, indexed by box index.
//   - scores: The score of each box under the group's class, indexed by box.
//   - idx: The box indices forming the group, in ascending order.
//   - iouThreshold: IoU above which an overlapping box is suppressed.
//   - maxOutput: Cap on the number of kept boxes for this call.
//
// Returns:
//   - The kept box indices in rank (descending score) order. idx is not
//     modified.
func SuppressIndices(boxes []images.Rect, scores []float32, idx []int, iouThreshold float32, maxOutput int) []int {
	if len(idx) == 0 || maxOutput <= 0 {
		return nil
	}

	order := make([]int, len(idx))
	copy(order, idx)
	// SliceStable keeps the incoming order for equal scores, which makes
	// tie-breaking deterministic and reproducible.
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	kept := make([]int, 0, min(len(order), maxOutput))
	suppressed := make([]bool, len(order))

	for i := 0; i < len(order) && len(kept) < maxOutput; i++ {
		if suppressed[i] {
			continue
		}

		anchor := boxes[order[i]]
		kept = append(kept, order[i])

		for j := i + 1; j < len(order); j++ {
			if suppressed[j] {
				continue
			}
			if images.CalculateIoU(anchor, boxes[order[j]]) > iouThreshold {
				suppressed[j] = true
			}
		}
	}

	return kept
}
