// Package images - Geometry primitives shared by the detection pipeline.
package images

// Rect is a lightweight axis-aligned bounding box in absolute coordinates,
// stored as (x1, y1, x2, y2). No ordering between the corners is enforced
// here; a degenerate box simply has zero area.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// Area returns the area of the box, or 0 for a degenerate box.
func (r Rect) Area() float32 {
	w := r.X2 - r.X1
	h := r.Y2 - r.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// CalculateIoU computes the Intersection over Union of two boxes.
//
//	IoU = Area of Intersection / Area of Union
//
//   - A value of 1.0 means the boxes are identical.
//   - A value of 0.0 means the boxes do not overlap at all.
//
// A zero-area box yields 0 against any box, including itself, so degenerate
// boxes never suppress anything during NMS.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0 representing the IoU score.
func CalculateIoU(r, o Rect) float32 {
	// The intersection corners are the max of the starting coordinates and
	// the min of the ending coordinates.
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	// Non-positive width or height means no overlap.
	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	// Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}

	return interArea / unionArea
}
