package images

import (
	"math"
	"testing"
)

// TestIoU_Correctness validates the IoU implementation against known test cases
func TestIoU_Correctness(t *testing.T) {
	tests := []struct {
		name     string
		r1       Rect
		r2       Rect
		expected float32
		epsilon  float32
	}{
		{
			name:     "Identical rectangles",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{0, 0, 100, 100},
			expected: 1.0,
			epsilon:  0.001,
		},
		{
			name:     "No overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{200, 200, 300, 300},
			expected: 0.0,
			epsilon:  0.001,
		},
		{
			name:     "Touching edges",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{100, 0, 200, 100},
			expected: 0.0,
			epsilon:  0.001,
		},
		{
			name:     "Half overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{50, 50, 150, 150},
			expected: 0.142857, // intersection=2500, union=10000+10000-2500=17500, iou=2500/17500=1/7≈0.142857
			epsilon:  0.001,
		},
		{
			name:     "One inside other",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{25, 25, 75, 75},
			expected: 0.25, // intersection=2500, union=10000, iou=2500/10000=0.25
			epsilon:  0.001,
		},
		{
			name:     "Zero-area box against itself",
			r1:       Rect{10, 10, 10, 10},
			r2:       Rect{10, 10, 10, 10},
			expected: 0.0,
			epsilon:  0.001,
		},
		{
			name:     "Zero-area box inside a real box",
			r1:       Rect{50, 50, 50, 90},
			r2:       Rect{0, 0, 100, 100},
			expected: 0.0,
			epsilon:  0.001,
		},
		{
			name:     "Fractional coordinates",
			r1:       Rect{0, 0, 1.5, 1.5},
			r2:       Rect{0.5, 0.5, 2.0, 2.0},
			expected: 0.2857, // intersection=1, union=2.25+2.25-1=3.5, iou=1/3.5
			epsilon:  0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateIoU(tt.r1, tt.r2)
			if math.Abs(float64(result-tt.expected)) > float64(tt.epsilon) {
				t.Errorf("IoU() = %v, expected %v (±%v)", result, tt.expected, tt.epsilon)
			}

			// Test symmetry: IoU(A, B) should equal IoU(B, A)
			reverse := CalculateIoU(tt.r2, tt.r1)
			if math.Abs(float64(result-reverse)) > float64(tt.epsilon) {
				t.Errorf("IoU not symmetric: IoU(A,B)=%v != IoU(B,A)=%v", result, reverse)
			}
		})
	}
}

func TestRectArea(t *testing.T) {
	if got := (Rect{0, 0, 10, 20}).Area(); got != 200 {
		t.Errorf("Area() = %v, expected 200", got)
	}
	if got := (Rect{5, 5, 5, 25}).Area(); got != 0 {
		t.Errorf("zero-width Area() = %v, expected 0", got)
	}
	// Inverted corners count as degenerate, not negative area.
	if got := (Rect{10, 10, 0, 0}).Area(); got != 0 {
		t.Errorf("inverted Area() = %v, expected 0", got)
	}
}
