package core

import "testing"

func TestBoxIntersects(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected bool
	}{
		{
			name:     "overlapping boxes",
			a:        NewBox(0, 0, 2, 2),
			b:        NewBox(1, 1, 2, 2),
			expected: true,
		},
		{
			name:     "non-overlapping horizontal",
			a:        NewBox(0, 0, 2, 2),
			b:        NewBox(5, 0, 2, 2),
			expected: false,
		},
		{
			name:     "non-overlapping vertical",
			a:        NewBox(0, 0, 2, 2),
			b:        NewBox(0, 5, 2, 2),
			expected: false,
		},
		{
			name:     "touching edges",
			a:        NewBox(0, 0, 2, 2),
			b:        NewBox(2, 0, 2, 2),
			expected: false,
		},
		{
			name:     "contained box",
			a:        NewBox(5, 5, 10, 10),
			b:        NewBox(5, 5, 1, 1),
			expected: true,
		},
		{
			name:     "fractional overlap",
			a:        NewBox(3.8, 3.2, 1, 1),
			b:        NewBox(3.1, 3.0, 1, 1),
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Intersects(tc.b); got != tc.expected {
				t.Errorf("Intersects() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Intersects(tc.a); got != tc.expected {
				t.Errorf("Intersects() is not symmetric")
			}
		})
	}
}

func TestBoxEdges(t *testing.T) {
	b := NewBox(5, 4, 2, 1)
	if b.Left() != 4 || b.Right() != 6 {
		t.Errorf("horizontal edges = (%v, %v), expected (4, 6)", b.Left(), b.Right())
	}
	if b.Top() != 3.5 || b.Bottom() != 4.5 {
		t.Errorf("vertical edges = (%v, %v), expected (3.5, 4.5)", b.Top(), b.Bottom())
	}
}

func TestBoxInBounds(t *testing.T) {
	tests := []struct {
		name      string
		box       Box
		inclusive bool
		expected  bool
	}{
		{"fully inside", NewBox(5, 5, 1, 1), false, true},
		{"half outside exclusive", NewBox(0, 5, 2, 2), false, false},
		{"half outside inclusive", NewBox(0, 5, 2, 2), true, true},
		{"fully below", NewBox(5, 12, 1, 1), true, false},
		{"fully above", NewBox(5, -2, 1, 1), true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.box.InBounds(10, 10, tc.inclusive); got != tc.expected {
				t.Errorf("InBounds() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 5, 5)

	tests := []struct {
		x, y     int
		expected bool
	}{
		{10, 10, true},
		{14, 14, true},
		{15, 15, false},
		{9, 10, false},
	}

	for _, tc := range tests {
		if got := r.Contains(tc.x, tc.y); got != tc.expected {
			t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}

	if got := ClampF(0.5, 1, 9); got != 1 {
		t.Errorf("ClampF(0.5, 1, 9) = %v, expected 1", got)
	}
}

func TestFloor(t *testing.T) {
	tests := []struct {
		in       float64
		expected int
	}{
		{2.7, 2},
		{0, 0},
		{-0.5, -1},
	}
	for _, tc := range tests {
		if got := Floor(tc.in); got != tc.expected {
			t.Errorf("Floor(%v) = %d, expected %d", tc.in, got, tc.expected)
		}
	}
}
