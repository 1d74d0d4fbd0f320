package guts

import "testing"

// TestTransposedVectorsColumnRoundTrip checks that SetColumn followed by
// Column recovers the chaining value unchanged.
func TestTransposedVectorsColumnRoundTrip(t *testing.T) {
	var v TransposedVectors
	cv := CVWords{1, 2, 3, 4, 5, 6, 7, 8}
	v.SetColumn(3, cv)
	if got := v.Column(3); got != cv {
		t.Fatalf("got %v, want %v", got, cv)
	}
}

// TestTransposedVectorsParentNode checks that ParentNode assembles the
// left child's words followed by the right child's words, little-endian.
func TestTransposedVectorsParentNode(t *testing.T) {
	var v TransposedVectors
	left := CVWords{1, 2, 3, 4, 5, 6, 7, 8}
	right := CVWords{9, 10, 11, 12, 13, 14, 15, 16}
	v.SetColumn(0, left)
	v.SetColumn(1, right)

	block := v.ParentNode(0)
	words := WordsFromBlock(&block)
	for i := 0; i < 8; i++ {
		if words[i] != left[i] {
			t.Errorf("word %d: got %d, want left[%d]=%d", i, words[i], i, left[i])
		}
		if words[i+8] != right[i] {
			t.Errorf("word %d: got %d, want right[%d]=%d", i+8, words[i+8], i, right[i])
		}
	}
}

// TestTransposedSplitNonOverlapping checks that the left and right splits
// produced by Split write to disjoint columns: writing a canary into every
// column of one split must never be visible through the other.
func TestTransposedSplitNonOverlapping(t *testing.T) {
	const degree = 4
	var v TransposedVectors
	left, right := v.Split(degree)

	leftCanary := CVWords{0xdead, 0xdead, 0xdead, 0xdead, 0xdead, 0xdead, 0xdead, 0xdead}
	rightCanary := CVWords{0xbeef, 0xbeef, 0xbeef, 0xbeef, 0xbeef, 0xbeef, 0xbeef, 0xbeef}

	for i := 0; i < degree; i++ {
		left.SetColumn(i, leftCanary)
	}
	for i := 0; i < degree; i++ {
		right.SetColumn(i, rightCanary)
	}

	for i := 0; i < degree; i++ {
		if got := left.Column(i); got != leftCanary {
			t.Errorf("left column %d: got %v, want %v (overwritten by right split)", i, got, leftCanary)
		}
		if got := right.Column(i); got != rightCanary {
			t.Errorf("right column %d: got %v, want %v (overwritten by left split)", i, got, rightCanary)
		}
	}

	// And the backing buffer itself should show exactly this layout.
	for i := 0; i < degree; i++ {
		if got := v.Column(i); got != leftCanary {
			t.Errorf("backing column %d: got %v, want left canary", i, got)
		}
		if got := v.Column(degree + i); got != rightCanary {
			t.Errorf("backing column %d: got %v, want right canary", degree+i, got)
		}
	}
}
