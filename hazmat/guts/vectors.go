package guts

// TransposedVectors is a buffer of up to 2*MaxDegree chaining values, stored
// word-major: vectors[w][c] is word w of column (chaining value) c. This
// layout lets a backend load word w of several sibling chaining values with
// one contiguous read, instead of gathering scattered bytes per call.
type TransposedVectors struct {
	vectors [8][2 * MaxDegree]uint32
}

// Column returns the 8-word chaining value stored at column c.
func (t *TransposedVectors) Column(c int) CVWords {
	var cv CVWords
	for w := 0; w < 8; w++ {
		cv[w] = t.vectors[w][c]
	}
	return cv
}

// SetColumn writes an 8-word chaining value into column c.
func (t *TransposedVectors) SetColumn(c int, cv CVWords) {
	for w := 0; w < 8; w++ {
		t.vectors[w][c] = cv[w]
	}
}

// ParentNode reassembles the 64-byte parent block for the pair of
// chaining values at columns 2*i and 2*i+1: left child's 8 words followed
// by right child's 8 words, little-endian.
func (t *TransposedVectors) ParentNode(i int) BlockBytes {
	var block BlockBytes
	var words [16]uint32
	for w := 0; w < 8; w++ {
		words[w] = t.vectors[w][2*i]
		words[w+8] = t.vectors[w][2*i+1]
	}
	putWordsLE(block[:], words[:])
	return block
}

// TransposedSplit is a writable view into half of a TransposedVectors
// buffer: columns [offset, offset+degree) of the backing buffer, where
// degree is implied by how the split was constructed. Two splits produced
// by the same Split call never overlap, so they can be written
// independently without reallocating the backing buffer.
type TransposedSplit struct {
	vectors *TransposedVectors
	offset  int
}

// Split returns the left half (columns [0, degree)) and right half
// (columns [degree, 2*degree)) of t as independent write views.
func (t *TransposedVectors) Split(degree int) (left, right TransposedSplit) {
	return TransposedSplit{t, 0}, TransposedSplit{t, degree}
}

// SetColumn writes an 8-word chaining value into column i of this split,
// i.e. column (offset+i) of the backing buffer.
func (s TransposedSplit) SetColumn(i int, cv CVWords) {
	s.vectors.SetColumn(s.offset+i, cv)
}

// Column reads the 8-word chaining value at column i of this split.
func (s TransposedSplit) Column(i int) CVWords {
	return s.vectors.Column(s.offset + i)
}
