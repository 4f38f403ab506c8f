package fitsfile

// planDims derives the (width, height, depth) triple used by the row flip
// from an array's ordered dimension extents.  Ranks above three degenerate
// to (1, 1, 1), which turns the flip into a plain copy; a full N-D
// transpose of higher-rank arrays is deliberately not attempted.
func planDims(dims []int) (w, h, d int) {
	switch len(dims) {
	case 1:
		return dims[0], 1, 1
	case 2:
		return dims[0], dims[1], 1
	case 3:
		return dims[0], dims[1], dims[2]
	default:
		return 1, 1, 1
	}
}

// numElems is the true flattened element count, the product of all
// extents.  It is computed independently of planDims; for ranks above
// three the two intentionally disagree, and the raw write always covers
// numElems elements.
func numElems(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}
