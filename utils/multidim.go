package utils

// MultiDim maps between points in an n-dimensional volume and indexes into the flat slice that
// stores it.
//
// The first dimension changes fastest: for dims {width, height, depth}, the values are stored
// as depth{height{width, width}, height{width, width}}, and points are given as [x, y, z].
// A feature map volume stored channel-major and then row-major is therefore described by
// {columns, rows, channels}.
//
// The fields are exported for encoding, but should not be altered once the MultiDim has been
// constructed.
type MultiDim struct {
	// the width, height, depth, etc. of each dimension
	Dims []int

	// the number of values encapsulated by a 'set' of this dimension
	// -- Sizes[0] = Dims[0]; Sizes[len-1] is the total size
	Sizes []int
}

// NewMultiDim returns the MultiDim for the given dimensions. The dimensions are copied.
func NewMultiDim(dims []int) *MultiDim {
	m := &MultiDim{
		Dims:  make([]int, len(dims)),
		Sizes: make([]int, len(dims)),
	}
	copy(m.Dims, dims)

	m.Sizes[0] = m.Dims[0]
	for i := 1; i < len(m.Sizes); i++ {
		m.Sizes[i] = m.Sizes[i-1] * m.Dims[i]
	}

	return m
}

// Index returns the flat index of the given point. The point must have one coordinate per
// dimension, in the same order as the dimensions were given.
func (m *MultiDim) Index(point []int) int {
	index := point[0]
	for i := 1; i < len(m.Sizes); i++ {
		index += point[i] * m.Sizes[i-1]
	}

	return index
}

// Point returns the point at the given flat index. The index is assumed to be in bounds.
func (m *MultiDim) Point(index int) []int {
	p := make([]int, len(m.Dims))
	for i := len(p) - 1; i >= 1; i-- { // doesn't go to 0
		p[i] = index / m.Sizes[i-1]
		index = index % m.Sizes[i-1]
	}

	p[0] = index
	return p
}

// Size returns the total number of values in the volume.
func (m *MultiDim) Size() int {
	return m.Sizes[len(m.Sizes)-1]
}

// Dim returns the length of dimension d.
func (m *MultiDim) Dim(d int) int {
	return m.Dims[d]
}

// Increment moves the point one step forward, in storage order. It returns false once the point
// has moved past the end of the volume.
func (m *MultiDim) Increment(point []int) bool {
	for i := range point {
		point[i]++
		if point[i] < m.Dims[i] {
			break
		}

		if i == len(point)-1 {
			return false
		}

		point[i] = 0
	}

	return true
}
