package renderer

import "fmt"

// GPUElement is a fixed-size record with a std430/std140-compatible byte layout.
type GPUElement interface {
	// Size returns the packed size of one record in bytes.
	Size() int

	// Marshal writes the record into dst, which is exactly Size() bytes long.
	Marshal(dst []byte)
}

// TypedBuffer is a Buffer holding an array of GPU records of one type.
// Element writes go through Map, which commits the whole array when the callback returns.
type TypedBuffer[T GPUElement] struct {
	Buffer
	elements []T
}

// NewTypedBuffer creates a buffer holding count elements of T.
//
// Parameters:
//   - ctx: the render context owning the buffer
//   - label: the buffer label
//   - usage: the usage family, usually uniform or storage
//   - count: the number of elements, at least 1
//
// Returns:
//   - *TypedBuffer[T]: the typed buffer with zero-valued elements
func NewTypedBuffer[T GPUElement](ctx RenderContext, label string, usage BufferUsage, count int) *TypedBuffer[T] {
	if count < 1 {
		panic(fmt.Sprintf("renderer: typed buffer %q needs at least one element, got %d", label, count))
	}
	var zero T
	if zero.Size() <= 0 {
		panic(fmt.Sprintf("renderer: typed buffer %q has a zero-sized element type", label))
	}

	return &TypedBuffer[T]{
		Buffer:   ctx.NewBuffer(label, usage, zero.Size()*count),
		elements: make([]T, count),
	}
}

// Len returns the number of elements in the buffer.
func (t *TypedBuffer[T]) Len() int {
	return len(t.elements)
}

// Map gives fn a typed view of the elements and uploads them once fn returns.
// The view must not be retained after fn returns.
//
// Parameters:
//   - fn: the callback assigning elements
func (t *TypedBuffer[T]) Map(fn func(elements []T)) {
	fn(t.elements)

	var zero T
	stride := zero.Size()
	data := make([]byte, stride*len(t.elements))
	for i, e := range t.elements {
		e.Marshal(data[i*stride : (i+1)*stride])
	}
	t.Write(data)
}

// At returns a copy of the element at index i as last committed by Map.
func (t *TypedBuffer[T]) At(i int) T {
	return t.elements[i]
}
