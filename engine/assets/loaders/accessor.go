package loaders

import (
	"encoding/binary"
	gomath "math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/spaghettifunk/bolt/engine/core"
)

/** @brief Numeric component type of an accessor, using the GL codes. */
type ComponentType int

const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentInt           ComponentType = 5124
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentInt, ComponentUnsignedInt, ComponentFloat:
		return 4
	}
	return 0
}

var componentCounts = map[string]int{
	"SCALAR": 1,
	"VEC2":   2,
	"VEC3":   3,
	"VEC4":   4,
	"MAT2":   4,
	"MAT3":   9,
	"MAT4":   16,
}

// ComponentCount returns the number of components per element, 0 when unknown.
func ComponentCount(accessorType string) int {
	return componentCounts[accessorType]
}

/** @brief The decoded values of an accessor, in their stored type. */
type TypedArray interface {
	Len() int
	ComponentType() ComponentType
	// Float32s converts every value as is.
	Float32s() []float32
	// Normalized maps integer values to [0,1] or [-1,1].
	Normalized() []float32
	Uint32s() []uint32

	set(i int, b []byte)
}

type (
	Int8Array    []int8
	Uint8Array   []uint8
	Int16Array   []int16
	Uint16Array  []uint16
	Int32Array   []int32
	Uint32Array  []uint32
	Float32Array []float32
)

type number interface {
	constraints.Integer | constraints.Float
}

func convert[To, From number](values []From) []To {
	out := make([]To, len(values))
	for i, v := range values {
		out[i] = To(v)
	}
	return out
}

func normalize[From constraints.Integer](values []From, limit float32) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		f := float32(v) / limit
		if f < -1 {
			f = -1
		}
		out[i] = f
	}
	return out
}

func (a Int8Array) Len() int                     { return len(a) }
func (a Int8Array) ComponentType() ComponentType { return ComponentByte }
func (a Int8Array) Float32s() []float32          { return convert[float32](a) }
func (a Int8Array) Normalized() []float32        { return normalize(a, 127) }
func (a Int8Array) Uint32s() []uint32            { return convert[uint32](a) }
func (a Int8Array) set(i int, b []byte)          { a[i] = int8(b[0]) }

func (a Uint8Array) Len() int                     { return len(a) }
func (a Uint8Array) ComponentType() ComponentType { return ComponentUnsignedByte }
func (a Uint8Array) Float32s() []float32          { return convert[float32](a) }
func (a Uint8Array) Normalized() []float32        { return normalize(a, 255) }
func (a Uint8Array) Uint32s() []uint32            { return convert[uint32](a) }
func (a Uint8Array) set(i int, b []byte)          { a[i] = b[0] }

func (a Int16Array) Len() int                     { return len(a) }
func (a Int16Array) ComponentType() ComponentType { return ComponentShort }
func (a Int16Array) Float32s() []float32          { return convert[float32](a) }
func (a Int16Array) Normalized() []float32        { return normalize(a, 32767) }
func (a Int16Array) Uint32s() []uint32            { return convert[uint32](a) }
func (a Int16Array) set(i int, b []byte)          { a[i] = int16(binary.LittleEndian.Uint16(b)) }

func (a Uint16Array) Len() int                     { return len(a) }
func (a Uint16Array) ComponentType() ComponentType { return ComponentUnsignedShort }
func (a Uint16Array) Float32s() []float32          { return convert[float32](a) }
func (a Uint16Array) Normalized() []float32        { return normalize(a, 65535) }
func (a Uint16Array) Uint32s() []uint32            { return convert[uint32](a) }
func (a Uint16Array) set(i int, b []byte)          { a[i] = binary.LittleEndian.Uint16(b) }

func (a Int32Array) Len() int                     { return len(a) }
func (a Int32Array) ComponentType() ComponentType { return ComponentInt }
func (a Int32Array) Float32s() []float32          { return convert[float32](a) }
func (a Int32Array) Normalized() []float32        { return normalize(a, gomath.MaxInt32) }
func (a Int32Array) Uint32s() []uint32            { return convert[uint32](a) }
func (a Int32Array) set(i int, b []byte)          { a[i] = int32(binary.LittleEndian.Uint32(b)) }

func (a Uint32Array) Len() int                     { return len(a) }
func (a Uint32Array) ComponentType() ComponentType { return ComponentUnsignedInt }
func (a Uint32Array) Float32s() []float32          { return convert[float32](a) }
func (a Uint32Array) Normalized() []float32        { return normalize(a, gomath.MaxUint32) }
func (a Uint32Array) Uint32s() []uint32            { return a }
func (a Uint32Array) set(i int, b []byte)          { a[i] = binary.LittleEndian.Uint32(b) }

func (a Float32Array) Len() int                     { return len(a) }
func (a Float32Array) ComponentType() ComponentType { return ComponentFloat }
func (a Float32Array) Float32s() []float32          { return a }
func (a Float32Array) Normalized() []float32        { return a }
func (a Float32Array) Uint32s() []uint32            { return convert[uint32](a) }
func (a Float32Array) set(i int, b []byte) {
	a[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(b))
}

var arrayReaders = map[ComponentType]func(n int) TypedArray{
	ComponentByte:          func(n int) TypedArray { return make(Int8Array, n) },
	ComponentUnsignedByte:  func(n int) TypedArray { return make(Uint8Array, n) },
	ComponentShort:         func(n int) TypedArray { return make(Int16Array, n) },
	ComponentUnsignedShort: func(n int) TypedArray { return make(Uint16Array, n) },
	ComponentInt:           func(n int) TypedArray { return make(Int32Array, n) },
	ComponentUnsignedInt:   func(n int) TypedArray { return make(Uint32Array, n) },
	ComponentFloat:         func(n int) TypedArray { return make(Float32Array, n) },
}

/**
 * @brief Reads count elements of accessorType from buffer starting at
 * offset. stride is the distance between elements, 0 for tightly packed.
 * An unknown component type is read as float.
 */
func ReadAccessor(buffer []byte, offset, stride int, componentType ComponentType, accessorType string, count int) (TypedArray, error) {
	components := ComponentCount(accessorType)
	if components == 0 {
		return nil, errors.Wrapf(core.ErrMissingData, "unknown accessor type '%s'", accessorType)
	}
	newArray, ok := arrayReaders[componentType]
	if !ok {
		core.LogWarn("unknown component type %d, reading as float", componentType)
		componentType = ComponentFloat
		newArray = arrayReaders[ComponentFloat]
	}
	size := componentType.Size()
	elementSize := size * components
	if stride == 0 {
		stride = elementSize
	}
	if offset < 0 || count < 0 || stride < elementSize {
		return nil, errors.Wrapf(core.ErrMissingData, "invalid accessor layout offset=%d stride=%d count=%d", offset, stride, count)
	}
	if count > 0 {
		// the last element must end inside the buffer
		available := len(buffer) - offset
		if available < elementSize || count-1 > (available-elementSize)/stride {
			return nil, errors.Wrapf(core.ErrMissingData, "%d elements of %d bytes at offset %d exceed buffer of %d bytes",
				count, stride, offset, len(buffer))
		}
	}

	array := newArray(count * components)
	for i := 0; i < count; i++ {
		base := offset + i*stride
		for c := 0; c < components; c++ {
			at := base + c*size
			array.set(i*components+c, buffer[at:at+size])
		}
	}
	return array, nil
}
