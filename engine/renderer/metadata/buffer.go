package metadata

/** @brief The binding point of a device buffer. */
type BufferTarget int

const (
	/** @brief Vertex attribute data. */
	BufferTargetArray BufferTarget = iota
	/** @brief Index data. */
	BufferTargetElementArray
)

/** @brief Element type of attribute and index data as seen by the device. */
type DataType int

const (
	DataTypeByte          DataType = 5120
	DataTypeUnsignedByte  DataType = 5121
	DataTypeShort         DataType = 5122
	DataTypeUnsignedShort DataType = 5123
	DataTypeInt           DataType = 5124
	DataTypeUnsignedInt   DataType = 5125
	DataTypeFloat         DataType = 5126
)

// Size returns the byte width of one element.
func (d DataType) Size() int {
	switch d {
	case DataTypeByte, DataTypeUnsignedByte:
		return 1
	case DataTypeShort, DataTypeUnsignedShort:
		return 2
	default:
		return 4
	}
}

/**
 * @brief A buffer living on the device.
 */
type Buffer struct {
	/** @brief The device handle. */
	ID uint32
	/** @brief Where the buffer is bound. */
	Target BufferTarget
	/** @brief Element type of the uploaded data. */
	DataType DataType
	/** @brief Number of elements uploaded. */
	ElementCount uint32
	/** @brief Size in bytes. */
	Size uint64
}

/**
 * @brief A vertex array object: the attribute layout of one geometry.
 */
type VertexArray struct {
	ID uint32
}

/**
 * @brief Describes how a buffer feeds one attribute slot.
 */
type VertexAttribute struct {
	/** @brief The attribute slot. */
	Location uint32
	/** @brief Components per vertex (1-4). */
	Size int32
	/** @brief Component type. */
	DataType DataType
	/** @brief Byte stride between consecutive elements, 0 for tightly packed. */
	Stride int32
	/** @brief Byte offset of the first component. */
	Offset int
	/** @brief 0 advances per vertex, 1 per instance. */
	Divisor uint32
}
