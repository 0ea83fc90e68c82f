package loaders

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
)

const (
	glbMagic      uint32 = 0x46546C67 // "glTF"
	glbVersion    uint32 = 2
	chunkTypeJSON uint32 = 0x4E4F534A // "JSON"
	chunkTypeBIN  uint32 = 0x004E4942 // "BIN\0"

	glbHeaderSize      = 12
	glbChunkHeaderSize = 8
)

/** @brief The two chunks of a binary glTF file. BIN is nil when absent. */
type Container struct {
	JSON []byte
	BIN  []byte
}

// IsContainer reports whether data starts with the binary glTF magic.
func IsContainer(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic
}

/**
 * @brief Splits a binary glTF file into its JSON and BIN chunks. A bad
 * magic, version or chunk type fails with ErrContainerFormat.
 */
func DecodeContainer(data []byte) (*Container, error) {
	if len(data) < glbHeaderSize+glbChunkHeaderSize {
		return nil, containerError("header", errors.Errorf("%d bytes is too short", len(data)))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != glbMagic {
		return nil, containerError("header", errors.Errorf("bad magic 0x%08X", magic))
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != glbVersion {
		return nil, containerError("header", errors.Errorf("unsupported version %d", version))
	}
	total := int(binary.LittleEndian.Uint32(data[8:12]))
	if total > len(data) || total < glbHeaderSize {
		// the length field is informational, trust the bytes we have
		core.LogWarn("glb declares %d bytes but %d were read", total, len(data))
		total = len(data)
	}

	jsonChunk, next, err := readChunk(data, glbHeaderSize, total, chunkTypeJSON)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(jsonChunk) {
		return nil, containerError("json chunk", errors.New("payload is not valid UTF-8"))
	}
	container := &Container{JSON: jsonChunk}

	if next+glbChunkHeaderSize <= total {
		binChunk, _, err := readChunk(data, next, total, chunkTypeBIN)
		if err != nil {
			return nil, err
		}
		container.BIN = binChunk
	}
	return container, nil
}

func readChunk(data []byte, offset, total int, expected uint32) ([]byte, int, error) {
	if offset+glbChunkHeaderSize > total {
		return nil, 0, containerError("chunk", errors.Errorf("missing chunk header at %d", offset))
	}
	length := binary.LittleEndian.Uint32(data[offset : offset+4])
	chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
	if chunkType != expected {
		return nil, 0, containerError("chunk", errors.Errorf("chunk type 0x%08X at %d, expected 0x%08X", chunkType, offset, expected))
	}
	start := offset + glbChunkHeaderSize
	if uint64(start)+uint64(length) > uint64(total) {
		return nil, 0, containerError("chunk", errors.Errorf("chunk of %d bytes at %d exceeds container", length, offset))
	}
	end := start + int(length)
	return data[start:end], end, nil
}

func containerError(op string, err error) error {
	return core.NewImportError(core.ErrContainerFormat, op, err)
}

/**
 * @brief Builds a binary glTF file. JSON is padded with spaces and BIN with
 * zeros to 4-byte boundaries; decoding returns the padded payloads.
 */
func EncodeContainer(jsonChunk, binChunk []byte) []byte {
	jsonPadded := pad(jsonChunk, ' ')
	total := glbHeaderSize + glbChunkHeaderSize + len(jsonPadded)
	var binPadded []byte
	if binChunk != nil {
		binPadded = pad(binChunk, 0)
		total += glbChunkHeaderSize + len(binPadded)
	}

	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, glbVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(jsonPadded)))
	out = binary.LittleEndian.AppendUint32(out, chunkTypeJSON)
	out = append(out, jsonPadded...)
	if binChunk != nil {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(binPadded)))
		out = binary.LittleEndian.AppendUint32(out, chunkTypeBIN)
		out = append(out, binPadded...)
	}
	return out
}

func pad(data []byte, fill byte) []byte {
	padded := append([]byte(nil), data...)
	for len(padded)%4 != 0 {
		padded = append(padded, fill)
	}
	return padded
}
