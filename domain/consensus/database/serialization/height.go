package serialization

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// SerializeHeight encodes a height big-endian so that keys built from it
// sort by height
func SerializeHeight(height uint64) []byte {
	heightBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(heightBytes, height)
	return heightBytes
}

// DeserializeHeight decodes a height encoded by SerializeHeight
func DeserializeHeight(heightBytes []byte) (uint64, error) {
	if len(heightBytes) != 8 {
		return 0, errors.Errorf("height is expected to be 8 bytes long, got %d", len(heightBytes))
	}
	return binary.BigEndian.Uint64(heightBytes), nil
}
