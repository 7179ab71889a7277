package serialization

import (
	"encoding/binary"
	"io"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

// WriteElement writes the little endian representation of element to w.
// Byte slices and strings are prefixed with their uint32 length, and a nil
// hash is written as 32 zero bytes.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		_, err := w.Write([]byte{e})
		return err

	case bool:
		if e {
			_, err := w.Write([]byte{0x01})
			return err
		}
		_, err := w.Write([]byte{0x00})
		return err

	case uint32:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case uint64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], e)
		_, err := w.Write(buf[:])
		return err

	case int64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(e))
		_, err := w.Write(buf[:])
		return err

	case *externalapi.DomainHash:
		if e == nil {
			_, err := w.Write(make([]byte, externalapi.DomainHashSize))
			return err
		}
		_, err := w.Write(e.ByteSlice())
		return err

	case []byte:
		err := WriteElement(w, uint32(len(e)))
		if err != nil {
			return err
		}
		_, err = w.Write(e)
		return err

	case string:
		return WriteElement(w, []byte(e))

	case []string:
		err := WriteElement(w, uint32(len(e)))
		if err != nil {
			return err
		}
		for _, s := range e {
			err := WriteElement(w, s)
			if err != nil {
				return err
			}
		}
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// WriteElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}
