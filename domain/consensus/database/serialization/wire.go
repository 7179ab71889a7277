package serialization

import (
	"math"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are encoded in the protobuf wire format. Zero values are omitted,
// so decoding a missing field yields the zero value.

func appendUint64(b []byte, num protowire.Number, value uint64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, value)
}

func appendInt64(b []byte, num protowire.Number, value int64) []byte {
	if value == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(value))
}

func appendBool(b []byte, num protowire.Number, value bool) []byte {
	if !value {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(value))
}

func appendString(b []byte, num protowire.Number, value string) []byte {
	if value == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, value)
}

func appendStrings(b []byte, num protowire.Number, values []string) []byte {
	for _, value := range values {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, value)
	}
	return b
}

func appendBytes(b []byte, num protowire.Number, value []byte) []byte {
	if len(value) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, value)
}

func appendMessage(b []byte, num protowire.Number, message []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, message)
}

func appendHash(b []byte, num protowire.Number, hash *externalapi.DomainHash) []byte {
	if hash == nil {
		return b
	}
	return appendMessage(b, num, hash.ByteSlice())
}

// fieldReader walks the fields of an encoded record. The first decoding
// error stops the walk and is kept in err.
type fieldReader struct {
	b   []byte
	num protowire.Number
	typ protowire.Type
	err error
}

func newFieldReader(b []byte) *fieldReader {
	return &fieldReader{b: b}
}

func (r *fieldReader) next() bool {
	if r.err != nil || len(r.b) == 0 {
		return false
	}
	num, typ, n := protowire.ConsumeTag(r.b)
	if n < 0 {
		r.err = errors.Wrap(protowire.ParseError(n), "failed to read field tag")
		return false
	}
	r.b = r.b[n:]
	r.num, r.typ = num, typ
	return true
}

func (r *fieldReader) expectType(typ protowire.Type) bool {
	if r.err != nil {
		return false
	}
	if r.typ != typ {
		r.err = errors.Errorf("field %d has wire type %d, expected %d", r.num, r.typ, typ)
		return false
	}
	return true
}

func (r *fieldReader) uint64() uint64 {
	if !r.expectType(protowire.VarintType) {
		return 0
	}
	value, n := protowire.ConsumeVarint(r.b)
	if n < 0 {
		r.err = errors.Wrapf(protowire.ParseError(n), "failed to read field %d", r.num)
		return 0
	}
	r.b = r.b[n:]
	return value
}

func (r *fieldReader) uint32() uint32 {
	value := r.uint64()
	if value > math.MaxUint32 {
		r.err = errors.Errorf("field %d overflows uint32", r.num)
		return 0
	}
	return uint32(value)
}

func (r *fieldReader) int64() int64 {
	return protowire.DecodeZigZag(r.uint64())
}

func (r *fieldReader) bool() bool {
	return protowire.DecodeBool(r.uint64())
}

func (r *fieldReader) bytes() []byte {
	if !r.expectType(protowire.BytesType) {
		return nil
	}
	value, n := protowire.ConsumeBytes(r.b)
	if n < 0 {
		r.err = errors.Wrapf(protowire.ParseError(n), "failed to read field %d", r.num)
		return nil
	}
	r.b = r.b[n:]
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy
}

func (r *fieldReader) string() string {
	return string(r.bytes())
}

func (r *fieldReader) hash() *externalapi.DomainHash {
	hashBytes := r.bytes()
	if r.err != nil {
		return nil
	}
	hash, err := externalapi.NewDomainHashFromByteSlice(hashBytes)
	if err != nil {
		r.err = errors.Wrapf(err, "failed to read field %d", r.num)
		return nil
	}
	return hash
}

func (r *fieldReader) skip() {
	n := protowire.ConsumeFieldValue(r.num, r.typ, r.b)
	if n < 0 {
		r.err = errors.Wrapf(protowire.ParseError(n), "failed to skip field %d", r.num)
		return
	}
	r.b = r.b[n:]
}
