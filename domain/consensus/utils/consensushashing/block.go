package consensushashing

import (
	"io"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/hashes"
	"github.com/dposnet/dposd/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// BlockID returns the id of the given block: the hash of its header
// including the generator signature
func BlockID(block *externalapi.DomainBlock) *externalapi.DomainHash {
	writer := hashes.NewBlockIDWriter()
	err := serializeHeader(writer, block)
	if err == nil {
		err = serialization.WriteElement(writer, block.Signature)
	}
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}

	return writer.Finalize()
}

// BlockSigningHash returns the hash the block generator signs: the hash of
// the header without the signature
func BlockSigningHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	writer := hashes.NewBlockSigningHashWriter()
	err := serializeHeader(writer, block)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}

	return writer.Finalize()
}

func serializeHeader(w io.Writer, block *externalapi.DomainBlock) error {
	return serialization.WriteElements(w, block.Version, block.Height, block.Timestamp, block.PreviousBlockID,
		block.NumberOfTransactions, block.TotalAmount, block.TotalFee, block.Reward, block.PayloadLength,
		block.PayloadHash, block.GeneratorPublicKey)
}

// PayloadHash returns the hash of the concatenated bytes of the given
// transactions, in order
func PayloadHash(transactions []*externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewPayloadHashWriter()
	for _, transaction := range transactions {
		writer.InfallibleWrite(TransactionBytes(transaction))
	}
	return writer.Finalize()
}

// PayloadLength returns the total length of the bytes of the given
// transactions
func PayloadLength(transactions []*externalapi.DomainTransaction) uint32 {
	length := uint32(0)
	for _, transaction := range transactions {
		length += uint32(len(TransactionBytes(transaction)))
	}
	return length
}
