package serialization

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// SerializeBlock serializes the given block together with its transactions
func SerializeBlock(block *externalapi.DomainBlock) []byte {
	var b []byte
	b = appendUint64(b, 1, uint64(block.Version))
	b = appendUint64(b, 2, block.Height)
	b = appendHash(b, 3, block.ID)
	b = appendHash(b, 4, block.PreviousBlockID)
	b = appendString(b, 5, block.GeneratorPublicKey)
	b = appendInt64(b, 6, block.Timestamp)
	b = appendUint64(b, 7, uint64(block.NumberOfTransactions))
	b = appendUint64(b, 8, uint64(block.PayloadLength))
	b = appendHash(b, 9, block.PayloadHash)
	b = appendUint64(b, 10, block.TotalAmount)
	b = appendUint64(b, 11, block.TotalFee)
	b = appendUint64(b, 12, block.Reward)
	b = appendBytes(b, 13, block.Signature)
	for _, transaction := range block.Transactions {
		b = appendMessage(b, 14, appendTransaction(nil, transaction))
	}
	return b
}

// DeserializeBlock deserializes a block serialized by SerializeBlock
func DeserializeBlock(blockBytes []byte) (*externalapi.DomainBlock, error) {
	block := &externalapi.DomainBlock{Transactions: []*externalapi.DomainTransaction{}}
	r := newFieldReader(blockBytes)
	for r.next() {
		switch r.num {
		case 1:
			block.Version = r.uint32()
		case 2:
			block.Height = r.uint64()
		case 3:
			block.ID = r.hash()
		case 4:
			block.PreviousBlockID = r.hash()
		case 5:
			block.GeneratorPublicKey = r.string()
		case 6:
			block.Timestamp = r.int64()
		case 7:
			block.NumberOfTransactions = r.uint32()
		case 8:
			block.PayloadLength = r.uint32()
		case 9:
			block.PayloadHash = r.hash()
		case 10:
			block.TotalAmount = r.uint64()
		case 11:
			block.TotalFee = r.uint64()
		case 12:
			block.Reward = r.uint64()
		case 13:
			block.Signature = r.bytes()
		case 14:
			transactionBytes := r.bytes()
			if r.err != nil {
				break
			}
			transaction, err := deserializeTransaction(transactionBytes)
			if err != nil {
				return nil, err
			}
			block.Transactions = append(block.Transactions, transaction)
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return block, nil
}
