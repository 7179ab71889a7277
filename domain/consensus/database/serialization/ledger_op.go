package serialization

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

func appendAccountDiff(b []byte, diff *externalapi.AccountDiff) []byte {
	b = appendInt64(b, 1, diff.Balance)
	b = appendInt64(b, 2, diff.VoteWeight)
	b = appendInt64(b, 3, diff.ProducedBlocks)
	b = appendInt64(b, 4, diff.MissedBlocks)
	b = appendInt64(b, 5, diff.Fees)
	b = appendInt64(b, 6, diff.Rewards)
	b = appendString(b, 7, diff.PublicKey)
	b = appendString(b, 8, diff.SecondPublicKey)
	b = appendString(b, 9, diff.Username)
	b = appendStrings(b, 10, diff.VotesAdded)
	b = appendStrings(b, 11, diff.VotesRemoved)
	b = appendStrings(b, 12, diff.MultisignaturesAdded)
	b = appendUint64(b, 13, uint64(diff.MultiMin))
	b = appendUint64(b, 14, uint64(diff.MultiLifetime))
	return b
}

func deserializeAccountDiff(diffBytes []byte) (*externalapi.AccountDiff, error) {
	diff := &externalapi.AccountDiff{}
	r := newFieldReader(diffBytes)
	for r.next() {
		switch r.num {
		case 1:
			diff.Balance = r.int64()
		case 2:
			diff.VoteWeight = r.int64()
		case 3:
			diff.ProducedBlocks = r.int64()
		case 4:
			diff.MissedBlocks = r.int64()
		case 5:
			diff.Fees = r.int64()
		case 6:
			diff.Rewards = r.int64()
		case 7:
			diff.PublicKey = r.string()
		case 8:
			diff.SecondPublicKey = r.string()
		case 9:
			diff.Username = r.string()
		case 10:
			diff.VotesAdded = append(diff.VotesAdded, r.string())
		case 11:
			diff.VotesRemoved = append(diff.VotesRemoved, r.string())
		case 12:
			diff.MultisignaturesAdded = append(diff.MultisignaturesAdded, r.string())
		case 13:
			diff.MultiMin = r.uint32()
		case 14:
			diff.MultiLifetime = r.uint32()
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return diff, nil
}

func appendLedgerOp(b []byte, op *externalapi.LedgerOp) []byte {
	b = appendString(b, 1, op.Address)
	if op.Diff != nil {
		b = appendMessage(b, 2, appendAccountDiff(nil, op.Diff))
	}
	if op.Previous != nil {
		b = appendMessage(b, 3, appendAccount(nil, op.Previous))
	}
	return b
}

func deserializeLedgerOp(opBytes []byte) (*externalapi.LedgerOp, error) {
	op := &externalapi.LedgerOp{}
	r := newFieldReader(opBytes)
	for r.next() {
		switch r.num {
		case 1:
			op.Address = r.string()
		case 2:
			diffBytes := r.bytes()
			if r.err != nil {
				break
			}
			diff, err := deserializeAccountDiff(diffBytes)
			if err != nil {
				return nil, err
			}
			op.Diff = diff
		case 3:
			accountBytes := r.bytes()
			if r.err != nil {
				break
			}
			previous, err := DeserializeAccount(accountBytes)
			if err != nil {
				return nil, err
			}
			op.Previous = previous
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return op, nil
}

// SerializeLedgerOps serializes the given ordered ledger ops
func SerializeLedgerOps(ops []*externalapi.LedgerOp) []byte {
	var b []byte
	for _, op := range ops {
		b = appendMessage(b, 1, appendLedgerOp(nil, op))
	}
	return b
}

// DeserializeLedgerOps deserializes ledger ops serialized by
// SerializeLedgerOps, keeping their order
func DeserializeLedgerOps(opsBytes []byte) ([]*externalapi.LedgerOp, error) {
	ops := []*externalapi.LedgerOp{}
	r := newFieldReader(opsBytes)
	for r.next() {
		if r.num != 1 {
			r.skip()
			continue
		}
		opBytes := r.bytes()
		if r.err != nil {
			break
		}
		op, err := deserializeLedgerOp(opBytes)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if r.err != nil {
		return nil, r.err
	}
	return ops, nil
}
