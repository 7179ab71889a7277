package serialization

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// SerializeRoundSnapshot serializes the given round snapshot
func SerializeRoundSnapshot(snapshot *externalapi.RoundSnapshot) []byte {
	var b []byte
	b = appendUint64(b, 1, snapshot.Round)
	b = appendUint64(b, 2, uint64(snapshot.State))
	b = appendStrings(b, 3, snapshot.Delegates)
	for _, forger := range snapshot.Distribution {
		distribution := appendString(nil, 1, forger.PublicKey)
		distribution = appendUint64(distribution, 2, forger.Fee)
		distribution = appendUint64(distribution, 3, forger.Reward)
		distribution = appendUint64(distribution, 4, forger.BlocksProduced)
		b = appendMessage(b, 4, distribution)
	}
	b = appendStrings(b, 5, snapshot.Missed)
	return b
}

// DeserializeRoundSnapshot deserializes a round snapshot serialized by
// SerializeRoundSnapshot
func DeserializeRoundSnapshot(snapshotBytes []byte) (*externalapi.RoundSnapshot, error) {
	snapshot := &externalapi.RoundSnapshot{}
	r := newFieldReader(snapshotBytes)
	for r.next() {
		switch r.num {
		case 1:
			snapshot.Round = r.uint64()
		case 2:
			snapshot.State = externalapi.RoundState(r.uint32())
		case 3:
			snapshot.Delegates = append(snapshot.Delegates, r.string())
		case 4:
			forger := &externalapi.ForgerDistribution{}
			inner := newFieldReader(r.bytes())
			for inner.next() {
				switch inner.num {
				case 1:
					forger.PublicKey = inner.string()
				case 2:
					forger.Fee = inner.uint64()
				case 3:
					forger.Reward = inner.uint64()
				case 4:
					forger.BlocksProduced = inner.uint64()
				default:
					inner.skip()
				}
			}
			if inner.err != nil {
				return nil, inner.err
			}
			snapshot.Distribution = append(snapshot.Distribution, forger)
		case 5:
			snapshot.Missed = append(snapshot.Missed, r.string())
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return snapshot, nil
}
