package externalapi

// DomainBlock represents a DPoS block
type DomainBlock struct {
	Version              uint32
	Height               uint64
	ID                   *DomainHash
	PreviousBlockID      *DomainHash
	GeneratorPublicKey   string
	Timestamp            int64
	NumberOfTransactions uint32
	PayloadLength        uint32
	PayloadHash          *DomainHash
	TotalAmount          uint64
	TotalFee             uint64
	Reward               uint64
	Signature            []byte
	Transactions         []*DomainTransaction
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainBlock{0, 0, &DomainHash{}, &DomainHash{}, "", 0, 0, 0, &DomainHash{}, 0, 0, 0, []byte{},
	[]*DomainTransaction{}}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	if block == nil {
		return nil
	}
	transactionClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactionClone[i] = tx.Clone()
	}

	return &DomainBlock{
		Version:              block.Version,
		Height:               block.Height,
		ID:                   block.ID.Clone(),
		PreviousBlockID:      block.PreviousBlockID.Clone(),
		GeneratorPublicKey:   block.GeneratorPublicKey,
		Timestamp:            block.Timestamp,
		NumberOfTransactions: block.NumberOfTransactions,
		PayloadLength:        block.PayloadLength,
		PayloadHash:          block.PayloadHash.Clone(),
		TotalAmount:          block.TotalAmount,
		TotalFee:             block.TotalFee,
		Reward:               block.Reward,
		Signature:            cloneBytes(block.Signature),
		Transactions:         transactionClone,
	}
}

// Equal returns whether block equals to other
func (block *DomainBlock) Equal(other *DomainBlock) bool {
	if block == nil || other == nil {
		return block == other
	}

	if block.Version != other.Version ||
		block.Height != other.Height ||
		!block.ID.Equal(other.ID) ||
		!block.PreviousBlockID.Equal(other.PreviousBlockID) ||
		block.GeneratorPublicKey != other.GeneratorPublicKey ||
		block.Timestamp != other.Timestamp ||
		block.NumberOfTransactions != other.NumberOfTransactions ||
		block.PayloadLength != other.PayloadLength ||
		!block.PayloadHash.Equal(other.PayloadHash) ||
		block.TotalAmount != other.TotalAmount ||
		block.TotalFee != other.TotalFee ||
		block.Reward != other.Reward ||
		!bytesEqual(block.Signature, other.Signature) {
		return false
	}

	if len(block.Transactions) != len(other.Transactions) {
		return false
	}
	for i, tx := range block.Transactions {
		if !tx.Equal(other.Transactions[i]) {
			return false
		}
	}

	return true
}

// BlockApplyState is the lifecycle state of a block going through the
// apply pipeline.
type BlockApplyState uint8

const (
	// BlockStateReceived is a block that has not been verified yet
	BlockStateReceived BlockApplyState = iota

	// BlockStateVerified is a block that passed full verification
	BlockStateVerified

	// BlockStateApplying is a block whose ledger ops are being staged
	BlockStateApplying

	// BlockStateCommitted is a block persisted as the new tip
	BlockStateCommitted

	// BlockStateRejected is a block that failed verification or application
	BlockStateRejected
)

var blockApplyStateStrings = map[BlockApplyState]string{
	BlockStateReceived:  "Received",
	BlockStateVerified:  "Verified",
	BlockStateApplying:  "Applying",
	BlockStateCommitted: "Committed",
	BlockStateRejected:  "Rejected",
}

func (s BlockApplyState) String() string {
	return blockApplyStateStrings[s]
}

// ApplyOptions controls the side effects of applying a block
type ApplyOptions struct {
	// Broadcast requests that observers relay the block. It is ignored while
	// the node is syncing.
	Broadcast bool

	// Persist commits the block. When false the block is verified and applied
	// to a throw-away staging area.
	Persist bool
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
