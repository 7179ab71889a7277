package externalapi

// Account is the ledger state of a single address.
// VoteWeight is the sum of the balances of every account voting for this
// delegate. It is derived by the account store and never set directly.
type Account struct {
	Address         string
	PublicKey       string
	SecondPublicKey string
	Balance         uint64
	VoteWeight      int64
	IsDelegate      bool
	Username        string
	ProducedBlocks  uint64
	MissedBlocks    uint64
	Fees            uint64
	Rewards         uint64
	Votes           []string
	Multisignatures []string
	MultiMin        uint32
	MultiLifetime   uint32
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = Account{"", "", "", 0, 0, false, "", 0, 0, 0, 0, []string{}, []string{}, 0, 0}

// NewAccount returns an empty account for the given address.
func NewAccount(address string) *Account {
	return &Account{Address: address}
}

// Clone returns a deep copy of the account
func (account *Account) Clone() *Account {
	if account == nil {
		return nil
	}
	clone := *account
	clone.Votes = cloneStrings(account.Votes)
	clone.Multisignatures = cloneStrings(account.Multisignatures)
	return &clone
}

// Equal returns whether account equals to other
func (account *Account) Equal(other *Account) bool {
	if account == nil || other == nil {
		return account == other
	}
	if account.Address != other.Address ||
		account.PublicKey != other.PublicKey ||
		account.SecondPublicKey != other.SecondPublicKey ||
		account.Balance != other.Balance ||
		account.VoteWeight != other.VoteWeight ||
		account.IsDelegate != other.IsDelegate ||
		account.Username != other.Username ||
		account.ProducedBlocks != other.ProducedBlocks ||
		account.MissedBlocks != other.MissedBlocks ||
		account.Fees != other.Fees ||
		account.Rewards != other.Rewards ||
		account.MultiMin != other.MultiMin ||
		account.MultiLifetime != other.MultiLifetime {
		return false
	}
	return stringsEqual(account.Votes, other.Votes) &&
		stringsEqual(account.Multisignatures, other.Multisignatures)
}

// IsMultisignature returns whether the account has registered a keysgroup
func (account *Account) IsMultisignature() bool {
	return len(account.Multisignatures) > 0
}

// HasVoteFor returns whether the account currently votes for the given
// delegate public key
func (account *Account) HasVoteFor(delegatePublicKey string) bool {
	for _, vote := range account.Votes {
		if vote == delegatePublicKey {
			return true
		}
	}
	return false
}

// AccountDiff is a set of changes to a single account. Numeric fields are
// signed deltas. String fields are set when non-empty.
type AccountDiff struct {
	Balance        int64
	VoteWeight     int64
	ProducedBlocks int64
	MissedBlocks   int64
	Fees           int64
	Rewards        int64

	PublicKey       string
	SecondPublicKey string
	Username        string

	VotesAdded   []string
	VotesRemoved []string

	MultisignaturesAdded []string
	MultiMin             uint32
	MultiLifetime        uint32
}

// Clone returns a deep copy of the diff
func (diff *AccountDiff) Clone() *AccountDiff {
	if diff == nil {
		return nil
	}
	clone := *diff
	clone.VotesAdded = cloneStrings(diff.VotesAdded)
	clone.VotesRemoved = cloneStrings(diff.VotesRemoved)
	clone.MultisignaturesAdded = cloneStrings(diff.MultisignaturesAdded)
	return &clone
}

// Negate returns a diff reversing the numeric fields of this one.
// Only numeric diffs can be negated.
func (diff *AccountDiff) Negate() *AccountDiff {
	return &AccountDiff{
		Balance:        -diff.Balance,
		VoteWeight:     -diff.VoteWeight,
		ProducedBlocks: -diff.ProducedBlocks,
		MissedBlocks:   -diff.MissedBlocks,
		Fees:           -diff.Fees,
		Rewards:        -diff.Rewards,
	}
}

// IsNumericOnly returns whether the diff touches only numeric fields
func (diff *AccountDiff) IsNumericOnly() bool {
	return diff.PublicKey == "" && diff.SecondPublicKey == "" && diff.Username == "" &&
		len(diff.VotesAdded) == 0 && len(diff.VotesRemoved) == 0 &&
		len(diff.MultisignaturesAdded) == 0 && diff.MultiMin == 0 && diff.MultiLifetime == 0
}

// LedgerOp is a single applied account diff together with the image of the
// account before it was applied. Previous is nil when the op created the
// account.
type LedgerOp struct {
	Address  string
	Diff     *AccountDiff
	Previous *Account
}

// Clone returns a deep copy of the op
func (op *LedgerOp) Clone() *LedgerOp {
	return &LedgerOp{
		Address:  op.Address,
		Diff:     op.Diff.Clone(),
		Previous: op.Previous.Clone(),
	}
}

func cloneStrings(strings []string) []string {
	if strings == nil {
		return nil
	}
	clone := make([]string, len(strings))
	copy(clone, strings)
	return clone
}

func stringsEqual(a, b []string) bool {
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
