package accountstore

import (
	"math"

	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// Merge applies diff to the account of the given address, creating the
// account if needed. When the diff changes the balance or the votes of the
// account, the vote weights of the delegates it voted for and votes for are
// moved accordingly. The returned ops are in application order, the first
// one being the op of the given address.
func (as *accountStore) Merge(dbContext model.DBReader, stagingArea *model.StagingArea, address string,
	diff *externalapi.AccountDiff) ([]*externalapi.LedgerOp, error) {

	stagingShard := as.stagingShard(stagingArea)

	previous, err := as.account(dbContext, stagingShard, address)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, err
	}
	var account *externalapi.Account
	if previous != nil {
		account = previous.Clone()
	} else {
		account = externalapi.NewAccount(address)
	}

	err = applyDiff(account, diff)
	if err != nil {
		return nil, err
	}
	as.stage(stagingShard, account)
	ops := []*externalapi.LedgerOp{{Address: address, Diff: diff.Clone(), Previous: previous.Clone()}}

	weightOps, err := as.moveVoteWeights(dbContext, stagingArea, previous, account)
	if err != nil {
		return nil, err
	}
	return append(ops, weightOps...), nil
}

// moveVoteWeights removes the previous balance from every delegate the
// account voted for and adds the new balance to every delegate it votes for
func (as *accountStore) moveVoteWeights(dbContext model.DBReader, stagingArea *model.StagingArea,
	previous *externalapi.Account, account *externalapi.Account) ([]*externalapi.LedgerOp, error) {

	var previousBalance uint64
	var previousVotes []string
	if previous != nil {
		previousBalance = previous.Balance
		previousVotes = previous.Votes
	}

	deltas := make(map[string]int64)
	var order []string
	addDelta := func(delegatePublicKey string, delta int64) {
		if _, ok := deltas[delegatePublicKey]; !ok {
			order = append(order, delegatePublicKey)
		}
		deltas[delegatePublicKey] += delta
	}
	for _, delegatePublicKey := range previousVotes {
		addDelta(delegatePublicKey, -int64(previousBalance))
	}
	for _, delegatePublicKey := range account.Votes {
		addDelta(delegatePublicKey, int64(account.Balance))
	}

	var ops []*externalapi.LedgerOp
	for _, delegatePublicKey := range order {
		delta := deltas[delegatePublicKey]
		if delta == 0 {
			continue
		}
		delegateAddress, err := consensushashing.AddressFromPublicKey(delegatePublicKey)
		if err != nil {
			return nil, err
		}
		weightOps, err := as.Merge(dbContext, stagingArea, delegateAddress, &externalapi.AccountDiff{VoteWeight: delta})
		if err != nil {
			return nil, err
		}
		ops = append(ops, weightOps...)
	}
	return ops, nil
}

func applyDiff(account *externalapi.Account, diff *externalapi.AccountDiff) error {
	balance, ok := addDelta(account.Balance, diff.Balance)
	if !ok {
		return errors.Wrapf(ruleerrors.ErrInsufficientBalance, "account %s has balance %d, "+
			"cannot apply %d", account.Address, account.Balance, diff.Balance)
	}
	account.Balance = balance

	if diff.VoteWeight < 0 && account.VoteWeight+diff.VoteWeight < 0 {
		return errors.Wrapf(ruleerrors.ErrNegativeAccountField, "vote weight of %s would become %d",
			account.Address, account.VoteWeight+diff.VoteWeight)
	}
	account.VoteWeight += diff.VoteWeight

	counters := []struct {
		name  string
		value *uint64
		delta int64
	}{
		{"produced blocks", &account.ProducedBlocks, diff.ProducedBlocks},
		{"missed blocks", &account.MissedBlocks, diff.MissedBlocks},
		{"fees", &account.Fees, diff.Fees},
		{"rewards", &account.Rewards, diff.Rewards},
	}
	for _, counter := range counters {
		value, ok := addDelta(*counter.value, counter.delta)
		if !ok {
			return errors.Wrapf(ruleerrors.ErrNegativeAccountField, "%s of %s would become negative",
				counter.name, account.Address)
		}
		*counter.value = value
	}

	if diff.PublicKey != "" {
		account.PublicKey = diff.PublicKey
	}
	if diff.SecondPublicKey != "" {
		account.SecondPublicKey = diff.SecondPublicKey
	}
	if diff.Username != "" {
		account.Username = diff.Username
		account.IsDelegate = true
	}

	for _, removed := range diff.VotesRemoved {
		account.Votes = removeString(account.Votes, removed)
	}
	account.Votes = append(account.Votes, diff.VotesAdded...)

	account.Multisignatures = append(account.Multisignatures, diff.MultisignaturesAdded...)
	if diff.MultiMin != 0 {
		account.MultiMin = diff.MultiMin
	}
	if diff.MultiLifetime != 0 {
		account.MultiLifetime = diff.MultiLifetime
	}
	return nil
}

// addDelta returns value+delta, and false if the result is negative or
// overflows
func addDelta(value uint64, delta int64) (uint64, bool) {
	if delta < 0 {
		decrease := uint64(-delta)
		if decrease > value {
			return 0, false
		}
		return value - decrease, true
	}
	if uint64(delta) > math.MaxUint64-value {
		return 0, false
	}
	return value + uint64(delta), true
}

func removeString(values []string, toRemove string) []string {
	for i, value := range values {
		if value == toRemove {
			return append(values[:i:i], values[i+1:]...)
		}
	}
	return values
}

// RevertOps restores the accounts touched by ops to their previous images,
// last op first
func (as *accountStore) RevertOps(stagingArea *model.StagingArea, ops []*externalapi.LedgerOp) {
	stagingShard := as.stagingShard(stagingArea)
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if op.Previous == nil {
			as.stageDelete(stagingShard, op.Address)
			continue
		}
		as.stage(stagingShard, op.Previous)
	}
}
