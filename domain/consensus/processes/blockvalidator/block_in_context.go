package blockvalidator

import (
	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/pkg/errors"
)

// VerifyBlock runs every check a block must pass before it is applied on
// top of the staged chain tip. A block conflicting with the chain is
// reported as a fork. The staged state is only read.
func (v *blockValidator) VerifyBlock(stagingArea *model.StagingArea,
	block *externalapi.DomainBlock) (*externalapi.VerificationResult, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "VerifyBlock")
	defer onEnd()

	receipt := v.VerifyReceipt(block)
	if !receipt.Verified {
		return receipt, nil
	}

	tip, err := v.blockStore.Tip(v.databaseContext, stagingArea)
	if err != nil {
		if database.IsNotFoundError(err) {
			return externalapi.NewVerificationResult(errors.WithStack(ruleerrors.ErrNotLoaded)), nil
		}
		return nil, err
	}

	for _, check := range []func(*model.StagingArea, *externalapi.DomainBlock, *externalapi.DomainBlock) error{
		v.checkChainPosition,
		v.checkForgingSlot,
		v.checkDoubleSubmission,
	} {
		err := check(stagingArea, block, tip)
		if err != nil {
			if kind, ok := ruleerrors.KindOf(err); ok && kind != ruleerrors.KindConsistency {
				log.Debugf("Block %s at height %d was rejected: %s", block.ID, block.Height, err)
				return externalapi.NewVerificationResult(err), nil
			}
			return nil, err
		}
	}

	var errs []error
	for _, check := range []func(*externalapi.DomainBlock, *externalapi.DomainBlock) error{
		v.checkTimestamp,
		v.checkFutureTimestamp,
		v.checkTotals,
		v.checkPayload,
		v.checkReward,
		v.checkDuplicateTransactions,
		v.checkTransactionsInIsolation,
	} {
		err := check(block, tip)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		log.Debugf("Block %s at height %d failed %d checks, the first being: %s",
			block.ID, block.Height, len(errs), errs[0])
	}
	return externalapi.NewVerificationResult(errs...), nil
}

// checkChainPosition makes sure the block extends the tip
func (v *blockValidator) checkChainPosition(stagingArea *model.StagingArea, block *externalapi.DomainBlock,
	tip *externalapi.DomainBlock) error {

	if block.Height <= tip.Height {
		canonical, err := v.blockStore.BlockByHeight(v.databaseContext, stagingArea, block.Height)
		if database.IsNotFoundError(err) {
			return ruleerrors.NewErrFork(externalapi.ForkTypeDiscontinuity, block)
		}
		if err != nil {
			return err
		}
		if canonical.ID.Equal(block.ID) {
			return errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s is already at height %d",
				block.ID, block.Height)
		}
		if canonical.PreviousBlockID.Equal(block.PreviousBlockID) {
			return ruleerrors.NewErrFork(externalapi.ForkTypeCompetingBlock, block)
		}
		return ruleerrors.NewErrFork(externalapi.ForkTypeDiscontinuity, block)
	}

	if block.Height != tip.Height+1 || !tip.ID.Equal(block.PreviousBlockID) {
		return ruleerrors.NewErrFork(externalapi.ForkTypeDiscontinuity, block)
	}
	return nil
}

// checkForgingSlot makes sure the generator is the delegate the slot of the
// block belongs to
func (v *blockValidator) checkForgingSlot(stagingArea *model.StagingArea, block *externalapi.DomainBlock,
	_ *externalapi.DomainBlock) error {

	round := v.slotClock.RoundOf(block.Height)
	delegates, err := v.delegateListBuilder.DelegateList(stagingArea, round)
	if err != nil {
		return err
	}
	slot := v.slotClock.SlotNumber(block.Timestamp)
	expectedGenerator := delegates[v.slotClock.ForgerIndex(slot)]
	if block.GeneratorPublicKey != expectedGenerator {
		log.Debugf("Slot %d of round %d belongs to %s, block %s was forged by %s",
			slot, round, expectedGenerator, block.ID, block.GeneratorPublicKey)
		return ruleerrors.NewErrFork(externalapi.ForkTypeWrongForgingSlot, block)
	}
	return nil
}

// checkDoubleSubmission makes sure none of the transactions was already
// included in the chain
func (v *blockValidator) checkDoubleSubmission(stagingArea *model.StagingArea, block *externalapi.DomainBlock,
	_ *externalapi.DomainBlock) error {

	for _, tx := range block.Transactions {
		if tx.ID == nil {
			continue
		}
		exists, err := v.transactionStore.Has(v.databaseContext, stagingArea, tx.ID)
		if err != nil {
			return err
		}
		if exists {
			log.Debugf("Transaction %s of block %s is already confirmed", tx.ID, block.ID)
			return ruleerrors.NewErrFork(externalapi.ForkTypeDoubleSubmission, block)
		}
	}
	return nil
}

func (v *blockValidator) checkTimestamp(block *externalapi.DomainBlock, tip *externalapi.DomainBlock) error {
	if block.Timestamp < tip.Timestamp {
		return errors.Wrapf(ruleerrors.ErrTimeTooOld, "block timestamp %d is before the timestamp %d "+
			"of its previous block", block.Timestamp, tip.Timestamp)
	}
	if v.slotClock.SlotNumber(block.Timestamp) == v.slotClock.SlotNumber(tip.Timestamp) {
		return errors.Wrapf(ruleerrors.ErrSlotAlreadyForged, "slot %d was already forged by the "+
			"previous block", v.slotClock.SlotNumber(block.Timestamp))
	}
	return nil
}

func (v *blockValidator) checkFutureTimestamp(block *externalapi.DomainBlock, _ *externalapi.DomainBlock) error {
	currentSlot := v.slotClock.SlotNumber(v.slotClock.EpochTime(v.wallClock.Now()))
	blockSlot := v.slotClock.SlotNumber(block.Timestamp)
	if blockSlot > currentSlot+v.params.MaxClockSkewSlots {
		return errors.Wrapf(ruleerrors.ErrTimeTooMuchInTheFuture, "block slot %d is ahead of the "+
			"current slot %d", blockSlot, currentSlot)
	}
	return nil
}

func (v *blockValidator) checkTotals(block *externalapi.DomainBlock, _ *externalapi.DomainBlock) error {
	totalAmount := uint64(0)
	totalFee := uint64(0)
	for _, tx := range block.Transactions {
		if totalAmount+tx.Amount < totalAmount || totalFee+tx.Fee < totalFee {
			return errors.Wrapf(ruleerrors.ErrBadTotalAmount, "block %s totals overflow", block.ID)
		}
		totalAmount += tx.Amount
		totalFee += tx.Fee
	}
	if block.TotalAmount != totalAmount {
		return errors.Wrapf(ruleerrors.ErrBadTotalAmount, "block total amount is %d, its transactions "+
			"amount to %d", block.TotalAmount, totalAmount)
	}
	if block.TotalFee != totalFee {
		return errors.Wrapf(ruleerrors.ErrBadTotalFee, "block total fee is %d, its transactions "+
			"pay %d", block.TotalFee, totalFee)
	}
	return nil
}

func (v *blockValidator) checkPayload(block *externalapi.DomainBlock, _ *externalapi.DomainBlock) error {
	payloadLength := consensushashing.PayloadLength(block.Transactions)
	if block.PayloadLength != payloadLength {
		return errors.Wrapf(ruleerrors.ErrBadPayloadLength, "block payload length is %d, "+
			"its transactions are %d bytes long", block.PayloadLength, payloadLength)
	}
	payloadHash := consensushashing.PayloadHash(block.Transactions)
	if !payloadHash.Equal(block.PayloadHash) {
		return errors.Wrapf(ruleerrors.ErrBadPayloadHash, "block payload hash is %s, expected %s",
			block.PayloadHash, payloadHash)
	}
	return nil
}

func (v *blockValidator) checkReward(block *externalapi.DomainBlock, _ *externalapi.DomainBlock) error {
	expectedReward := v.params.Reward(block.Height)
	if block.Reward != expectedReward {
		return errors.Wrapf(ruleerrors.ErrBadReward, "block reward at height %d is %d, expected %d",
			block.Height, block.Reward, expectedReward)
	}
	return nil
}

func (v *blockValidator) checkDuplicateTransactions(block *externalapi.DomainBlock, _ *externalapi.DomainBlock) error {
	seen := make(map[externalapi.DomainHash]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		id := consensushashing.TransactionID(tx)
		if _, ok := seen[*id]; ok {
			return errors.Wrapf(ruleerrors.ErrDuplicateTx, "transaction %s appears more than once in block %s",
				id, block.ID)
		}
		seen[*id] = struct{}{}
	}
	return nil
}

func (v *blockValidator) checkTransactionsInIsolation(block *externalapi.DomainBlock, _ *externalapi.DomainBlock) error {
	var invalidTransactions []ruleerrors.InvalidTransaction
	for _, tx := range block.Transactions {
		err := v.transactionValidator.ValidateTransactionInIsolation(tx)
		if err != nil {
			if !ruleerrors.IsRuleError(err) {
				return err
			}
			invalidTransactions = append(invalidTransactions, ruleerrors.InvalidTransaction{Transaction: tx, Error: err})
		}
	}
	if len(invalidTransactions) > 0 {
		return ruleerrors.NewErrInvalidTransactionsInNewBlock(invalidTransactions)
	}
	return nil
}
