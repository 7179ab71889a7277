package blockvalidator

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/pkg/errors"
)

// VerifyReceipt runs the checks a block must pass before it is worth
// looking at the chain: its schema, its id and its generator signature
func (v *blockValidator) VerifyReceipt(block *externalapi.DomainBlock) *externalapi.VerificationResult {
	var errs []error
	for _, check := range []func(*externalapi.DomainBlock) error{
		v.checkBlockVersion,
		v.checkTransactionCount,
		v.checkPayloadLengthLimit,
		v.checkGeneratorPublicKey,
		v.checkBlockID,
	} {
		err := check(block)
		if err != nil {
			errs = append(errs, err)
		}
	}

	// The signature can't be checked with a malformed generator key
	if len(errs) == 0 {
		err := v.checkBlockSignature(block)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return externalapi.NewVerificationResult(errs...)
}

func (v *blockValidator) checkBlockVersion(block *externalapi.DomainBlock) error {
	if block.Version != v.params.BlockVersion {
		return errors.Wrapf(ruleerrors.ErrBlockVersionIsUnknown, "block version %d is unknown, "+
			"expected %d", block.Version, v.params.BlockVersion)
	}
	return nil
}

func (v *blockValidator) checkTransactionCount(block *externalapi.DomainBlock) error {
	if uint32(len(block.Transactions)) > v.params.MaxTransactionsPerBlock {
		return errors.Wrapf(ruleerrors.ErrTooManyTransactions, "block has %d transactions, at most %d "+
			"are allowed", len(block.Transactions), v.params.MaxTransactionsPerBlock)
	}
	if block.NumberOfTransactions != uint32(len(block.Transactions)) {
		return errors.Wrapf(ruleerrors.ErrBadNumberOfTransactions, "block declares %d transactions "+
			"but has %d", block.NumberOfTransactions, len(block.Transactions))
	}
	return nil
}

func (v *blockValidator) checkPayloadLengthLimit(block *externalapi.DomainBlock) error {
	if block.PayloadLength > v.params.MaxPayloadLength {
		return errors.Wrapf(ruleerrors.ErrPayloadTooLarge, "block payload length %d is over the "+
			"limit of %d", block.PayloadLength, v.params.MaxPayloadLength)
	}
	return nil
}

func (v *blockValidator) checkGeneratorPublicKey(block *externalapi.DomainBlock) error {
	if !signing.IsValidPublicKey(block.GeneratorPublicKey) {
		return errors.Wrapf(ruleerrors.ErrInvalidGeneratorPublicKey, "generator public key %q",
			block.GeneratorPublicKey)
	}
	return nil
}

func (v *blockValidator) checkBlockID(block *externalapi.DomainBlock) error {
	expectedID := consensushashing.BlockID(block)
	if !expectedID.Equal(block.ID) {
		return errors.Wrapf(ruleerrors.ErrBadBlockID, "block id %s does not match its header, "+
			"expected %s", block.ID, expectedID)
	}
	return nil
}

func (v *blockValidator) checkBlockSignature(block *externalapi.DomainBlock) error {
	isValid, err := v.crypto.Verify(consensushashing.BlockSigningHash(block), block.Signature,
		block.GeneratorPublicKey)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrInvalidGeneratorPublicKey, "%s", err)
	}
	if !isValid {
		return errors.Wrapf(ruleerrors.ErrBadBlockSignature, "block %s is not signed by %s",
			block.ID, block.GeneratorPublicKey)
	}
	return nil
}
