package blockvalidator_test

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/model/testapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/dposnet/dposd/domain/dposconfig"
	"github.com/pkg/errors"
)

func setupTestConsensus(t *testing.T, testName string) (testapi.TestConsensus, func(keepDataDir bool)) {
	params := dposconfig.SimnetParams
	tc, teardown, err := consensus.NewFactory().NewTestConsensus(&params, testName)
	if err != nil {
		t.Fatalf("%s: Error setting up consensus: %+v", testName, err)
	}
	return tc, teardown
}

// resign signs block again after it was tampered with, so that only the
// tampered field is wrong
func resign(t *testing.T, tc testapi.TestConsensus, block *externalapi.DomainBlock) {
	keyPair, err := tc.ForgerKeyPair(block.GeneratorPublicKey)
	if err != nil {
		t.Fatalf("ForgerKeyPair: %+v", err)
	}
	err = signing.SignBlock(signing.New(), block, keyPair)
	if err != nil {
		t.Fatalf("SignBlock: %+v", err)
	}
}

func TestVerifyReceipt(t *testing.T) {
	tc, teardown := setupTestConsensus(t, "TestVerifyReceipt")
	defer teardown(false)

	tests := []struct {
		name          string
		tamper        func(block *externalapi.DomainBlock)
		resign        bool
		expectedError error
	}{
		{
			name:          "valid",
			tamper:        func(*externalapi.DomainBlock) {},
			expectedError: nil,
		},
		{
			name:          "unknown version",
			tamper:        func(block *externalapi.DomainBlock) { block.Version++ },
			resign:        true,
			expectedError: ruleerrors.ErrBlockVersionIsUnknown,
		},
		{
			name:          "wrong number of transactions",
			tamper:        func(block *externalapi.DomainBlock) { block.NumberOfTransactions++ },
			resign:        true,
			expectedError: ruleerrors.ErrBadNumberOfTransactions,
		},
		{
			name:          "payload too large",
			tamper:        func(block *externalapi.DomainBlock) { block.PayloadLength = tc.Params().MaxPayloadLength + 1 },
			resign:        true,
			expectedError: ruleerrors.ErrPayloadTooLarge,
		},
		{
			name:          "id does not match",
			tamper:        func(block *externalapi.DomainBlock) { block.ID = &externalapi.DomainHash{} },
			expectedError: ruleerrors.ErrBadBlockID,
		},
		{
			name: "bad signature",
			tamper: func(block *externalapi.DomainBlock) {
				block.Signature[0] ^= 0xff
				block.ID = consensushashing.BlockID(block)
			},
			expectedError: ruleerrors.ErrBadBlockSignature,
		},
	}

	for _, test := range tests {
		block, err := tc.NextBlock(nil)
		if err != nil {
			t.Fatalf("NextBlock: %+v", err)
		}
		test.tamper(block)
		if test.resign {
			resign(t, tc, block)
		}

		result := tc.VerifyReceipt(block)
		if test.expectedError == nil {
			if !result.Verified {
				t.Fatalf("TestVerifyReceipt: %s: unexpected errors %v", test.name, result.Errors)
			}
			continue
		}
		if result.Verified {
			t.Fatalf("TestVerifyReceipt: %s: the block unexpectedly verified", test.name)
		}
		if !errors.Is(result.FirstError(), test.expectedError) {
			t.Fatalf("TestVerifyReceipt: %s: expected %s, got %v", test.name, test.expectedError,
				result.FirstError())
		}
	}
}

func TestVerifyBlockRejectsBadContents(t *testing.T) {
	tc, teardown := setupTestConsensus(t, "TestVerifyBlockRejectsBadContents")
	defer teardown(false)

	tests := []struct {
		name          string
		tamper        func(block *externalapi.DomainBlock)
		expectedError error
	}{
		{
			name:          "bad total fee",
			tamper:        func(block *externalapi.DomainBlock) { block.TotalFee++ },
			expectedError: ruleerrors.ErrBadTotalFee,
		},
		{
			name:          "bad total amount",
			tamper:        func(block *externalapi.DomainBlock) { block.TotalAmount++ },
			expectedError: ruleerrors.ErrBadTotalAmount,
		},
		{
			name:          "bad reward",
			tamper:        func(block *externalapi.DomainBlock) { block.Reward++ },
			expectedError: ruleerrors.ErrBadReward,
		},
		{
			name:          "bad payload hash",
			tamper:        func(block *externalapi.DomainBlock) { block.PayloadHash = &externalapi.DomainHash{} },
			expectedError: ruleerrors.ErrBadPayloadHash,
		},
	}

	for _, test := range tests {
		block, err := tc.NextBlock(nil)
		if err != nil {
			t.Fatalf("NextBlock: %+v", err)
		}
		test.tamper(block)
		resign(t, tc, block)

		result, err := tc.VerifyBlock(block)
		if err != nil {
			t.Fatalf("TestVerifyBlockRejectsBadContents: %s: VerifyBlock: %+v", test.name, err)
		}
		if result.Verified {
			t.Fatalf("TestVerifyBlockRejectsBadContents: %s: the block unexpectedly verified", test.name)
		}
		found := false
		for _, err := range result.Errors {
			if errors.Is(err, test.expectedError) {
				found = true
			}
		}
		if !found {
			t.Fatalf("TestVerifyBlockRejectsBadContents: %s: expected %s among %v", test.name,
				test.expectedError, result.Errors)
		}
	}
}

func TestVerifyBlockRejectsFutureBlocks(t *testing.T) {
	tc, teardown := setupTestConsensus(t, "TestVerifyBlockRejectsFutureBlocks")
	defer teardown(false)

	tip, err := tc.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}
	delegates, err := tc.GenerateDelegateList(tip.Height + 1)
	if err != nil {
		t.Fatalf("GenerateDelegateList: %+v", err)
	}

	// The wall clock is at the slot of the tip. One slot ahead is tolerated.
	slotClock := tc.SlotClock()
	currentSlot := slotClock.SlotNumber(tip.Timestamp)
	tc.WallClock().Set(slotClock.RealTime(tip.Timestamp))
	for _, test := range []struct {
		slot     int64
		verified bool
	}{
		{slot: currentSlot + 1, verified: true},
		{slot: currentSlot + 2, verified: false},
	} {
		keyPair, err := tc.ForgerKeyPair(delegates[slotClock.ForgerIndex(test.slot)])
		if err != nil {
			t.Fatalf("ForgerKeyPair: %+v", err)
		}
		block, err := tc.BlockBuilder().BuildBlockOnParent(keyPair, tip, slotClock.SlotTime(test.slot), nil)
		if err != nil {
			t.Fatalf("BuildBlockOnParent: %+v", err)
		}
		result, err := tc.VerifyBlock(block)
		if err != nil {
			t.Fatalf("VerifyBlock: %+v", err)
		}
		if result.Verified != test.verified {
			t.Fatalf("TestVerifyBlockRejectsFutureBlocks: slot %d: expected verified %t, got errors %v",
				test.slot, test.verified, result.Errors)
		}
		if !test.verified && !errors.Is(result.FirstError(), ruleerrors.ErrTimeTooMuchInTheFuture) {
			t.Fatalf("TestVerifyBlockRejectsFutureBlocks: expected ErrTimeTooMuchInTheFuture, got %v",
				result.FirstError())
		}
	}
}

func TestVerifyBlockRejectsInvalidTransactions(t *testing.T) {
	tc, teardown := setupTestConsensus(t, "TestVerifyBlockRejectsInvalidTransactions")
	defer teardown(false)

	genesisKeyPair, err := tc.Params().GenesisAccountKeyPair()
	if err != nil {
		t.Fatalf("GenesisAccountKeyPair: %+v", err)
	}
	tx := &externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		RecipientID: "1D",
		Amount:      10,
		Fee:         1,
	}
	err = signing.SignTransaction(signing.New(), tx, genesisKeyPair)
	if err != nil {
		t.Fatalf("SignTransaction: %+v", err)
	}

	next, err := tc.NextBlock(nil)
	if err != nil {
		t.Fatalf("NextBlock: %+v", err)
	}
	tip, err := tc.LastBlock()
	if err != nil {
		t.Fatalf("LastBlock: %+v", err)
	}
	keyPair, err := tc.ForgerKeyPair(next.GeneratorPublicKey)
	if err != nil {
		t.Fatalf("ForgerKeyPair: %+v", err)
	}

	for _, test := range []struct {
		name          string
		transactions  []*externalapi.DomainTransaction
		expectedError error
	}{
		{name: "bad fee", transactions: []*externalapi.DomainTransaction{tx}, expectedError: ruleerrors.ErrBadFee},
		{name: "duplicate", transactions: []*externalapi.DomainTransaction{tx, tx}, expectedError: ruleerrors.ErrDuplicateTx},
	} {
		block, err := tc.BlockBuilder().BuildBlockOnParent(keyPair, tip, next.Timestamp, test.transactions)
		if err != nil {
			t.Fatalf("BuildBlockOnParent: %+v", err)
		}
		result, err := tc.VerifyBlock(block)
		if err != nil {
			t.Fatalf("VerifyBlock: %+v", err)
		}
		found := false
		for _, err := range result.Errors {
			var invalidTransactions ruleerrors.ErrInvalidTransactionsInNewBlock
			if errors.As(err, &invalidTransactions) {
				for _, invalid := range invalidTransactions.InvalidTransactions {
					if errors.Is(invalid.Error, test.expectedError) {
						found = true
					}
				}
			}
			if errors.Is(err, test.expectedError) {
				found = true
			}
		}
		if !found {
			t.Fatalf("TestVerifyBlockRejectsInvalidTransactions: %s: expected %s among %v", test.name,
				test.expectedError, result.Errors)
		}
	}
}

func TestVerifyBlockRejectsSameSlot(t *testing.T) {
	tc, teardown := setupTestConsensus(t, "TestVerifyBlockRejectsSameSlot")
	defer teardown(false)

	tip, err := tc.AddBlock(nil)
	if err != nil {
		t.Fatalf("AddBlock: %+v", err)
	}
	keyPair, err := tc.ForgerKeyPair(tip.GeneratorPublicKey)
	if err != nil {
		t.Fatalf("ForgerKeyPair: %+v", err)
	}

	// The forger of the tip tries to forge a second block in its slot
	block, err := tc.BlockBuilder().BuildBlockOnParent(keyPair, tip, tip.Timestamp+1, nil)
	if err != nil {
		t.Fatalf("BuildBlockOnParent: %+v", err)
	}
	result, err := tc.VerifyBlock(block)
	if err != nil {
		t.Fatalf("VerifyBlock: %+v", err)
	}
	if !errors.Is(result.FirstError(), ruleerrors.ErrSlotAlreadyForged) {
		t.Fatalf("TestVerifyBlockRejectsSameSlot: expected ErrSlotAlreadyForged, got %v", result.FirstError())
	}
}
