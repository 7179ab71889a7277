package transactionvalidator

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/datastructures/accountstore"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/dposnet/dposd/domain/consensus/utils/testutils"
	"github.com/dposnet/dposd/domain/dposconfig"
	"github.com/pkg/errors"
)

type testContext struct {
	t            *testing.T
	validator    model.TransactionValidator
	crypto       model.CryptoProvider
	accountStore model.AccountStore
	dbManager    model.DBManager
	stagingArea  *model.StagingArea
	params       *dposconfig.Params
}

func newTestContext(t *testing.T, testName string) (*testContext, func()) {
	dbManager, teardown := testutils.PrepareDatabaseForTest(t, testName)
	accountStore, err := accountstore.New(dbManager, 10)
	if err != nil {
		t.Fatalf("%s: accountstore.New: %+v", testName, err)
	}
	params := dposconfig.SimnetParams
	crypto := signing.New()
	return &testContext{
		t:            t,
		validator:    New(&params, dbManager, crypto, accountStore),
		crypto:       crypto,
		accountStore: accountStore,
		dbManager:    dbManager,
		stagingArea:  model.NewStagingArea(),
		params:       &params,
	}, teardown
}

func (tc *testContext) keyPair(secret string) *externalapi.KeyPair {
	keyPair, err := signing.KeyPairFromSecret(secret)
	if err != nil {
		tc.t.Fatalf("KeyPairFromSecret: %+v", err)
	}
	return keyPair
}

func (tc *testContext) address(keyPair *externalapi.KeyPair) string {
	address, err := consensushashing.AddressFromPublicKey(keyPair.PublicKey)
	if err != nil {
		tc.t.Fatalf("AddressFromPublicKey: %+v", err)
	}
	return address
}

func (tc *testContext) merge(address string, diff *externalapi.AccountDiff) {
	_, err := tc.accountStore.Merge(tc.dbManager, tc.stagingArea, address, diff)
	if err != nil {
		tc.t.Fatalf("Merge: %+v", err)
	}
}

func (tc *testContext) sign(tx *externalapi.DomainTransaction, keyPair *externalapi.KeyPair) *externalapi.DomainTransaction {
	if tx.Fee == 0 {
		tx.Fee = tc.params.Fee(tx)
	}
	err := signing.SignTransaction(tc.crypto, tx, keyPair)
	if err != nil {
		tc.t.Fatalf("SignTransaction: %+v", err)
	}
	return tx
}

func (tc *testContext) cosign(tx *externalapi.DomainTransaction, keyPairs ...*externalapi.KeyPair) {
	for _, keyPair := range keyPairs {
		signature, err := signing.CosignTransaction(tc.crypto, tx, keyPair)
		if err != nil {
			tc.t.Fatalf("CosignTransaction: %+v", err)
		}
		tx.Signatures = append(tx.Signatures, signature)
	}
}

func TestValidateTransactionInIsolation(t *testing.T) {
	tc, teardown := newTestContext(t, "TestValidateTransactionInIsolation")
	defer teardown()

	sender := tc.keyPair("sender")
	delegate := tc.keyPair("delegate")
	cosigner := tc.keyPair("cosigner")
	recipient := tc.address(tc.keyPair("recipient"))

	send := func() *externalapi.DomainTransaction {
		return &externalapi.DomainTransaction{
			Type:        externalapi.TransactionTypeSend,
			Timestamp:   10,
			RecipientID: recipient,
			Amount:      100,
		}
	}

	tests := []struct {
		name          string
		build         func() *externalapi.DomainTransaction
		afterSigning  func(tx *externalapi.DomainTransaction)
		expectedError error
	}{
		{
			name:  "valid send",
			build: send,
		},
		{
			name: "unknown type",
			build: func() *externalapi.DomainTransaction {
				tx := send()
				tx.Type = 9
				return tx
			},
			expectedError: ruleerrors.ErrUnknownTransactionType,
		},
		{
			name: "wrong fee",
			build: func() *externalapi.DomainTransaction {
				tx := send()
				tx.Fee = 1
				return tx
			},
			expectedError: ruleerrors.ErrBadFee,
		},
		{
			name: "missing recipient",
			build: func() *externalapi.DomainTransaction {
				tx := send()
				tx.RecipientID = ""
				return tx
			},
			expectedError: ruleerrors.ErrMissingRecipient,
		},
		{
			name: "invalid recipient",
			build: func() *externalapi.DomainTransaction {
				tx := send()
				tx.RecipientID = "0123D"
				return tx
			},
			expectedError: ruleerrors.ErrInvalidRecipient,
		},
		{
			name: "zero amount",
			build: func() *externalapi.DomainTransaction {
				tx := send()
				tx.Amount = 0
				return tx
			},
			expectedError: ruleerrors.ErrInvalidAmount,
		},
		{
			name: "send with a delegate asset",
			build: func() *externalapi.DomainTransaction {
				tx := send()
				tx.Asset.Delegate = &externalapi.DelegateAsset{Username: "alice"}
				return tx
			},
			expectedError: ruleerrors.ErrInvalidAsset,
		},
		{
			name: "vote with an amount",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type:   externalapi.TransactionTypeVote,
					Amount: 1,
					Asset: externalapi.DomainTransactionAsset{
						Votes: &externalapi.VoteAsset{Added: []string{delegate.PublicKey}},
					},
				}
			},
			expectedError: ruleerrors.ErrUnexpectedAmount,
		},
		{
			name: "valid delegate",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type:  externalapi.TransactionTypeDelegate,
					Asset: externalapi.DomainTransactionAsset{Delegate: &externalapi.DelegateAsset{Username: "a.b_c!"}},
				}
			},
		},
		{
			name: "uppercase username",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type:  externalapi.TransactionTypeDelegate,
					Asset: externalapi.DomainTransactionAsset{Delegate: &externalapi.DelegateAsset{Username: "Alice"}},
				}
			},
			expectedError: ruleerrors.ErrInvalidUsername,
		},
		{
			name: "address-like username",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type:  externalapi.TransactionTypeDelegate,
					Asset: externalapi.DomainTransactionAsset{Delegate: &externalapi.DelegateAsset{Username: "1234d"}},
				}
			},
			expectedError: ruleerrors.ErrInvalidUsername,
		},
		{
			name: "too long username",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type: externalapi.TransactionTypeDelegate,
					Asset: externalapi.DomainTransactionAsset{
						Delegate: &externalapi.DelegateAsset{Username: "abcdefghijklmnopqrstu"},
					},
				}
			},
			expectedError: ruleerrors.ErrInvalidUsername,
		},
		{
			name: "empty vote",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type:  externalapi.TransactionTypeVote,
					Asset: externalapi.DomainTransactionAsset{Votes: &externalapi.VoteAsset{}},
				}
			},
			expectedError: ruleerrors.ErrInvalidVotes,
		},
		{
			name: "duplicated vote",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type: externalapi.TransactionTypeVote,
					Asset: externalapi.DomainTransactionAsset{Votes: &externalapi.VoteAsset{
						Added:   []string{delegate.PublicKey},
						Removed: []string{delegate.PublicKey},
					}},
				}
			},
			expectedError: ruleerrors.ErrInvalidVotes,
		},
		{
			name: "valid multisignature",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type: externalapi.TransactionTypeMultisignature,
					Asset: externalapi.DomainTransactionAsset{Multisignature: &externalapi.MultisignatureAsset{
						Min: 1, Lifetime: 24, Keysgroup: []string{cosigner.PublicKey},
					}},
				}
			},
		},
		{
			name: "multisignature min out of bounds",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type: externalapi.TransactionTypeMultisignature,
					Asset: externalapi.DomainTransactionAsset{Multisignature: &externalapi.MultisignatureAsset{
						Min: 2, Lifetime: 24, Keysgroup: []string{cosigner.PublicKey},
					}},
				}
			},
			expectedError: ruleerrors.ErrInvalidKeysgroup,
		},
		{
			name: "multisignature lifetime out of bounds",
			build: func() *externalapi.DomainTransaction {
				return &externalapi.DomainTransaction{
					Type: externalapi.TransactionTypeMultisignature,
					Asset: externalapi.DomainTransactionAsset{Multisignature: &externalapi.MultisignatureAsset{
						Min: 1, Lifetime: 73, Keysgroup: []string{cosigner.PublicKey},
					}},
				}
			},
			expectedError: ruleerrors.ErrInvalidKeysgroup,
		},
		{
			name:  "tampered amount",
			build: send,
			afterSigning: func(tx *externalapi.DomainTransaction) {
				tx.Amount++
				tx.ID = consensushashing.TransactionID(tx)
			},
			expectedError: ruleerrors.ErrBadTransactionSignature,
		},
		{
			name:  "wrong id",
			build: send,
			afterSigning: func(tx *externalapi.DomainTransaction) {
				tx.ID = externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
			},
			expectedError: ruleerrors.ErrBadTransactionID,
		},
		{
			name:  "sender id of another key",
			build: send,
			afterSigning: func(tx *externalapi.DomainTransaction) {
				tx.SenderID = recipient
			},
			expectedError: ruleerrors.ErrSenderAddressMismatch,
		},
	}

	for _, test := range tests {
		tx := tc.sign(test.build(), sender)
		if test.afterSigning != nil {
			test.afterSigning(tx)
		}
		err := tc.validator.ValidateTransactionInIsolation(tx)
		if test.expectedError == nil {
			if err != nil {
				t.Errorf("TestValidateTransactionInIsolation: %s: unexpected error: %+v", test.name, err)
			}
			continue
		}
		if !errors.Is(err, test.expectedError) {
			t.Errorf("TestValidateTransactionInIsolation: %s: expected %v, got %v",
				test.name, test.expectedError, err)
		}
	}
}

func TestValidateTransactionInContextBalance(t *testing.T) {
	tc, teardown := newTestContext(t, "TestValidateTransactionInContextBalance")
	defer teardown()

	sender := tc.keyPair("sender")
	recipient := tc.address(tc.keyPair("recipient"))

	tx := tc.sign(&externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		RecipientID: recipient,
		Amount:      199533766861,
	}, sender)

	err := tc.validator.ValidateTransactionInContext(tc.stagingArea, tx)
	if !errors.Is(err, ruleerrors.ErrMissingAccount) {
		t.Fatalf("TestValidateTransactionInContextBalance: expected ErrMissingAccount, got %v", err)
	}

	tc.merge(tc.address(sender), &externalapi.AccountDiff{Balance: int64(tx.Amount + tx.Fee - 1)})
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, tx)
	if !errors.Is(err, ruleerrors.ErrInsufficientBalance) {
		t.Fatalf("TestValidateTransactionInContextBalance: expected ErrInsufficientBalance, got %v", err)
	}
	if kind, ok := ruleerrors.KindOf(err); !ok || kind != ruleerrors.KindInsufficientBalance {
		t.Fatalf("TestValidateTransactionInContextBalance: expected an insufficient balance kind, got %s", kind)
	}

	// A balance of exactly amount+fee is spendable
	tc.merge(tc.address(sender), &externalapi.AccountDiff{Balance: 1})
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, tx)
	if err != nil {
		t.Fatalf("TestValidateTransactionInContextBalance: unexpected error: %+v", err)
	}

	tc.merge(tc.address(sender), &externalapi.AccountDiff{PublicKey: tc.keyPair("other").PublicKey})
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, tx)
	if !errors.Is(err, ruleerrors.ErrSenderPublicKeyMismatch) {
		t.Fatalf("TestValidateTransactionInContextBalance: expected ErrSenderPublicKeyMismatch, got %v", err)
	}
}

func TestValidateTransactionInContextSecondSignature(t *testing.T) {
	tc, teardown := newTestContext(t, "TestValidateTransactionInContextSecondSignature")
	defer teardown()

	sender := tc.keyPair("sender")
	second := tc.keyPair("second")
	recipient := tc.address(tc.keyPair("recipient"))
	tc.merge(tc.address(sender), &externalapi.AccountDiff{Balance: 100 * 1e8})

	send := func() *externalapi.DomainTransaction {
		return tc.sign(&externalapi.DomainTransaction{
			Type:        externalapi.TransactionTypeSend,
			RecipientID: recipient,
			Amount:      1,
		}, sender)
	}

	secondSigned := send()
	err := signing.SecondSignTransaction(tc.crypto, secondSigned, second)
	if err != nil {
		t.Fatalf("SecondSignTransaction: %+v", err)
	}
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, secondSigned)
	if !errors.Is(err, ruleerrors.ErrUnexpectedSecondSignature) {
		t.Fatalf("TestValidateTransactionInContextSecondSignature: expected ErrUnexpectedSecondSignature, got %v", err)
	}

	tc.merge(tc.address(sender), &externalapi.AccountDiff{SecondPublicKey: second.PublicKey})

	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, send())
	if !errors.Is(err, ruleerrors.ErrMissingSecondSignature) {
		t.Fatalf("TestValidateTransactionInContextSecondSignature: expected ErrMissingSecondSignature, got %v", err)
	}

	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, secondSigned)
	if err != nil {
		t.Fatalf("TestValidateTransactionInContextSecondSignature: unexpected error: %+v", err)
	}

	wronglySigned := send()
	err = signing.SecondSignTransaction(tc.crypto, wronglySigned, tc.keyPair("not second"))
	if err != nil {
		t.Fatalf("SecondSignTransaction: %+v", err)
	}
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, wronglySigned)
	if !errors.Is(err, ruleerrors.ErrBadSecondSignature) {
		t.Fatalf("TestValidateTransactionInContextSecondSignature: expected ErrBadSecondSignature, got %v", err)
	}

	register := tc.sign(&externalapi.DomainTransaction{
		Type:  externalapi.TransactionTypeSignature,
		Asset: externalapi.DomainTransactionAsset{Signature: &externalapi.SignatureAsset{PublicKey: second.PublicKey}},
	}, sender)
	err = signing.SecondSignTransaction(tc.crypto, register, second)
	if err != nil {
		t.Fatalf("SecondSignTransaction: %+v", err)
	}
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, register)
	if !errors.Is(err, ruleerrors.ErrSecondSignatureAlreadyRegistered) {
		t.Fatalf("TestValidateTransactionInContextSecondSignature: expected "+
			"ErrSecondSignatureAlreadyRegistered, got %v", err)
	}
}

func TestValidateTransactionInContextDelegatesAndVotes(t *testing.T) {
	tc, teardown := newTestContext(t, "TestValidateTransactionInContextDelegatesAndVotes")
	defer teardown()

	sender := tc.keyPair("sender")
	alice := tc.keyPair("alice")
	bob := tc.keyPair("bob")
	notDelegate := tc.keyPair("not a delegate")
	tc.merge(tc.address(sender), &externalapi.AccountDiff{Balance: 100 * 1e8})
	tc.merge(tc.address(alice), &externalapi.AccountDiff{PublicKey: alice.PublicKey, Username: "alice"})
	tc.merge(tc.address(bob), &externalapi.AccountDiff{PublicKey: bob.PublicKey, Username: "bob"})
	tc.merge(tc.address(notDelegate), &externalapi.AccountDiff{PublicKey: notDelegate.PublicKey, Balance: 1})

	register := func(username string) *externalapi.DomainTransaction {
		return tc.sign(&externalapi.DomainTransaction{
			Type:  externalapi.TransactionTypeDelegate,
			Asset: externalapi.DomainTransactionAsset{Delegate: &externalapi.DelegateAsset{Username: username}},
		}, sender)
	}
	vote := func(added []string, removed []string) *externalapi.DomainTransaction {
		return tc.sign(&externalapi.DomainTransaction{
			Type: externalapi.TransactionTypeVote,
			Asset: externalapi.DomainTransactionAsset{
				Votes: &externalapi.VoteAsset{Added: added, Removed: removed},
			},
		}, sender)
	}

	tests := []struct {
		name          string
		tx            *externalapi.DomainTransaction
		expectedError error
	}{
		{"free username", register("carol"), nil},
		{"taken username", register("alice"), ruleerrors.ErrUsernameTaken},
		{"vote for a delegate", vote([]string{alice.PublicKey}, nil), nil},
		{"vote for a non delegate", vote([]string{notDelegate.PublicKey}, nil), ruleerrors.ErrVoteTargetNotDelegate},
		{"vote for an unknown account", vote([]string{tc.keyPair("unknown").PublicKey}, nil),
			ruleerrors.ErrVoteTargetNotDelegate},
		{"remove a vote that was never cast", vote(nil, []string{alice.PublicKey}), ruleerrors.ErrNotVoted},
		{"too many votes", vote([]string{alice.PublicKey, bob.PublicKey}, nil), ruleerrors.ErrTooManyVotes},
	}
	for _, test := range tests {
		err := tc.validator.ValidateTransactionInContext(tc.stagingArea, test.tx)
		if test.expectedError == nil {
			if err != nil {
				t.Errorf("TestValidateTransactionInContextDelegatesAndVotes: %s: unexpected error: %+v", test.name, err)
			}
			continue
		}
		if !errors.Is(err, test.expectedError) {
			t.Errorf("TestValidateTransactionInContextDelegatesAndVotes: %s: expected %v, got %v",
				test.name, test.expectedError, err)
		}
	}

	tc.merge(tc.address(sender), &externalapi.AccountDiff{VotesAdded: []string{alice.PublicKey}, Username: "sender"})

	err := tc.validator.ValidateTransactionInContext(tc.stagingArea, vote([]string{alice.PublicKey}, nil))
	if !errors.Is(err, ruleerrors.ErrAlreadyVoted) {
		t.Fatalf("TestValidateTransactionInContextDelegatesAndVotes: expected ErrAlreadyVoted, got %v", err)
	}
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea,
		vote([]string{bob.PublicKey}, []string{alice.PublicKey}))
	if err != nil {
		t.Fatalf("TestValidateTransactionInContextDelegatesAndVotes: swapping a vote: %+v", err)
	}
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, register("dave"))
	if !errors.Is(err, ruleerrors.ErrAlreadyDelegate) {
		t.Fatalf("TestValidateTransactionInContextDelegatesAndVotes: expected ErrAlreadyDelegate, got %v", err)
	}
}

func TestValidateTransactionInContextMultisignature(t *testing.T) {
	tc, teardown := newTestContext(t, "TestValidateTransactionInContextMultisignature")
	defer teardown()

	sender := tc.keyPair("sender")
	first := tc.keyPair("first cosigner")
	second := tc.keyPair("second cosigner")
	stranger := tc.keyPair("stranger")
	recipient := tc.address(tc.keyPair("recipient"))
	tc.merge(tc.address(sender), &externalapi.AccountDiff{Balance: 100 * 1e8})

	registration := tc.sign(&externalapi.DomainTransaction{
		Type: externalapi.TransactionTypeMultisignature,
		Asset: externalapi.DomainTransactionAsset{Multisignature: &externalapi.MultisignatureAsset{
			Min: 1, Lifetime: 24, Keysgroup: []string{first.PublicKey, second.PublicKey},
		}},
	}, sender)

	tc.cosign(registration, first)
	err := tc.validator.ValidateTransactionInContext(tc.stagingArea, registration)
	if !errors.Is(err, ruleerrors.ErrMissingCosignerSignatures) {
		t.Fatalf("TestValidateTransactionInContextMultisignature: expected ErrMissingCosignerSignatures, got %v", err)
	}

	tc.cosign(registration, second)
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, registration)
	if err != nil {
		t.Fatalf("TestValidateTransactionInContextMultisignature: unexpected error: %+v", err)
	}

	tc.cosign(registration, stranger)
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, registration)
	if !errors.Is(err, ruleerrors.ErrInvalidCosignerSignature) {
		t.Fatalf("TestValidateTransactionInContextMultisignature: expected ErrInvalidCosignerSignature, got %v", err)
	}

	tc.merge(tc.address(sender), &externalapi.AccountDiff{
		MultisignaturesAdded: []string{first.PublicKey, second.PublicKey},
		MultiMin:             1,
		MultiLifetime:        24,
	})

	send := tc.sign(&externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		RecipientID: recipient,
		Amount:      1,
	}, sender)
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, send)
	if !errors.Is(err, ruleerrors.ErrMissingCosignerSignatures) {
		t.Fatalf("TestValidateTransactionInContextMultisignature: expected ErrMissingCosignerSignatures, got %v", err)
	}
	tc.cosign(send, second)
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, send)
	if err != nil {
		t.Fatalf("TestValidateTransactionInContextMultisignature: unexpected error: %+v", err)
	}

	registration.Signatures = nil
	tc.cosign(registration, first, second)
	err = tc.validator.ValidateTransactionInContext(tc.stagingArea, registration)
	if !errors.Is(err, ruleerrors.ErrMultisignatureAlreadyRegistered) {
		t.Fatalf("TestValidateTransactionInContextMultisignature: expected "+
			"ErrMultisignatureAlreadyRegistered, got %v", err)
	}
}
