package ruleerrors

import (
	"fmt"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// ErrorKind classifies a RuleError by how the caller is expected to react
// to it
type ErrorKind uint8

// The error kinds
const (
	// KindValidation is a malformed or rule-breaking block or transaction.
	// The offending object is rejected.
	KindValidation ErrorKind = iota

	// KindConsistency means the persisted state contradicts itself. It is
	// fatal for the operation and must never be skipped.
	KindConsistency

	// KindFork is a block that conflicts with the local chain. The caller
	// decides how to recover.
	KindFork

	// KindInsufficientBalance is a debit larger than the sender balance
	KindInsufficientBalance

	// KindExpired is a transaction that outlived its queue timeout
	KindExpired
)

var errorKindStrings = map[ErrorKind]string{
	KindValidation:          "Validation",
	KindConsistency:         "Consistency",
	KindFork:                "Fork",
	KindInsufficientBalance: "InsufficientBalance",
	KindExpired:             "Expired",
}

func (k ErrorKind) String() string {
	return errorKindStrings[k]
}

// These constants are used to identify a specific RuleError.
var (
	// ErrDuplicateBlock indicates a block with the same id already
	// exists in the chain.
	ErrDuplicateBlock = newRuleError("ErrDuplicateBlock")

	// ErrBlockVersionIsUnknown indicates that the block version is unknown.
	ErrBlockVersionIsUnknown = newRuleError("ErrBlockVersionIsUnknown")

	// ErrBadBlockID indicates the block id does not match the hash of
	// its header.
	ErrBadBlockID = newRuleError("ErrBadBlockID")

	// ErrBadBlockSignature indicates the block is not signed by its
	// generator.
	ErrBadBlockSignature = newRuleError("ErrBadBlockSignature")

	// ErrInvalidGeneratorPublicKey indicates the generator public key
	// cannot be parsed.
	ErrInvalidGeneratorPublicKey = newRuleError("ErrInvalidGeneratorPublicKey")

	// ErrTooManyTransactions indicates the block has more transactions
	// than allowed.
	ErrTooManyTransactions = newRuleError("ErrTooManyTransactions")

	// ErrBadNumberOfTransactions indicates NumberOfTransactions does not
	// match the transactions in the block.
	ErrBadNumberOfTransactions = newRuleError("ErrBadNumberOfTransactions")

	// ErrPayloadTooLarge indicates the payload exceeds the maximum
	// payload length.
	ErrPayloadTooLarge = newRuleError("ErrPayloadTooLarge")

	// ErrBadPayloadLength indicates PayloadLength does not match the
	// length of the serialized transactions.
	ErrBadPayloadLength = newRuleError("ErrBadPayloadLength")

	// ErrBadPayloadHash indicates the calculated payload hash does not
	// match the expected value.
	ErrBadPayloadHash = newRuleError("ErrBadPayloadHash")

	// ErrBadTotalAmount indicates TotalAmount is not the sum of the
	// transaction amounts.
	ErrBadTotalAmount = newRuleError("ErrBadTotalAmount")

	// ErrBadTotalFee indicates TotalFee is not the sum of the transaction
	// fees.
	ErrBadTotalFee = newRuleError("ErrBadTotalFee")

	// ErrBadReward indicates the block reward does not match the reward
	// milestones.
	ErrBadReward = newRuleError("ErrBadReward")

	// ErrTimeTooOld indicates the block timestamp is earlier than its
	// previous block.
	ErrTimeTooOld = newRuleError("ErrTimeTooOld")

	// ErrSlotAlreadyForged indicates the block was forged in the same slot
	// as its previous block.
	ErrSlotAlreadyForged = newRuleError("ErrSlotAlreadyForged")

	// ErrTimeTooMuchInTheFuture indicates that the block timestamp is too
	// much in the future.
	ErrTimeTooMuchInTheFuture = newRuleError("ErrTimeTooMuchInTheFuture")

	// ErrDuplicateTx indicates a block contains an identical transaction
	// more than once.
	ErrDuplicateTx = newRuleError("ErrDuplicateTx")

	// ErrCannotDeleteGenesis indicates an attempt to delete the genesis
	// block.
	ErrCannotDeleteGenesis = newRuleError("ErrCannotDeleteGenesis")

	// ErrGenesisMismatch indicates the database holds a different genesis
	// block than the configured network.
	ErrGenesisMismatch = newConsistencyError("ErrGenesisMismatch")

	// ErrNotLoaded indicates an operation on a chain whose genesis block
	// was not applied yet.
	ErrNotLoaded = newRuleError("ErrNotLoaded")

	// ErrUnknownTransactionType indicates the transaction type is not
	// supported.
	ErrUnknownTransactionType = newRuleError("ErrUnknownTransactionType")

	// ErrBadTransactionID indicates the transaction id does not match the
	// hash of the transaction.
	ErrBadTransactionID = newRuleError("ErrBadTransactionID")

	// ErrInvalidPublicKey indicates a public key cannot be parsed.
	ErrInvalidPublicKey = newRuleError("ErrInvalidPublicKey")

	// ErrSenderAddressMismatch indicates SenderID is not the address of
	// the sender public key.
	ErrSenderAddressMismatch = newRuleError("ErrSenderAddressMismatch")

	// ErrBadFee indicates the transaction fee differs from the protocol
	// fee of its type.
	ErrBadFee = newRuleError("ErrBadFee")

	// ErrMissingRecipient indicates a send without a recipient.
	ErrMissingRecipient = newRuleError("ErrMissingRecipient")

	// ErrInvalidRecipient indicates the recipient is not a valid address.
	ErrInvalidRecipient = newRuleError("ErrInvalidRecipient")

	// ErrInvalidAmount indicates a send with a zero amount.
	ErrInvalidAmount = newRuleError("ErrInvalidAmount")

	// ErrUnexpectedAmount indicates a non-send transaction carrying an
	// amount or a recipient.
	ErrUnexpectedAmount = newRuleError("ErrUnexpectedAmount")

	// ErrInvalidAsset indicates the asset does not match the transaction
	// type.
	ErrInvalidAsset = newRuleError("ErrInvalidAsset")

	// ErrInvalidUsername indicates a delegate username breaking the
	// username rules.
	ErrInvalidUsername = newRuleError("ErrInvalidUsername")

	// ErrInvalidVotes indicates an empty, duplicated or oversized vote
	// list.
	ErrInvalidVotes = newRuleError("ErrInvalidVotes")

	// ErrInvalidKeysgroup indicates a keysgroup, min or lifetime out of
	// bounds.
	ErrInvalidKeysgroup = newRuleError("ErrInvalidKeysgroup")

	// ErrBadTransactionSignature indicates the transaction is not signed
	// by its sender.
	ErrBadTransactionSignature = newRuleError("ErrBadTransactionSignature")

	// ErrSenderPublicKeyMismatch indicates the sender account is bound to
	// a different public key.
	ErrSenderPublicKeyMismatch = newRuleError("ErrSenderPublicKeyMismatch")

	// ErrMissingSecondSignature indicates the sender has a second public
	// key but the transaction is not second-signed.
	ErrMissingSecondSignature = newRuleError("ErrMissingSecondSignature")

	// ErrUnexpectedSecondSignature indicates a second signature on a
	// transaction whose sender has no second public key.
	ErrUnexpectedSecondSignature = newRuleError("ErrUnexpectedSecondSignature")

	// ErrBadSecondSignature indicates the second signature does not verify.
	ErrBadSecondSignature = newRuleError("ErrBadSecondSignature")

	// ErrSecondSignatureAlreadyRegistered indicates a signature
	// transaction from an account that already has a second public key.
	ErrSecondSignatureAlreadyRegistered = newRuleError("ErrSecondSignatureAlreadyRegistered")

	// ErrAlreadyDelegate indicates a delegate registration from an account
	// that is already a delegate.
	ErrAlreadyDelegate = newRuleError("ErrAlreadyDelegate")

	// ErrUsernameTaken indicates the requested delegate username is in use.
	ErrUsernameTaken = newRuleError("ErrUsernameTaken")

	// ErrVoteTargetNotDelegate indicates a vote for an account that is not
	// a delegate.
	ErrVoteTargetNotDelegate = newRuleError("ErrVoteTargetNotDelegate")

	// ErrAlreadyVoted indicates a vote for a delegate the sender already
	// votes for.
	ErrAlreadyVoted = newRuleError("ErrAlreadyVoted")

	// ErrNotVoted indicates the removal of a vote the sender does not have.
	ErrNotVoted = newRuleError("ErrNotVoted")

	// ErrTooManyVotes indicates the sender would end up with more votes
	// than allowed.
	ErrTooManyVotes = newRuleError("ErrTooManyVotes")

	// ErrMultisignatureAlreadyRegistered indicates a keysgroup
	// registration from an account that already has one.
	ErrMultisignatureAlreadyRegistered = newRuleError("ErrMultisignatureAlreadyRegistered")

	// ErrMissingCosignerSignatures indicates fewer valid cosigner
	// signatures than required.
	ErrMissingCosignerSignatures = newRuleError("ErrMissingCosignerSignatures")

	// ErrInvalidCosignerSignature indicates a cosigner signature that
	// matches none of the expected cosigners.
	ErrInvalidCosignerSignature = newRuleError("ErrInvalidCosignerSignature")

	// ErrMissingAccount indicates a transaction whose sender has no
	// account.
	ErrMissingAccount = newRuleError("ErrMissingAccount")

	// ErrInsufficientBalance indicates a debit larger than the balance of
	// the debited account.
	ErrInsufficientBalance = newRuleErrorWithKind("ErrInsufficientBalance", KindInsufficientBalance)

	// ErrTransactionExpired indicates a transaction evicted from the pool
	// after its timeout.
	ErrTransactionExpired = newRuleErrorWithKind("ErrTransactionExpired", KindExpired)

	// ErrRoundHeightGap indicates a round is missing a block at one of its
	// heights when it is being closed or reverted.
	ErrRoundHeightGap = newConsistencyError("ErrRoundHeightGap")

	// ErrNotEnoughDelegates indicates there are fewer registered delegates
	// than active delegate slots.
	ErrNotEnoughDelegates = newConsistencyError("ErrNotEnoughDelegates")

	// ErrNegativeAccountField indicates a diff would drive a non-balance
	// account counter below zero.
	ErrNegativeAccountField = newConsistencyError("ErrNegativeAccountField")

	// ErrMissingRoundSnapshot indicates a round snapshot needed for
	// accounting or reverting is not stored.
	ErrMissingRoundSnapshot = newConsistencyError("ErrMissingRoundSnapshot")

	// ErrMissingMutationLog indicates a committed block has no mutation
	// log to revert it with.
	ErrMissingMutationLog = newConsistencyError("ErrMissingMutationLog")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	kind    ErrorKind
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Kind returns the kind of the rule violation
func (e RuleError) Kind() ErrorKind {
	return e.kind
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, kind: KindValidation, inner: nil}
}

func newConsistencyError(message string) RuleError {
	return RuleError{message: message, kind: KindConsistency, inner: nil}
}

func newRuleErrorWithKind(message string, kind ErrorKind) RuleError {
	return RuleError{message: message, kind: kind, inner: nil}
}

// IsRuleError returns whether err is, or wraps, a RuleError
func IsRuleError(err error) bool {
	return errors.As(err, &RuleError{})
}

// KindOf returns the kind of the RuleError wrapped by err. ok is false when
// err is not a rule violation.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) {
		return 0, false
	}
	return ruleErr.kind, true
}

// ErrFork describes a block that conflicts with the local chain
type ErrFork struct {
	Type    externalapi.ForkType
	Height  uint64
	BlockID *externalapi.DomainHash
}

func (e ErrFork) Error() string {
	return fmt.Sprintf("fork type %d (%s) at height %d by block %s", e.Type, e.Type, e.Height, e.BlockID)
}

// NewErrFork creates a new ErrFork error wrapped in a RuleError
func NewErrFork(forkType externalapi.ForkType, block *externalapi.DomainBlock) error {
	return errors.WithStack(RuleError{
		message: "ErrFork",
		kind:    KindFork,
		inner:   ErrFork{Type: forkType, Height: block.Height, BlockID: block.ID},
	})
}

// ForkTypeOf returns the fork type carried by err, if any
func ForkTypeOf(err error) (externalapi.ForkType, bool) {
	var forkErr ErrFork
	if !errors.As(err, &forkErr) {
		return 0, false
	}
	return forkErr.Type, true
}

// InvalidTransaction is a struct containing an invalid transaction, and the error explaining why it's invalid.
type InvalidTransaction struct {
	Transaction *externalapi.DomainTransaction
	Error       error
}

func (invalid InvalidTransaction) String() string {
	return fmt.Sprintf("(%v: %s)", invalid.Transaction.ID, invalid.Error)
}

// ErrInvalidTransactionsInNewBlock indicates that some transactions in a new block are invalid
type ErrInvalidTransactionsInNewBlock struct {
	InvalidTransactions []InvalidTransaction
}

func (e ErrInvalidTransactionsInNewBlock) Error() string {
	return fmt.Sprint(e.InvalidTransactions)
}

// NewErrInvalidTransactionsInNewBlock Creates a new ErrInvalidTransactionsInNewBlock error wrapped in a RuleError
func NewErrInvalidTransactionsInNewBlock(invalidTransactions []InvalidTransaction) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidTransactionsInNewBlock",
		kind:    KindValidation,
		inner:   ErrInvalidTransactionsInNewBlock{invalidTransactions},
	})
}
