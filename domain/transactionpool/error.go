package transactionpool

import (
	"fmt"

	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a transaction failed due to one of the pool or ledger
// rules. The caller can use errors.As to determine if a failure was
// specifically due to a rule violation and use the Err field to access the
// underlying error, which will be either a TxRuleError or a
// ruleerrors.RuleError.
type RuleError struct {
	Err error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e RuleError) Unwrap() error {
	return e.Err
}

// RejectCode represents a numeric value by which the pool indicates why a
// transaction was rejected.
type RejectCode uint8

// These constants define the various supported reject codes.
const (
	RejectMalformed           RejectCode = 0x01
	RejectInvalid             RejectCode = 0x10
	RejectDuplicate           RejectCode = 0x12
	RejectInsufficientBalance RejectCode = 0x42
	RejectPoolFull            RejectCode = 0x43
	RejectExpired             RejectCode = 0x44
)

// Map of reject codes back strings for pretty printing.
var rejectCodeStrings = map[RejectCode]string{
	RejectMalformed:           "REJECT_MALFORMED",
	RejectInvalid:             "REJECT_INVALID",
	RejectDuplicate:           "REJECT_DUPLICATE",
	RejectInsufficientBalance: "REJECT_INSUFFICIENTBALANCE",
	RejectPoolFull:            "REJECT_POOLFULL",
	RejectExpired:             "REJECT_EXPIRED",
}

// String returns the RejectCode in human-readable form.
func (code RejectCode) String() string {
	if s, ok := rejectCodeStrings[code]; ok {
		return s
	}

	return fmt.Sprintf("Unknown RejectCode (%d)", uint8(code))
}

// TxRuleError identifies a rule violation. It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation and access the RejectCode field to
// ascertain the specific reason for the rule violation.
type TxRuleError struct {
	RejectCode  RejectCode // The code to send with reject messages
	Description string     // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e TxRuleError) Error() string {
	return e.Description
}

// txRuleError creates an underlying TxRuleError with the given a set of
// arguments and returns a RuleError that encapsulates it.
func txRuleError(c RejectCode, desc string) RuleError {
	return RuleError{
		Err: TxRuleError{RejectCode: c, Description: desc},
	}
}

// ledgerRuleError wraps a rule violation reported by the consensus in a
// RuleError carrying code
func ledgerRuleError(c RejectCode, err error) RuleError {
	return RuleError{Err: TxRuleError{RejectCode: c, Description: err.Error()}}
}

// ExtractRejectCode attempts to return a relevant reject code for a given
// error
func ExtractRejectCode(err error) (RejectCode, bool) {
	var trErr TxRuleError
	if errors.As(err, &trErr) {
		return trErr.RejectCode, true
	}

	kind, ok := ruleerrors.KindOf(err)
	if !ok {
		return RejectInvalid, false
	}
	switch kind {
	case ruleerrors.KindInsufficientBalance:
		return RejectInsufficientBalance, true
	case ruleerrors.KindExpired:
		return RejectExpired, true
	default:
		return RejectInvalid, true
	}
}
