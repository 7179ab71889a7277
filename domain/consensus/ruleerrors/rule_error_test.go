package ruleerrors

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func TestNewErrFork(t *testing.T) {
	blockID := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xff, 0xff, 0xff})
	block := &externalapi.DomainBlock{Height: 100, ID: blockID}
	outer := errors.Wrapf(NewErrFork(externalapi.ForkTypeCompetingBlock, block), "block %s", blockID)

	inner := &ErrFork{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrFork: Outer should contain ErrFork in it")
	}
	if inner.Type != externalapi.ForkTypeCompetingBlock {
		t.Fatalf("TestNewErrFork: Expected fork type 5, found: %d", inner.Type)
	}
	if inner.Height != 100 {
		t.Fatalf("TestNewErrFork: Expected height 100, found: %d", inner.Height)
	}

	kind, ok := KindOf(outer)
	if !ok {
		t.Fatal("TestNewErrFork: Outer should contain RuleError in it")
	}
	if kind != KindFork {
		t.Fatalf("TestNewErrFork: Expected kind %s, found: %s", KindFork, kind)
	}

	forkType, ok := ForkTypeOf(outer)
	if !ok || forkType != externalapi.ForkTypeCompetingBlock {
		t.Fatalf("TestNewErrFork: ForkTypeOf returned %d, %t", forkType, ok)
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err          error
		expectedKind ErrorKind
	}{
		{err: ErrBadPayloadHash, expectedKind: KindValidation},
		{err: errors.Wrapf(ErrRoundHeightGap, "round %d", 3), expectedKind: KindConsistency},
		{err: errors.Wrap(ErrInsufficientBalance, "sender 1D"), expectedKind: KindInsufficientBalance},
		{err: ErrTransactionExpired, expectedKind: KindExpired},
	}

	for _, test := range tests {
		kind, ok := KindOf(test.err)
		if !ok {
			t.Fatalf("TestErrorKinds: %s is unexpectedly not a rule error", test.err)
		}
		if kind != test.expectedKind {
			t.Fatalf("TestErrorKinds: %s: expected kind %s, got %s", test.err, test.expectedKind, kind)
		}
	}

	_, ok := KindOf(errors.New("disk failure"))
	if ok {
		t.Fatalf("TestErrorKinds: a plain error is unexpectedly a rule error")
	}
}

func TestRuleErrorIs(t *testing.T) {
	wrapped := errors.Wrapf(ErrBadTotalFee, "expected %d, got %d", 10, 11)
	if !errors.Is(wrapped, ErrBadTotalFee) {
		t.Fatalf("TestRuleErrorIs: wrapped error should match ErrBadTotalFee")
	}
	if errors.Is(wrapped, ErrBadTotalAmount) {
		t.Fatalf("TestRuleErrorIs: wrapped error should not match ErrBadTotalAmount")
	}
}
