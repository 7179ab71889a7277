package model

import (
	"time"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// CryptoProvider signs and verifies hashes. Public keys are hex encoded.
type CryptoProvider interface {
	Sign(hash *externalapi.DomainHash, keyPair *externalapi.KeyPair) ([]byte, error)
	Verify(hash *externalapi.DomainHash, signature []byte, publicKey string) (bool, error)
}

// Clock provides the wall-clock time
type Clock interface {
	Now() time.Time
}
