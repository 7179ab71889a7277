package signing

import (
	"encoding/hex"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

type schnorrProvider struct{}

// New returns a CryptoProvider signing with Schnorr signatures over
// secp256k1
func New() model.CryptoProvider {
	return schnorrProvider{}
}

func (schnorrProvider) Sign(hash *externalapi.DomainHash, keyPair *externalapi.KeyPair) ([]byte, error) {
	schnorrKeyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(keyPair.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	secpHash := secp256k1.Hash(*hash.ByteArray())
	signature, err := schnorrKeyPair.SchnorrSign(&secpHash)
	if err != nil {
		return nil, errors.Wrap(err, "cannot sign hash")
	}
	return signature.Serialize()[:], nil
}

// Verify returns false for malformed signatures, and an error only for
// malformed public keys.
func (schnorrProvider) Verify(hash *externalapi.DomainHash, signature []byte, publicKey string) (bool, error) {
	publicKeyBytes, err := hex.DecodeString(publicKey)
	if err != nil {
		return false, errors.Wrapf(err, "public key %s is not hex encoded", publicKey)
	}
	schnorrPublicKey, err := secp256k1.DeserializeSchnorrPubKey(publicKeyBytes)
	if err != nil {
		return false, errors.Wrapf(err, "invalid public key %s", publicKey)
	}
	schnorrSignature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(signature)
	if err != nil {
		return false, nil
	}
	secpHash := secp256k1.Hash(*hash.ByteArray())
	return schnorrPublicKey.SchnorrVerify(&secpHash, schnorrSignature), nil
}

// IsValidPublicKey returns whether publicKey is the hex encoding of a
// serialized Schnorr public key
func IsValidPublicKey(publicKey string) bool {
	publicKeyBytes, err := hex.DecodeString(publicKey)
	if err != nil {
		return false
	}
	_, err = secp256k1.DeserializeSchnorrPubKey(publicKeyBytes)
	return err == nil
}
