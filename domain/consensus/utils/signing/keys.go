package signing

import (
	"encoding/hex"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// GenerateKeyPair generates a random key pair
func GenerateKeyPair() (*externalapi.KeyPair, error) {
	schnorrKeyPair, err := secp256k1.GenerateSchnorrKeyPair()
	if err != nil {
		return nil, errors.Wrap(err, "cannot generate key pair")
	}
	return keyPairFromSchnorrKeyPair(schnorrKeyPair)
}

// KeyPairFromPrivateKey returns the key pair of a serialized private key
func KeyPairFromPrivateKey(privateKey []byte) (*externalapi.KeyPair, error) {
	schnorrKeyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return keyPairFromSchnorrKeyPair(schnorrKeyPair)
}

// KeyPairFromSecret deterministically derives a key pair from a secret
// phrase
func KeyPairFromSecret(secret string) (*externalapi.KeyPair, error) {
	privateKey := blake2b.Sum256([]byte(secret))
	return KeyPairFromPrivateKey(privateKey[:])
}

func keyPairFromSchnorrKeyPair(schnorrKeyPair *secp256k1.SchnorrKeyPair) (*externalapi.KeyPair, error) {
	publicKey, err := schnorrKeyPair.SchnorrPublicKey()
	if err != nil {
		return nil, errors.Wrap(err, "cannot derive public key")
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "cannot serialize public key")
	}
	return &externalapi.KeyPair{
		PrivateKey: schnorrKeyPair.SerializePrivateKey()[:],
		PublicKey:  hex.EncodeToString(serializedPublicKey[:]),
	}, nil
}
