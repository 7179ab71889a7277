package externalapi

// KeyPair is a signing key. PublicKey is the hex encoding of the serialized
// public key, as it appears on blocks, transactions and accounts.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  string
}
