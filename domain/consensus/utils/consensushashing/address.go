package consensushashing

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/dposnet/dposd/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// AddressSuffix terminates every account address
const AddressSuffix = "D"

// AddressFromPublicKey derives the account address of a hex encoded public
// key: the first 8 bytes of its hash, read as a little endian integer,
// followed by AddressSuffix
func AddressFromPublicKey(publicKey string) (string, error) {
	publicKeyBytes, err := hex.DecodeString(publicKey)
	if err != nil {
		return "", errors.Wrapf(err, "public key %s is not hex encoded", publicKey)
	}
	if len(publicKeyBytes) == 0 {
		return "", errors.New("empty public key")
	}

	writer := hashes.NewPublicKeyAddressWriter()
	writer.InfallibleWrite(publicKeyBytes)
	hash := writer.Finalize().ByteSlice()

	return strconv.FormatUint(binary.LittleEndian.Uint64(hash[:8]), 10) + AddressSuffix, nil
}

// IsValidAddress returns whether address is a number that fits in 64 bits
// followed by AddressSuffix
func IsValidAddress(address string) bool {
	if !strings.HasSuffix(address, AddressSuffix) {
		return false
	}
	number := strings.TrimSuffix(address, AddressSuffix)
	if number == "" || (len(number) > 1 && number[0] == '0') {
		return false
	}
	_, err := strconv.ParseUint(number, 10, 64)
	return err == nil
}
