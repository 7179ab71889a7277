package serialization

import (
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// SerializeAccount serializes the given account
func SerializeAccount(account *externalapi.Account) []byte {
	return appendAccount(nil, account)
}

func appendAccount(b []byte, account *externalapi.Account) []byte {
	b = appendString(b, 1, account.Address)
	b = appendString(b, 2, account.PublicKey)
	b = appendString(b, 3, account.SecondPublicKey)
	b = appendUint64(b, 4, account.Balance)
	b = appendInt64(b, 5, account.VoteWeight)
	b = appendBool(b, 6, account.IsDelegate)
	b = appendString(b, 7, account.Username)
	b = appendUint64(b, 8, account.ProducedBlocks)
	b = appendUint64(b, 9, account.MissedBlocks)
	b = appendUint64(b, 10, account.Fees)
	b = appendUint64(b, 11, account.Rewards)
	b = appendStrings(b, 12, account.Votes)
	b = appendStrings(b, 13, account.Multisignatures)
	b = appendUint64(b, 14, uint64(account.MultiMin))
	b = appendUint64(b, 15, uint64(account.MultiLifetime))
	return b
}

// DeserializeAccount deserializes an account serialized by SerializeAccount
func DeserializeAccount(accountBytes []byte) (*externalapi.Account, error) {
	account := &externalapi.Account{}
	r := newFieldReader(accountBytes)
	for r.next() {
		switch r.num {
		case 1:
			account.Address = r.string()
		case 2:
			account.PublicKey = r.string()
		case 3:
			account.SecondPublicKey = r.string()
		case 4:
			account.Balance = r.uint64()
		case 5:
			account.VoteWeight = r.int64()
		case 6:
			account.IsDelegate = r.bool()
		case 7:
			account.Username = r.string()
		case 8:
			account.ProducedBlocks = r.uint64()
		case 9:
			account.MissedBlocks = r.uint64()
		case 10:
			account.Fees = r.uint64()
		case 11:
			account.Rewards = r.uint64()
		case 12:
			account.Votes = append(account.Votes, r.string())
		case 13:
			account.Multisignatures = append(account.Multisignatures, r.string())
		case 14:
			account.MultiMin = r.uint32()
		case 15:
			account.MultiLifetime = r.uint32()
		default:
			r.skip()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return account, nil
}
