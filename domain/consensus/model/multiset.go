package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// Multiset is an order-independent commitment to a set of serialized
// records. Records can be added and removed in any order.
type Multiset interface {
	Add(data []byte)
	Remove(data []byte)
	Hash() *externalapi.DomainHash
	Serialize() []byte
	Clone() Multiset
}
