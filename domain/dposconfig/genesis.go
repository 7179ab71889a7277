package dposconfig

import (
	"fmt"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
	"github.com/dposnet/dposd/domain/consensus/utils/signing"
	"github.com/pkg/errors"
)

// GenesisAccountKeyPair returns the key pair of the account the genesis
// block issues the undistributed supply to
func (p *Params) GenesisAccountKeyPair() (*externalapi.KeyPair, error) {
	return signing.KeyPairFromSecret(fmt.Sprintf("%s genesis account", p.Name))
}

// GenesisDelegateKeyPairs returns the key pairs of the delegates registered
// by the genesis block, in registration order
func (p *Params) GenesisDelegateKeyPairs() ([]*externalapi.KeyPair, error) {
	keyPairs := make([]*externalapi.KeyPair, p.GenesisDelegates)
	for i := range keyPairs {
		keyPair, err := signing.KeyPairFromSecret(fmt.Sprintf("%s genesis delegate %d", p.Name, i))
		if err != nil {
			return nil, err
		}
		keyPairs[i] = keyPair
	}
	return keyPairs, nil
}

// BuildGenesisBlock builds the genesis block of the network. For every
// genesis delegate it funds the delegate, registers it and casts its vote for
// itself, then issues the rest of the supply to the genesis account.
func BuildGenesisBlock(p *Params) (*externalapi.DomainBlock, error) {
	crypto := signing.New()
	genesisKeyPair, err := p.GenesisAccountKeyPair()
	if err != nil {
		return nil, err
	}
	delegateKeyPairs, err := p.GenesisDelegateKeyPairs()
	if err != nil {
		return nil, err
	}

	transactions := make([]*externalapi.DomainTransaction, 0, 3*len(delegateKeyPairs)+1)
	distributed := uint64(0)
	for i, delegateKeyPair := range delegateKeyPairs {
		delegateAddress, err := consensushashing.AddressFromPublicKey(delegateKeyPair.PublicKey)
		if err != nil {
			return nil, err
		}
		stake := p.GenesisDelegateStake * uint64(len(delegateKeyPairs)-i)
		distributed += stake

		fund := &externalapi.DomainTransaction{
			Type:        externalapi.TransactionTypeSend,
			RecipientID: delegateAddress,
			Amount:      stake,
		}
		register := &externalapi.DomainTransaction{
			Type: externalapi.TransactionTypeDelegate,
			Asset: externalapi.DomainTransactionAsset{
				Delegate: &externalapi.DelegateAsset{Username: fmt.Sprintf("genesis_%d", i+1)},
			},
		}
		vote := &externalapi.DomainTransaction{
			Type: externalapi.TransactionTypeVote,
			Asset: externalapi.DomainTransactionAsset{
				Votes: &externalapi.VoteAsset{Added: []string{delegateKeyPair.PublicKey}},
			},
		}

		err = signing.SignTransaction(crypto, fund, genesisKeyPair)
		if err != nil {
			return nil, err
		}
		err = signing.SignTransaction(crypto, register, delegateKeyPair)
		if err != nil {
			return nil, err
		}
		err = signing.SignTransaction(crypto, vote, delegateKeyPair)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, fund, register, vote)
	}

	if distributed > p.GenesisSupply {
		return nil, errors.Errorf("genesis delegate stakes %d exceed the genesis supply %d",
			distributed, p.GenesisSupply)
	}
	genesisAddress, err := consensushashing.AddressFromPublicKey(genesisKeyPair.PublicKey)
	if err != nil {
		return nil, err
	}
	issue := &externalapi.DomainTransaction{
		Type:        externalapi.TransactionTypeSend,
		RecipientID: genesisAddress,
		Amount:      p.GenesisSupply - distributed,
	}
	err = signing.SignTransaction(crypto, issue, genesisKeyPair)
	if err != nil {
		return nil, err
	}
	transactions = append(transactions, issue)

	totalAmount := uint64(0)
	for _, transaction := range transactions {
		totalAmount += transaction.Amount
	}

	block := &externalapi.DomainBlock{
		Version:              p.BlockVersion,
		Height:               1,
		Timestamp:            0,
		NumberOfTransactions: uint32(len(transactions)),
		PayloadLength:        consensushashing.PayloadLength(transactions),
		PayloadHash:          consensushashing.PayloadHash(transactions),
		TotalAmount:          totalAmount,
		Transactions:         transactions,
	}
	err = signing.SignBlock(crypto, block, genesisKeyPair)
	if err != nil {
		return nil, err
	}
	return block, nil
}

func mustBuildGenesisBlock(p *Params) *externalapi.DomainBlock {
	block, err := BuildGenesisBlock(p)
	if err != nil {
		panic(errors.Wrapf(err, "failed to build the %s genesis block", p.Name))
	}
	return block
}
