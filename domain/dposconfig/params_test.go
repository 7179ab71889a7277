package dposconfig

import (
	"testing"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/consensushashing"
)

func TestReward(t *testing.T) {
	params := DevnetParams
	tests := []struct {
		height         uint64
		expectedReward uint64
	}{
		{height: 1, expectedReward: 0},
		{height: 2159, expectedReward: 0},
		{height: 2160, expectedReward: 5 * coin},
		{height: 2160 + 3000000 - 1, expectedReward: 5 * coin},
		{height: 2160 + 3000000, expectedReward: 4 * coin},
		{height: 2160 + 4*3000000, expectedReward: 1 * coin},
		{height: 2160 + 40*3000000, expectedReward: 1 * coin},
	}
	for _, test := range tests {
		reward := params.Reward(test.height)
		if reward != test.expectedReward {
			t.Fatalf("TestReward: Reward(%d): expected %d, got %d", test.height, test.expectedReward, reward)
		}
	}
}

func TestFee(t *testing.T) {
	params := DevnetParams
	tests := []struct {
		transaction *externalapi.DomainTransaction
		expectedFee uint64
	}{
		{&externalapi.DomainTransaction{Type: externalapi.TransactionTypeSend}, 10000000},
		{&externalapi.DomainTransaction{Type: externalapi.TransactionTypeSignature}, 5 * coin},
		{&externalapi.DomainTransaction{Type: externalapi.TransactionTypeDelegate}, 25 * coin},
		{&externalapi.DomainTransaction{Type: externalapi.TransactionTypeVote}, 1 * coin},
		{&externalapi.DomainTransaction{
			Type: externalapi.TransactionTypeMultisignature,
			Asset: externalapi.DomainTransactionAsset{
				Multisignature: &externalapi.MultisignatureAsset{Min: 2, Lifetime: 1, Keysgroup: []string{"a", "b", "c"}},
			},
		}, 20 * coin},
	}
	for _, test := range tests {
		fee := params.Fee(test.transaction)
		if fee != test.expectedFee {
			t.Fatalf("TestFee: %s: expected %d, got %d", test.transaction.Type, test.expectedFee, fee)
		}
	}
}

func TestGenesisBlock(t *testing.T) {
	for _, params := range []*Params{&DevnetParams, &SimnetParams} {
		genesis := params.GenesisBlock
		if genesis.Height != 1 || genesis.PreviousBlockID != nil {
			t.Fatalf("TestGenesisBlock: %s: genesis must be at height 1 without a previous block", params.Name)
		}
		if !genesis.ID.Equal(consensushashing.BlockID(genesis)) {
			t.Fatalf("TestGenesisBlock: %s: genesis id does not match its header", params.Name)
		}
		if !genesis.PayloadHash.Equal(consensushashing.PayloadHash(genesis.Transactions)) {
			t.Fatalf("TestGenesisBlock: %s: genesis payload hash does not match its transactions", params.Name)
		}
		if genesis.TotalAmount != params.GenesisSupply {
			t.Fatalf("TestGenesisBlock: %s: genesis issues %d, expected %d",
				params.Name, genesis.TotalAmount, params.GenesisSupply)
		}
		expectedTransactions := 3*params.GenesisDelegates + 1
		if len(genesis.Transactions) != expectedTransactions {
			t.Fatalf("TestGenesisBlock: %s: expected %d transactions, got %d",
				params.Name, expectedTransactions, len(genesis.Transactions))
		}

		rebuilt, err := BuildGenesisBlock(params)
		if err != nil {
			t.Fatalf("TestGenesisBlock: %s: BuildGenesisBlock: %+v", params.Name, err)
		}
		if !rebuilt.ID.Equal(genesis.ID) {
			t.Fatalf("TestGenesisBlock: %s: the genesis block is not deterministic", params.Name)
		}
	}
}

func TestParamsForNetwork(t *testing.T) {
	params, err := ParamsForNetwork("simnet")
	if err != nil {
		t.Fatalf("TestParamsForNetwork: %+v", err)
	}
	if params != &SimnetParams {
		t.Fatalf("TestParamsForNetwork: expected the simnet params")
	}
	_, err = ParamsForNetwork("nonet")
	if err == nil {
		t.Fatalf("TestParamsForNetwork: expected an error for an unknown network")
	}
}
