package blockbuilder

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/model/testapi"
	"github.com/dposnet/dposd/infrastructure/logger"
)

type testBlockBuilder struct {
	*blockBuilder
}

// NewTestBlockBuilder creates an instance of a TestBlockBuilder
func NewTestBlockBuilder(baseBlockBuilder model.BlockBuilder) testapi.TestBlockBuilder {
	return &testBlockBuilder{blockBuilder: baseBlockBuilder.(*blockBuilder)}
}

func (bb *testBlockBuilder) BuildBlockOnParent(keyPair *externalapi.KeyPair, parent *externalapi.DomainBlock,
	timestamp int64, transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "BuildBlockOnParent")
	defer onEnd()

	return bb.buildBlock(keyPair, parent, timestamp, transactions)
}
