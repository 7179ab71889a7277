// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklogger

import (
	"sync"
	"time"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

var (
	statsLock        sync.Mutex
	appliedLogBlocks int64
	appliedLogTx     int64
	lastBlockLogTime = time.Now()
	blockLogInterval = 10 * time.Second
)

// LogBlock logs the height of a newly applied block as an information
// message to show progress to the user. In order to prevent spam, it limits
// logging to one message every 10 seconds with duration and totals included.
func LogBlock(block *externalapi.DomainBlock) {
	statsLock.Lock()
	defer statsLock.Unlock()

	appliedLogBlocks++
	appliedLogTx += int64(len(block.Transactions))

	now := time.Now()
	duration := now.Sub(lastBlockLogTime)
	if duration < blockLogInterval {
		return
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Round(10 * time.Millisecond)

	blockStr := "blocks"
	if appliedLogBlocks == 1 {
		blockStr = "block"
	}
	txStr := "transactions"
	if appliedLogTx == 1 {
		txStr = "transaction"
	}

	log.Infof("Applied %d %s in the last %s (%d %s, height %d)",
		appliedLogBlocks, blockStr, tDuration, appliedLogTx, txStr, block.Height)

	appliedLogBlocks = 0
	appliedLogTx = 0
	lastBlockLogTime = now
}
