package model

import "github.com/dposnet/dposd/domain/consensus/model/externalapi"

// NodeState is the mutable state of the node shared by the ledger
// mutation jobs. It is owned by the sequencer and only ever touched from
// inside a sequenced job.
type NodeState struct {
	// LastBlock is the current chain tip
	LastBlock *externalapi.DomainBlock

	// Loaded is set once the chain was loaded from the database or the
	// genesis block was applied
	Loaded bool

	// Syncing is set while the node catches up with the network. Applied
	// blocks are not broadcast while it is set.
	Syncing bool

	// Ticking is set while a round is being closed or reverted
	Ticking bool

	// notifications are the observer calls queued by the running job
	notifications []func()
}

// QueueNotification queues an observer call. Queued calls run in order
// once the job that queued them released the consensus lock, so observers
// may read the ledger.
func (state *NodeState) QueueNotification(notification func()) {
	state.notifications = append(state.notifications, notification)
}

// RunNotifications runs and clears the queued observer calls
func (state *NodeState) RunNotifications() {
	notifications := state.notifications
	state.notifications = nil
	for _, notification := range notifications {
		notification()
	}
}
