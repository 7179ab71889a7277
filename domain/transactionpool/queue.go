package transactionpool

import (
	"container/list"
	"time"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
)

// poolTransaction is a transaction held by the pool together with the
// time it entered its current queue
type poolTransaction struct {
	transaction *externalapi.DomainTransaction
	addedAt     time.Time

	// timeout overrides Config.TransactionTimeout when set
	timeout time.Duration
}

func (pt *poolTransaction) id() externalapi.DomainHash {
	return *pt.transaction.ID
}

// transactionQueue keeps transactions in insertion order with constant time
// lookup and removal by id
type transactionQueue struct {
	name     string
	order    *list.List
	elements map[externalapi.DomainHash]*list.Element
}

func newTransactionQueue(name string) *transactionQueue {
	return &transactionQueue{
		name:     name,
		order:    list.New(),
		elements: make(map[externalapi.DomainHash]*list.Element),
	}
}

func (q *transactionQueue) len() int {
	return q.order.Len()
}

func (q *transactionQueue) has(id externalapi.DomainHash) bool {
	_, ok := q.elements[id]
	return ok
}

func (q *transactionQueue) get(id externalapi.DomainHash) (*poolTransaction, bool) {
	element, ok := q.elements[id]
	if !ok {
		return nil, false
	}
	return element.Value.(*poolTransaction), true
}

// push appends entry to the back of the queue. It is a no-op if an entry
// with the same id is already in the queue.
func (q *transactionQueue) push(entry *poolTransaction) {
	id := entry.id()
	if _, ok := q.elements[id]; ok {
		return
	}
	q.elements[id] = q.order.PushBack(entry)
}

func (q *transactionQueue) remove(id externalapi.DomainHash) (*poolTransaction, bool) {
	element, ok := q.elements[id]
	if !ok {
		return nil, false
	}
	delete(q.elements, id)
	return q.order.Remove(element).(*poolTransaction), true
}

// popFront removes and returns up to limit entries from the front of the
// queue. A non-positive limit pops everything.
func (q *transactionQueue) popFront(limit int) []*poolTransaction {
	if limit <= 0 || limit > q.order.Len() {
		limit = q.order.Len()
	}
	popped := make([]*poolTransaction, 0, limit)
	for len(popped) < limit {
		element := q.order.Front()
		entry := q.order.Remove(element).(*poolTransaction)
		delete(q.elements, entry.id())
		popped = append(popped, entry)
	}
	return popped
}

// entries returns up to limit entries in insertion order without removing
// them. A non-positive limit returns everything.
func (q *transactionQueue) entries(limit int) []*poolTransaction {
	if limit <= 0 || limit > q.order.Len() {
		limit = q.order.Len()
	}
	entries := make([]*poolTransaction, 0, limit)
	for element := q.order.Front(); element != nil && len(entries) < limit; element = element.Next() {
		entries = append(entries, element.Value.(*poolTransaction))
	}
	return entries
}

// spentBy returns the sum of amounts and fees of the entries sent by
// senderID
func (q *transactionQueue) spentBy(senderID string) uint64 {
	spent := uint64(0)
	for element := q.order.Front(); element != nil; element = element.Next() {
		transaction := element.Value.(*poolTransaction).transaction
		if transaction.SenderID == senderID {
			spent += transaction.Amount + transaction.Fee
		}
	}
	return spent
}
