// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reservation - ledger of agreed but unfinalized sales
//
// A reservation is created when the resolver finds a winning offer or
// a negotiation is accepted.  It is keyed by the request id of the
// search that produced it and only ever moves forward:
//
//	HELD → IN_TRANSACTION → {COMPLETED, CANCELLED}
//
// COMPLETED and CANCELLED reservations are removed from the ledger.
package reservation

import (
	"sync"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/messagebus"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/bitmark-inc/logger"
)

// Status - the reservation lifecycle
type Status int

// statuses in transition order
const (
	Held Status = iota
	InTransaction
	Completed
	Cancelled
)

// String - conversion for fmt package
func (s Status) String() string {
	switch s {
	case Held:
		return "HELD"
	case InTransaction:
		return "IN_TRANSACTION"
	case Completed:
		return "COMPLETED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "*unknown*"
	}
}

// Reservation - one agreed sale pending purchase confirmation
type Reservation struct {
	ID     protocol.RequestID `json:"id"`
	Buyer  string             `json:"buyer"`
	Seller string             `json:"seller"`
	Item   string             `json:"item"`
	Price  int                `json:"price"`
	Status Status             `json:"status"`
}

// globals for this module
type reservationData struct {
	sync.RWMutex // to allow locking

	log     *logger.L
	entries map[protocol.RequestID]*Reservation

	changed bool

	// set once during initialise
	initialised bool
}

// global data
var globalData reservationData

// Initialise - set up the ledger
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("reservation")
	globalData.log.Info("starting…")

	globalData.entries = make(map[protocol.RequestID]*Reservation)
	globalData.changed = false
	globalData.initialised = true

	return nil
}

// Finalise - stop all background tasks
func Finalise() error {
	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.Lock()
	defer globalData.Unlock()

	globalData.log.Info("finished")
	globalData.log.Flush()

	globalData.entries = nil
	globalData.initialised = false

	return nil
}

// Create - record an agreed sale as HELD
func Create(id protocol.RequestID, buyer string, seller string, item string, price int) error {
	globalData.Lock()
	defer globalData.Unlock()

	if _, ok := globalData.entries[id]; ok {
		return fault.DuplicateRequest
	}

	globalData.entries[id] = &Reservation{
		ID:     id,
		Buyer:  buyer,
		Seller: seller,
		Item:   item,
		Price:  price,
		Status: Held,
	}
	globalData.changed = true

	globalData.log.Infof("%s: held %q for %s → %s at %d", id, item, seller, buyer, price)
	return nil
}

// Get - fetch a copy of a reservation
func Get(id protocol.RequestID) (Reservation, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	r, ok := globalData.entries[id]
	if !ok {
		return Reservation{}, fault.ReservationNotFound
	}
	return *r, nil
}

// Exists - check without fetching
func Exists(id protocol.RequestID) bool {
	globalData.RLock()
	defer globalData.RUnlock()

	_, ok := globalData.entries[id]
	return ok
}

// Cancel - buyer drops a reservation
//
// The seller is notified with a CANCEL notice over the control plane.
// Cancelling an unknown or already resolved reservation is a logged
// no-op; the originator may have already timed out and moved on.
func Cancel(id protocol.RequestID, initiator string) {
	globalData.Lock()

	r, ok := globalData.entries[id]
	if !ok {
		globalData.Unlock()
		globalData.log.Infof("%s: cancel from %q for unknown reservation ignored", id, initiator)
		return
	}

	// a reservation mid purchase belongs to the transaction
	// coordinator; the coordinator resolves it all-or-nothing
	if Held != r.Status {
		globalData.Unlock()
		globalData.log.Warnf("%s: cancel from %q ignored, status %s", id, initiator, r.Status)
		return
	}

	delete(globalData.entries, id)
	globalData.changed = true
	notice := protocol.CancelNotice{ID: id, Item: r.Item, Price: r.Price}
	seller := r.Seller
	globalData.Unlock()

	messagebus.Send(seller, notice)
	globalData.log.Infof("%s: cancelled by %q, notified %q", id, initiator, seller)
}

// Begin - move HELD to IN_TRANSACTION
func Begin(id protocol.RequestID) error {
	globalData.Lock()
	defer globalData.Unlock()

	r, ok := globalData.entries[id]
	if !ok {
		return fault.ReservationNotFound
	}
	if Held != r.Status {
		return fault.ReservationNotHeld
	}

	r.Status = InTransaction
	globalData.changed = true

	globalData.log.Infof("%s: in transaction", id)
	return nil
}

// Complete - purchase confirmed by both parties, remove from ledger
func Complete(id protocol.RequestID) error {
	return finish(id, Completed)
}

// Abort - purchase failed, remove from ledger
func Abort(id protocol.RequestID) error {
	return finish(id, Cancelled)
}

func finish(id protocol.RequestID, status Status) error {
	globalData.Lock()
	defer globalData.Unlock()

	r, ok := globalData.entries[id]
	if !ok {
		return fault.ReservationNotFound
	}
	if InTransaction != r.Status {
		return fault.InvalidStatus
	}

	delete(globalData.entries, id)
	globalData.changed = true

	globalData.log.Infof("%s: %s", id, status)
	return nil
}

// List - all reservations, for the snapshot
func List() []Reservation {
	globalData.RLock()
	defer globalData.RUnlock()

	all := make([]Reservation, 0, len(globalData.entries))
	for _, r := range globalData.entries {
		all = append(all, *r)
	}
	return all
}

// IsChanged - mutations since the last snapshot
func IsChanged() bool {
	globalData.RLock()
	defer globalData.RUnlock()

	return globalData.changed
}

// ClearChanged - called by the snapshot saver after a write
func ClearChanged() {
	globalData.Lock()
	defer globalData.Unlock()

	globalData.changed = false
}

// Restore - bulk load from a snapshot, startup only
//
// A reservation saved mid transaction cannot be resumed, the far end
// connections are gone; it reverts to HELD so the buyer can BUY again
// or cancel.
func Restore(entries []Reservation) {
	globalData.Lock()
	defer globalData.Unlock()

	for _, r := range entries {
		e := r
		if InTransaction == e.Status {
			e.Status = Held
		}
		globalData.entries[e.ID] = &e
	}
	globalData.log.Infof("restored %d reservations", len(entries))
}
