// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package market - the matching and negotiation engine
//
// One SearchRequest per want.  The request is a small state machine
// keyed by its request id:
//
//	COLLECTING  → offers accumulate until the expected count arrives
//	              or the offer window times out, whichever is first
//	EVALUATING  → offers are partitioned and a winner picked
//	NEGOTIATING → the single cheapest above-maximum seller was asked
//	              to meet the buyer's price
//	RESERVED    → a reservation was created, the request is done
//	CLOSED      → nothing matched, the request is done
//
// All structural mutation is serialized under one lock so a request
// can never be evaluated twice or reserved twice.  Request ids of
// finished searches are kept in a TTL tombstone cache so that late
// offers and duplicate ids can be told apart from garbage.
package market

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/bitmark-inc/logger"
)

// timing for the tombstone cache
const (
	tombstoneExpiry  = 10 * time.Minute
	tombstoneCleanup = time.Minute
)

// DefaultOfferWindow - bounded wait for offer collection
const DefaultOfferWindow = 60 * time.Second

// Status - the request lifecycle
type Status int

// statuses in transition order
const (
	Collecting Status = iota
	Evaluating
	Negotiating
	Reserved
	Closed
)

// String - conversion for fmt package
func (s Status) String() string {
	switch s {
	case Collecting:
		return "COLLECTING"
	case Evaluating:
		return "EVALUATING"
	case Negotiating:
		return "NEGOTIATING"
	case Reserved:
		return "RESERVED"
	case Closed:
		return "CLOSED"
	default:
		return "*unknown*"
	}
}

// Offer - a seller's priced bid, immutable once recorded
//
// arrival order matters: the first offer to reach the minimum price
// wins a tie
type Offer struct {
	Seller string `json:"seller"`
	Item   string `json:"item"`
	Price  int    `json:"price"`
}

// SearchRequest - per want state
type SearchRequest struct {
	ID             protocol.RequestID `json:"id"`
	Requester      string             `json:"requester"`
	Item           string             `json:"item"`
	Description    string             `json:"description"`
	MaxPrice       int                `json:"max_price"`
	Offers         []Offer            `json:"offers"`
	ExpectedOffers int                `json:"expected_offers"`
	Status         Status             `json:"status"`
	Negotiating    string             `json:"negotiating,omitempty"` // seller asked to meet the price

	// collector wake up; closed when the expected count arrived
	// or the search was cancelled
	done      chan struct{}
	signalled bool
}

// globals for this module
type marketData struct {
	sync.Mutex // to allow locking

	log *logger.L

	requests    map[protocol.RequestID]*SearchRequest
	tombstones  *cache.Cache // request id → final disposition
	offerWindow time.Duration

	changed bool

	// set once during initialise
	initialised bool
}

// global data
var globalData marketData

// Initialise - set up the engine
//
// offerWindow of zero selects the default
func Initialise(offerWindow time.Duration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	if 0 == offerWindow {
		offerWindow = DefaultOfferWindow
	}

	globalData.log = logger.New("market")
	globalData.log.Infof("starting… offer window: %s", offerWindow)

	globalData.requests = make(map[protocol.RequestID]*SearchRequest)
	globalData.tombstones = cache.New(tombstoneExpiry, tombstoneCleanup)
	globalData.offerWindow = offerWindow
	globalData.changed = false
	globalData.initialised = true

	return nil
}

// Finalise - cancel all collectors and drop state
func Finalise() error {
	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.Lock()
	defer globalData.Unlock()

	// wake any pending collector; the request map is cleared so
	// the wake up becomes a no-op
	for _, r := range globalData.requests {
		if !r.signalled {
			r.signalled = true
			close(r.done)
		}
	}

	globalData.log.Info("finished")
	globalData.log.Flush()

	globalData.requests = nil
	globalData.tombstones = nil
	globalData.initialised = false

	return nil
}

// IsChanged - mutations since the last snapshot
func IsChanged() bool {
	globalData.Lock()
	defer globalData.Unlock()

	return globalData.changed
}

// ClearChanged - called by the snapshot saver after a write
func ClearChanged() {
	globalData.Lock()
	defer globalData.Unlock()

	globalData.changed = false
}

// Active - copies of all live requests, for the snapshot
func Active() []SearchRequest {
	globalData.Lock()
	defer globalData.Unlock()

	all := make([]SearchRequest, 0, len(globalData.requests))
	for _, r := range globalData.requests {
		c := *r
		c.Offers = append([]Offer(nil), r.Offers...)
		all = append(all, c)
	}
	return all
}

// StatusOf - current status of a request id, for tests and enquiries
func StatusOf(id protocol.RequestID) (Status, error) {
	globalData.Lock()
	defer globalData.Unlock()

	r, ok := globalData.requests[id]
	if !ok {
		return Closed, fault.RequestNotFound
	}
	return r.Status, nil
}

// record the final disposition of a request id
// caller must hold the lock
func entomb(id protocol.RequestID, disposition string) {
	globalData.tombstones.Set(string(id), disposition, cache.DefaultExpiration)
}

// inUse - is this id taken by a live or recently finished search
// caller must hold the lock
func inUse(id protocol.RequestID) bool {
	if _, ok := globalData.requests[id]; ok {
		return true
	}
	if _, ok := globalData.tombstones.Get(string(id)); ok {
		return true
	}
	return false
}
