// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"time"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/messagebus"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
)

// OpenSearch - start a want
//
// Broadcasts SEARCH to every registered peer except the requester and
// starts the bounded offer collection.  The expected offer count is
// fixed at broadcast time; peers joining later are not waited for.
func OpenSearch(id protocol.RequestID, requester string, item string, description string, maxPrice int) error {
	globalData.Lock()

	if !globalData.initialised {
		globalData.Unlock()
		return fault.NotInitialised
	}

	if inUse(id) || reservation.Exists(id) {
		globalData.Unlock()
		globalData.log.Warnf("%s: duplicate request id from %q", id, requester)
		return fault.DuplicateRequest
	}

	if !registry.IsRegistered(requester) {
		globalData.Unlock()
		globalData.log.Warnf("%s: want from unregistered peer %q", id, requester)
		return fault.NotRegistered
	}

	sellers := []string{}
	for _, peer := range registry.List() {
		if peer.Name != requester {
			sellers = append(sellers, peer.Name)
		}
	}

	r := &SearchRequest{
		ID:             id,
		Requester:      requester,
		Item:           item,
		Description:    description,
		MaxPrice:       maxPrice,
		Offers:         []Offer{},
		ExpectedOffers: len(sellers),
		Status:         Collecting,
		done:           make(chan struct{}),
	}
	globalData.requests[id] = r
	globalData.changed = true

	// nobody to ask: evaluate straight away
	if 0 == len(sellers) {
		r.signalled = true
		close(r.done)
	}

	window := globalData.offerWindow
	globalData.Unlock()

	globalData.log.Infof("%s: %q looking for %q (%s) max %d, asking %d peers",
		id, requester, item, description, maxPrice, len(sellers))

	// queue outside the lock, the bus may block when full
	for _, seller := range sellers {
		messagebus.Send(seller, protocol.Search{ID: id, Item: item, Description: description})
	}

	go collect(id, r.done, window)

	return nil
}

// one collector per request: a bounded, cancellable wait
func collect(id protocol.RequestID, done <-chan struct{}, window time.Duration) {
	timer := time.NewTimer(window)
	select {
	case <-done:
	case <-timer.C:
	}
	timer.Stop()

	evaluate(id)
}

// AddOffer - record a seller's bid
//
// Offers arriving after the request moved past COLLECTING are
// accepted but ignored; offers for an unknown id are dropped with a
// log line, the originator may have a stale request id.
func AddOffer(id protocol.RequestID, seller string, item string, price int) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	r, ok := globalData.requests[id]
	if !ok {
		if disposition, found := globalData.tombstones.Get(string(id)); found {
			globalData.log.Infof("%s: late offer from %q ignored, request %s", id, seller, disposition)
		} else {
			globalData.log.Warnf("%s: offer from %q for unknown request", id, seller)
		}
		return fault.RequestNotFound
	}

	if Collecting != r.Status {
		globalData.log.Infof("%s: offer from %q ignored, status %s", id, seller, r.Status)
		return nil
	}

	r.Offers = append(r.Offers, Offer{Seller: seller, Item: item, Price: price})
	globalData.changed = true

	globalData.log.Infof("%s: offer %d/%d from %q: %q at %d",
		id, len(r.Offers), r.ExpectedOffers, seller, item, price)

	if len(r.Offers) >= r.ExpectedOffers && !r.signalled {
		r.signalled = true
		close(r.done)
	}

	return nil
}

// CancelSearch - buyer withdraws a want that has not been reserved
//
// Unblocks the collector if one is still waiting.  Returns false if
// the id has no live search so the caller can try the reservation
// ledger instead.
func CancelSearch(id protocol.RequestID) bool {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return false
	}

	r, ok := globalData.requests[id]
	if !ok {
		return false
	}

	r.Status = Closed
	delete(globalData.requests, id)
	entomb(id, "cancelled")
	globalData.changed = true

	if !r.signalled {
		r.signalled = true
		close(r.done)
	}

	globalData.log.Infof("%s: search cancelled", id)
	return true
}
