// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/messagebus"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
)

// evaluate - resolve a finished collection, exactly once
//
// called only by the request's collector; the status guard makes a
// second call, or a call racing a cancel, a no-op
func evaluate(id protocol.RequestID) {
	globalData.Lock()

	r, ok := globalData.requests[id]
	if !ok || Collecting != r.Status {
		globalData.Unlock()
		return
	}
	r.Status = Evaluating

	// partition: scanning in arrival order and keeping only a
	// strictly cheaper offer gives the stable first-arrival
	// tie-break for free
	var valid, above *Offer
	for i := range r.Offers {
		o := &r.Offers[i]
		if o.Price <= r.MaxPrice {
			if nil == valid || o.Price < valid.Price {
				valid = o
			}
		} else {
			if nil == above || o.Price < above.Price {
				above = o
			}
		}
	}

	sends := []messagebus.Item{}

	switch {
	case nil != valid:
		winner := *valid
		err := reservation.Create(id, r.Requester, winner.Seller, winner.Item, winner.Price)
		if nil != err {
			// cannot happen while the id is still an active search
			globalData.log.Errorf("%s: reservation create error: %s", id, err)
		}
		r.Status = Reserved
		delete(globalData.requests, id)
		entomb(id, "reserved")
		sends = append(sends,
			messagebus.Item{To: winner.Seller, Message: protocol.Reserve{ID: id, Item: winner.Item, Price: winner.Price}},
			messagebus.Item{To: r.Requester, Message: protocol.Found{ID: id, Item: winner.Item, Price: winner.Price}},
		)
		globalData.log.Infof("%s: reserved %q from %q at %d", id, winner.Item, winner.Seller, winner.Price)

	case nil != above:
		// one seller only, no fallback to the second-cheapest
		// if this one refuses
		r.Status = Negotiating
		r.Negotiating = above.Seller
		sends = append(sends,
			messagebus.Item{To: above.Seller, Message: protocol.Negotiate{ID: id, Item: above.Item, MaxPrice: r.MaxPrice}},
		)
		globalData.log.Infof("%s: negotiating %q with %q, asking %d (offered %d)",
			id, above.Item, above.Seller, r.MaxPrice, above.Price)

	default:
		// no offers at all: closed without a reply, the buyer's
		// front end has its own view of the window
		r.Status = Closed
		delete(globalData.requests, id)
		entomb(id, "closed")
		globalData.log.Infof("%s: no offers, closed", id)
	}

	globalData.changed = true
	globalData.Unlock()

	for _, item := range sends {
		messagebus.Send(item.To, item.Message)
	}
}

// Accept - the negotiated seller agrees to the buyer's price
//
// the buyer is informed at the original maximum price, not at the
// seller's asking price
func Accept(id protocol.RequestID, seller string) error {
	globalData.Lock()

	r, err := negotiating(id, seller)
	if nil != err {
		globalData.Unlock()
		return err
	}

	err = reservation.Create(id, r.Requester, seller, r.Item, r.MaxPrice)
	if nil != err {
		globalData.log.Errorf("%s: reservation create error: %s", id, err)
	}
	r.Status = Reserved
	delete(globalData.requests, id)
	entomb(id, "reserved")
	globalData.changed = true

	requester := r.Requester
	item := r.Item
	maxPrice := r.MaxPrice
	globalData.Unlock()

	messagebus.Send(requester, protocol.Found{ID: id, Item: item, Price: maxPrice})
	globalData.log.Infof("%s: %q accepted, reserved %q at %d", id, seller, item, maxPrice)
	return nil
}

// Refuse - the negotiated seller declines
func Refuse(id protocol.RequestID, seller string) error {
	globalData.Lock()

	r, err := negotiating(id, seller)
	if nil != err {
		globalData.Unlock()
		return err
	}

	r.Status = Closed
	delete(globalData.requests, id)
	entomb(id, "refused")
	globalData.changed = true

	requester := r.Requester
	item := r.Item
	maxPrice := r.MaxPrice
	globalData.Unlock()

	messagebus.Send(requester, protocol.NotFound{ID: id, Item: item, MaxPrice: maxPrice})
	globalData.log.Infof("%s: %q refused, closed", id, seller)
	return nil
}

// validate a negotiation reply
// caller must hold the lock
func negotiating(id protocol.RequestID, seller string) (*SearchRequest, error) {
	if !globalData.initialised {
		return nil, fault.NotInitialised
	}

	r, ok := globalData.requests[id]
	if !ok || Negotiating != r.Status {
		globalData.log.Warnf("%s: negotiation reply from %q for non-negotiating request", id, seller)
		return nil, fault.RequestNotFound
	}
	if seller != r.Negotiating {
		globalData.log.Warnf("%s: negotiation reply from %q but %q was asked", id, seller, r.Negotiating)
		return nil, fault.NotNegotiatingSeller
	}
	return r, nil
}

// Restore - bulk load from a snapshot, startup only
//
// Collectors are not resumed across a restart: a request reloaded in
// a non-terminal state gets a fresh offer window and is re-evaluated
// from the offers it already has.
func Restore(requests []SearchRequest) {
	globalData.Lock()
	defer globalData.Unlock()

	restored := 0
	for _, s := range requests {
		r := s
		switch r.Status {
		case Collecting, Evaluating:
			r.Status = Collecting
		case Negotiating:
			// keeps waiting for ACCEPT / REFUSE, no collector
		default:
			continue // terminal states are not restored
		}

		r.done = make(chan struct{})
		r.signalled = false
		globalData.requests[r.ID] = &r
		restored += 1

		if Collecting == r.Status {
			if len(r.Offers) >= r.ExpectedOffers {
				r.signalled = true
				close(r.done)
			}
			go collect(r.ID, r.done, globalData.offerWindow)
		}
	}
	globalData.log.Infof("restored %d search requests", restored)
}
