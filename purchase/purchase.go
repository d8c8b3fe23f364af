// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package purchase - two-party purchase confirmation
//
// A BUY for a HELD reservation moves it to IN_TRANSACTION and opens
// one TCP session to the buyer and one to the seller.  Each leg sends
// INFORM_Req and expects an INFORM_Res with payment and shipping
// details before its deadline.  The outcome is all-or-nothing: if
// both legs answer, the buyer's address is relayed to the seller as
// Shipping_Info and the reservation completes; any failure sends a
// CANCEL down both legs and discards the reservation.  No retry.
package purchase

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
	"github.com/bitmark-inc/logger"
)

// DefaultPurchaseWindow - bounded interval for each leg's round trip
const DefaultPurchaseWindow = 300 * time.Second

// extra time allowed for delivering a CANCEL on an abort
const cancelTimeout = 5 * time.Second

// globals for this module
type purchaseData struct {
	sync.Mutex

	log    *logger.L
	window time.Duration

	// in-flight transactions, so finalise can wait
	pending sync.WaitGroup

	// set once during initialise
	initialised bool
}

// global data
var globalData purchaseData

// Initialise - set up the coordinator
//
// window of zero selects the default
func Initialise(window time.Duration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	if 0 == window {
		window = DefaultPurchaseWindow
	}

	globalData.log = logger.New("purchase")
	globalData.log.Infof("starting… purchase window: %s", window)

	globalData.window = window
	globalData.initialised = true

	return nil
}

// Finalise - wait for in-flight transactions
func Finalise() error {
	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.pending.Wait()

	globalData.Lock()
	defer globalData.Unlock()

	globalData.log.Info("finished")
	globalData.log.Flush()

	globalData.initialised = false
	return nil
}

// Start - drive a purchase for a HELD reservation
//
// Repeating BUY for an unknown or already moving reservation is a
// logged no-op; the error return is for the dispatcher's log only,
// nothing goes back on the wire.
func Start(id protocol.RequestID, buyer string) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	res, err := reservation.Get(id)
	if nil != err {
		globalData.log.Infof("%s: buy from %q for unknown reservation ignored", id, buyer)
		return err
	}

	if buyer != res.Buyer {
		globalData.log.Warnf("%s: buy from %q but reservation belongs to %q", id, buyer, res.Buyer)
		return fault.NotReservationBuyer
	}

	err = reservation.Begin(id)
	if nil != err {
		globalData.log.Infof("%s: buy ignored: %s", id, err)
		return err
	}

	globalData.pending.Add(1)
	go run(id, res, globalData.window, globalData.log)

	return nil
}

// outcome of one leg
type legResult struct {
	conn net.Conn
	res  protocol.InformRes
	err  error
}

// the whole round trip runs detached so a stalled peer cannot block
// the dispatcher
func run(id protocol.RequestID, res reservation.Reservation, window time.Duration, log *logger.L) {
	defer globalData.pending.Done()

	request := protocol.InformReq{Item: res.Item, Price: res.Price}

	buyerCh := make(chan legResult, 1)
	sellerCh := make(chan legResult, 1)
	go leg(res.Buyer, request, window, buyerCh)
	go leg(res.Seller, request, window, sellerCh)

	buyer := <-buyerCh
	seller := <-sellerCh

	if nil == buyer.err && nil == seller.err {
		// relay where to ship before letting go of the seller
		err := send(seller.conn, protocol.ShippingInfo{Item: res.Item, Address: buyer.res.Address})
		if nil != err {
			log.Warnf("%s: shipping info relay failed: %s", id, err)
		}
		_ = buyer.conn.Close()
		_ = seller.conn.Close()

		if err := reservation.Complete(id); nil != err {
			log.Errorf("%s: complete error: %s", id, err)
		}
		log.Infof("%s: purchase of %q complete, %s -> %s at %d",
			id, res.Item, res.Seller, res.Buyer, res.Price)
		return
	}

	// all-or-nothing: cancel both legs, never leave one half done
	reason := "purchase failed"
	if nil != buyer.err {
		log.Warnf("%s: buyer leg failed: %s", id, buyer.err)
		reason = "buyer did not confirm"
	}
	if nil != seller.err {
		log.Warnf("%s: seller leg failed: %s", id, seller.err)
		reason = "seller did not confirm"
	}

	abort(res.Buyer, buyer.conn, reason, log)
	abort(res.Seller, seller.conn, reason, log)

	if err := reservation.Abort(id); nil != err {
		log.Errorf("%s: abort error: %s", id, err)
	}
	log.Infof("%s: purchase cancelled: %s", id, reason)
}

// leg - one INFORM round trip
//
// the peer is resolved at dial time; a peer that deregistered
// mid-flow is a normal leg failure, not a crash
func leg(name string, request protocol.InformReq, window time.Duration, out chan<- legResult) {
	peer, err := registry.Lookup(name)
	if nil != err {
		out <- legResult{err: err}
		return
	}

	conn, err := net.DialTimeout("tcp", peer.TransactionAddress(), window)
	if nil != err {
		out <- legResult{err: err}
		return
	}

	_ = conn.SetDeadline(time.Now().Add(window))

	if err := send(conn, request); nil != err {
		out <- legResult{conn: conn, err: err}
		return
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if nil != err {
		out <- legResult{conn: conn, err: err}
		return
	}

	message, err := protocol.Parse(strings.TrimSpace(line))
	if nil != err {
		out <- legResult{conn: conn, err: err}
		return
	}

	informRes, ok := message.(protocol.InformRes)
	if !ok {
		out <- legResult{conn: conn, err: fault.InvalidPeerResponse}
		return
	}

	out <- legResult{conn: conn, res: informRes}
}

// abort - best effort CANCEL delivery to one party
//
// reuses the leg's connection when it is still open, otherwise makes
// one short fresh dial; delivery failure is only logged
func abort(name string, conn net.Conn, reason string, log *logger.L) {
	cancel := protocol.CancelTransaction{Reason: reason}

	if nil != conn {
		_ = conn.SetDeadline(time.Now().Add(cancelTimeout))
		if err := send(conn, cancel); nil == err {
			_ = conn.Close()
			return
		}
		_ = conn.Close()
	}

	peer, err := registry.Lookup(name)
	if nil != err {
		log.Warnf("cancel to %q undeliverable: %s", name, err)
		return
	}

	fresh, err := net.DialTimeout("tcp", peer.TransactionAddress(), cancelTimeout)
	if nil != err {
		log.Warnf("cancel to %q undeliverable: %s", name, err)
		return
	}
	_ = fresh.SetDeadline(time.Now().Add(cancelTimeout))
	if err := send(fresh, cancel); nil != err {
		log.Warnf("cancel to %q undeliverable: %s", name, err)
	}
	_ = fresh.Close()
}

func send(conn net.Conn, message protocol.Message) error {
	_, err := fmt.Fprintf(conn, "%s\n", message.Pack())
	return err
}
