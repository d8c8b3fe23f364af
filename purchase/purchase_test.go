// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package purchase_test

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/purchase"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
)

const (
	testingDirName = "testing"
	purchaseWindow = 300 * time.Millisecond
)

func setup(t *testing.T) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	err := registry.Initialise()
	assert.Nil(t, err, "registry initialise")
	err = reservation.Initialise()
	assert.Nil(t, err, "reservation initialise")
	err = purchase.Initialise(purchaseWindow)
	assert.Nil(t, err, "purchase initialise")
}

func teardown() {
	_ = purchase.Finalise()
	_ = reservation.Finalise()
	_ = registry.Finalise()
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

// a fake peer: an in-process transaction plane listener
type fakePeer struct {
	name     string
	listener net.Listener
	received chan string // every line the peer reads
}

// startPeer - listen on loopback and register under the peer name
//
// behaviour:
//
//	"answer"  - reply to INFORM_Req with a valid INFORM_Res
//	"silent"  - accept the connection, never reply
func startPeer(t *testing.T, name string, behaviour string) *fakePeer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	assert.Nil(t, err, "peer listen")

	port := listener.Addr().(*net.TCPAddr).Port
	err = registry.Register(name, "127.0.0.1", port, port)
	assert.Nil(t, err, "peer register")

	p := &fakePeer{
		name:     name,
		listener: listener,
		received: make(chan string, 16),
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if nil != err {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				for {
					line, err := reader.ReadString('\n')
					if nil != err {
						return
					}
					line = strings.TrimSpace(line)
					p.received <- line

					if "answer" == behaviour && strings.HasPrefix(line, protocol.CmdInformReq) {
						fmt.Fprintf(conn, "%s\n", protocol.InformRes{
							Name:     name,
							CCNumber: "4111111111111111",
							CCExpiry: "09/27",
							Address:  "123-Main-St",
						}.Pack())
					}
				}
			}(conn)
		}
	}()

	return p
}

func (p *fakePeer) stop() {
	_ = p.listener.Close()
}

// expect - wait for the next line the peer received
func (p *fakePeer) expect(t *testing.T, prefix string) string {
	t.Helper()
	select {
	case line := <-p.received:
		assert.True(t, strings.HasPrefix(line, prefix), "peer %q got %q, want prefix %q", p.name, line, prefix)
		return line
	case <-time.After(2 * time.Second):
		t.Fatalf("peer %q never received %q", p.name, prefix)
		return ""
	}
}

// waitResolved - wait until the reservation leaves the ledger
func waitResolved(t *testing.T, id protocol.RequestID) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if !reservation.Exists(id) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("reservation %s never resolved", id)
}

func TestPurchaseComplete(t *testing.T) {
	setup(t)
	defer teardown()

	buyer := startPeer(t, "alice", "answer")
	defer buyer.stop()
	seller := startPeer(t, "bob", "answer")
	defer seller.stop()

	id := protocol.RequestID("RQ7001")
	_ = reservation.Create(id, "alice", "bob", "lamp", 35)

	err := purchase.Start(id, "alice")
	assert.Nil(t, err, "start")

	buyer.expect(t, "INFORM_Req lamp 35")
	seller.expect(t, "INFORM_Req lamp 35")

	// the buyer's address is relayed to the seller
	seller.expect(t, "Shipping_Info lamp 123-Main-St")

	waitResolved(t, id)

	// repeating BUY for the now-removed reservation is a no-op
	err = purchase.Start(id, "alice")
	assert.Equal(t, fault.ReservationNotFound, err, "repeat buy")
}

// the seller accepts the connection but never answers: both parties
// get a CANCEL and the reservation is removed
func TestPurchaseSellerTimeout(t *testing.T) {
	setup(t)
	defer teardown()

	buyer := startPeer(t, "alice", "answer")
	defer buyer.stop()
	seller := startPeer(t, "bob", "silent")
	defer seller.stop()

	id := protocol.RequestID("RQ7002")
	_ = reservation.Create(id, "alice", "bob", "lamp", 35)

	err := purchase.Start(id, "alice")
	assert.Nil(t, err, "start")

	buyer.expect(t, "INFORM_Req lamp 35")
	seller.expect(t, "INFORM_Req lamp 35")

	buyer.expect(t, "CANCEL seller did not confirm")
	seller.expect(t, "CANCEL seller did not confirm")

	waitResolved(t, id)

	err = purchase.Start(id, "alice")
	assert.Equal(t, fault.ReservationNotFound, err, "repeat buy after cancel")
}

// the seller is unreachable: the buyer leg is cancelled too
func TestPurchaseSellerRefused(t *testing.T) {
	setup(t)
	defer teardown()

	buyer := startPeer(t, "alice", "answer")
	defer buyer.stop()

	// register a seller on a port nobody listens on
	dead, err := net.Listen("tcp", "127.0.0.1:0")
	assert.Nil(t, err, "probe listen")
	port := dead.Addr().(*net.TCPAddr).Port
	_ = dead.Close()
	_ = registry.Register("bob", "127.0.0.1", port, port)

	id := protocol.RequestID("RQ7003")
	_ = reservation.Create(id, "alice", "bob", "lamp", 35)

	err = purchase.Start(id, "alice")
	assert.Nil(t, err, "start")

	buyer.expect(t, "INFORM_Req lamp 35")
	buyer.expect(t, "CANCEL seller did not confirm")

	waitResolved(t, id)
}

func TestPurchaseWrongBuyer(t *testing.T) {
	setup(t)
	defer teardown()

	id := protocol.RequestID("RQ7004")
	_ = reservation.Create(id, "alice", "bob", "lamp", 35)

	err := purchase.Start(id, "mallory")
	assert.Equal(t, fault.NotReservationBuyer, err, "wrong buyer accepted")

	// the reservation is untouched
	r, err := reservation.Get(id)
	assert.Nil(t, err, "get")
	assert.Equal(t, reservation.Held, r.Status, "status")
}

func TestPurchaseUnknownReservation(t *testing.T) {
	setup(t)
	defer teardown()

	err := purchase.Start("RQ7005", "alice")
	assert.Equal(t, fault.ReservationNotFound, err, "unknown reservation")
}
