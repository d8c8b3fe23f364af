// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"net"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/messagebus"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/bitmark-inc/logger"
)

// the outbound side of the control plane
//
// peers are addressed by name; the registry lookup happens at send
// time so a peer that deregistered after being queued simply misses
// the message
type writer struct {
	log *logger.L
}

// Run - bus drain loop, terminates on shutdown
func (w *writer) Run(args interface{}, shutdown <-chan struct{}) {
	w.log = args.(*logger.L)

	w.log.Info("writer: starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case item := <-messagebus.Chan():
			w.deliver(item)
		}
	}
	w.log.Info("writer: shutting down…")
}

func (w *writer) deliver(item messagebus.Item) {
	peer, err := registry.Lookup(item.To)
	if nil != err {
		w.log.Warnf("writer: %q not registered, dropping %q", item.To, item.Message.Pack())
		return
	}

	addr, err := net.ResolveUDPAddr("udp", peer.ControlAddress())
	if nil != err {
		w.log.Errorf("writer: %q bad address %q: %s", item.To, peer.ControlAddress(), err)
		return
	}

	packed := item.Message.Pack()
	w.log.Debugf("writer: %s to %q: %q", addr, item.To, packed)
	_, err = globalData.socket.WriteTo([]byte(packed), addr)
	if nil != err {
		w.log.Warnf("writer: %q send error: %s", item.To, err)
	}
}
