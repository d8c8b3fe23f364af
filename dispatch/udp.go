// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"net"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
)

// the control plane datagram reader
type udpListener struct {
	log *logger.L
}

// Run - read loop, terminates on shutdown
func (u *udpListener) Run(args interface{}, shutdown <-chan struct{}) {
	u.log = args.(*logger.L)

	u.log.Info("udp: starting…")

	buffer := make([]byte, maximumPacketSize)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		default:
		}

		_ = globalData.socket.SetReadDeadline(time.Now().Add(pollInterval))
		n, addr, err := globalData.socket.ReadFrom(buffer)
		if nil != err {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue loop
			}
			// closed socket means shutdown is in progress
			break loop
		}

		if !globalData.limiter.Allow() {
			u.log.Warn("udp: rate limit exceeded, dropping")
			continue loop
		}

		line := strings.TrimSpace(string(buffer[:n]))
		go handlePacket(line, addr, u.log)
	}
	u.log.Info("udp: shutting down…")
}

// handlePacket - route one datagram and send any direct reply to its
// source address
func handlePacket(line string, addr net.Addr, log *logger.L) {
	log.Debugf("udp: %s: received: %q", addr, line)

	reply := route(line, addr.String(), log)
	if nil == reply {
		return
	}

	packed := reply.Pack()
	log.Debugf("udp: %s: reply: %q", addr, packed)
	_, err := globalData.socket.WriteTo([]byte(packed), addr)
	if nil != err {
		log.Warnf("udp: %s: reply error: %s", addr, err)
	}
}
