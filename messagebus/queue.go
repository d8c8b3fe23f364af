// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
)

// internal constants
const (
	queueSize = 1000
)

// Item - one queued outbound message
type Item struct {
	To      string // registered peer name
	Message protocol.Message
}

var (
	// for queueing data
	queue = make(chan Item, queueSize)
)

// Send - queue an outbound message for a named peer
func Send(to string, message protocol.Message) {
	queue <- Item{
		To:      to,
		Message: message,
	}
}

// Chan - channel to read from
func Chan() <-chan Item {
	return queue
}
