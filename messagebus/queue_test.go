// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus_test

import (
	"testing"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/messagebus"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/stretchr/testify/assert"
)

func TestQueue(t *testing.T) {
	messagebus.Send("bob", protocol.Reserve{ID: "RQ1234", Item: "lamp", Price: 35})
	messagebus.Send("alice", protocol.Found{ID: "RQ1234", Item: "lamp", Price: 35})

	item := <-messagebus.Chan()
	assert.Equal(t, "bob", item.To, "first destination")
	assert.Equal(t, protocol.Reserve{ID: "RQ1234", Item: "lamp", Price: 35}, item.Message, "first message")

	item = <-messagebus.Chan()
	assert.Equal(t, "alice", item.To, "second destination")
	assert.Equal(t, protocol.Found{ID: "RQ1234", Item: "lamp", Price: 35}, item.Message, "second message")
}
