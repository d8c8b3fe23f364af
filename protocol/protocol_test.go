// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol_test

import (
	"testing"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	id, err := protocol.ParseRequestID("RQ1234")
	assert.Nil(t, err, "valid id rejected")
	assert.Equal(t, protocol.RequestID("RQ1234"), id, "wrong id")

	invalid := []string{"", "RQ", "RQ123", "RQ12345", "RQ12a4", "XX1234", "1234"}
	for _, s := range invalid {
		_, err := protocol.ParseRequestID(s)
		assert.Equal(t, fault.InvalidRequestId, err, "accepted: %q", s)
	}
}

func TestNewRequestID(t *testing.T) {
	for i := 0; i < 100; i += 1 {
		id := protocol.NewRequestID()
		_, err := protocol.ParseRequestID(id.String())
		assert.Nil(t, err, "generated invalid id: %q", id)
	}
}

// serialize then parse every message type and require field-for-field
// equality
func TestRoundTrip(t *testing.T) {
	id := protocol.RequestID("RQ4321")

	messages := []protocol.Message{
		protocol.Register{ID: id, Name: "alice", IP: "10.0.0.7", UDPPort: 6000, TCPPort: 6001},
		protocol.Registered{ID: id},
		protocol.RegisterDenied{ID: id, Reason: "Name already registered"},
		protocol.Deregister{ID: id, Name: "alice"},
		protocol.Deregistered{ID: id},
		protocol.DeregisterFailed{ID: id, Reason: "Not registered"},
		protocol.LookingFor{ID: id, Requester: "alice", Item: "lamp", Description: "brass", MaxPrice: 40},
		protocol.LookingForAck{ID: id, Text: "SEARCH request broadcasted"},
		protocol.Search{ID: id, Item: "lamp", Description: "brass"},
		protocol.Offer{ID: id, Seller: "bob", Item: "lamp", Price: 35},
		protocol.Negotiate{ID: id, Item: "lamp", MaxPrice: 40},
		protocol.Accept{ID: id, Seller: "bob", Item: "lamp", MaxPrice: 40},
		protocol.Refuse{ID: id, Seller: "bob", Item: "lamp", MaxPrice: 40},
		protocol.Found{ID: id, Item: "lamp", Price: 35},
		protocol.NotFound{ID: id, Item: "lamp", MaxPrice: 40},
		protocol.Reserve{ID: id, Item: "lamp", Price: 35},
		protocol.Buy{ID: id, Buyer: "alice"},
		protocol.CancelRequest{ID: id, Buyer: "alice"},
		protocol.CancelNotice{ID: id, Item: "lamp", Price: 35},
		protocol.InformReq{Item: "lamp", Price: 35},
		protocol.InformRes{Name: "alice", CCNumber: "4111111111111111", CCExpiry: "09/27", Address: "123 Main St Montreal"},
		protocol.ShippingInfo{Item: "lamp", Address: "123 Main St Montreal"},
		protocol.CancelTransaction{Reason: "seller leg timed out"},
	}

	for _, m := range messages {
		line := m.Pack()
		parsed, err := protocol.Parse(line)
		assert.Nil(t, err, "parse failed: %q", line)
		assert.Equal(t, m, parsed, "round trip mismatch: %q", line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line string
		err  error
	}{
		{"", fault.MessageTooShort},
		{"   ", fault.MessageTooShort},
		{"BOGUS RQ1234", fault.UnknownCommand},
		{"REGISTER RQ1234 alice 10.0.0.7 6000", fault.MessageTooShort},
		{"REGISTER RQ1234 alice 10.0.0.7 notaport 6001", fault.InvalidPort},
		{"REGISTER RQ1234 alice 10.0.0.7 6000 99999", fault.InvalidPort},
		{"OFFER RQ1234 bob lamp", fault.MessageTooShort},
		{"OFFER RQ1234 bob lamp -3", fault.InvalidPrice},
		{"OFFER RQ1234 bob lamp abc", fault.InvalidPrice},
		{"OFFER XX9999 bob lamp 35", fault.InvalidRequestId},
		{"LOOKING_FOR RQ1234 alice lamp brass", fault.MessageTooShort},
		{"BUY RQ1234", fault.MessageTooShort},
		{"CANCEL", fault.MessageTooShort},
		{"CANCEL RQ1234 lamp bad", fault.InvalidPrice},
		{"CANCEL RQ1234 a b c", fault.MessageTooShort},
		{"INFORM_Req lamp", fault.MessageTooShort},
		{"INFORM_Res alice 4111111111111111 09/27", fault.MessageTooShort},
	}

	for _, tc := range tests {
		_, err := protocol.Parse(tc.line)
		assert.Equal(t, tc.err, err, "line: %q", tc.line)
	}
}

// the CANCEL token is shared by three message shapes
func TestParseCancelShapes(t *testing.T) {
	m, err := protocol.Parse("CANCEL RQ1234 alice")
	assert.Nil(t, err, "buyer cancel")
	assert.Equal(t, protocol.CancelRequest{ID: "RQ1234", Buyer: "alice"}, m, "buyer cancel")

	m, err = protocol.Parse("CANCEL RQ1234 lamp 35")
	assert.Nil(t, err, "cancel notice")
	assert.Equal(t, protocol.CancelNotice{ID: "RQ1234", Item: "lamp", Price: 35}, m, "cancel notice")

	m, err = protocol.Parse("CANCEL seller leg timed out")
	assert.Nil(t, err, "transaction cancel")
	assert.Equal(t, protocol.CancelTransaction{Reason: "seller leg timed out"}, m, "transaction cancel")
}

// whitespace runs collapse, fields survive
func TestParseExtraWhitespace(t *testing.T) {
	m, err := protocol.Parse("  OFFER   RQ1234  bob   lamp  35 ")
	assert.Nil(t, err, "parse failed")
	assert.Equal(t, protocol.Offer{ID: "RQ1234", Seller: "bob", Item: "lamp", Price: 35}, m, "fields")
}
