// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/market"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/purchase"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
	"github.com/bitmark-inc/logger"
)

// acknowledgement text sent with LOOKING_FOR_ACK
const searchBroadcast = "SEARCH request broadcasted"

// route - handle one inbound control plane line
//
// the returned message, if any, goes straight back to the sender;
// everything addressed to other peers travels via the message bus.
// A nil reply with a nil error means the message was consumed
// without a direct response.
func route(line string, source string, log *logger.L) protocol.Message {

	message, err := protocol.Parse(line)
	if nil != err {
		log.Warnf("%s: unparseable message %q: %s", source, line, err)
		return nil
	}

	switch m := message.(type) {

	case protocol.Register:
		err := registry.Register(m.Name, m.IP, m.UDPPort, m.TCPPort)
		if nil != err {
			return protocol.RegisterDenied{ID: m.ID, Reason: err.Error()}
		}
		return protocol.Registered{ID: m.ID}

	case protocol.Deregister:
		err := registry.Deregister(m.Name)
		if nil != err {
			return protocol.DeregisterFailed{ID: m.ID, Reason: err.Error()}
		}
		return protocol.Deregistered{ID: m.ID}

	case protocol.LookingFor:
		err := market.OpenSearch(m.ID, m.Requester, m.Item, m.Description, m.MaxPrice)
		if nil != err {
			log.Warnf("%s: search %s from %q dropped: %s", source, m.ID, m.Requester, err)
			return nil
		}
		return protocol.LookingForAck{ID: m.ID, Text: searchBroadcast}

	case protocol.Offer:
		err := market.AddOffer(m.ID, m.Seller, m.Item, m.Price)
		if nil != err {
			log.Warnf("%s: offer for %s from %q dropped: %s", source, m.ID, m.Seller, err)
		}
		return nil

	case protocol.Accept:
		err := market.Accept(m.ID, m.Seller)
		if nil != err {
			log.Warnf("%s: accept for %s from %q dropped: %s", source, m.ID, m.Seller, err)
		}
		return nil

	case protocol.Refuse:
		err := market.Refuse(m.ID, m.Seller)
		if nil != err {
			log.Warnf("%s: refuse for %s from %q dropped: %s", source, m.ID, m.Seller, err)
		}
		return nil

	case protocol.CancelRequest:
		// an open search first, then a held reservation
		if market.CancelSearch(m.ID) {
			log.Infof("%s: search %s cancelled by %q", source, m.ID, m.Buyer)
			return nil
		}
		reservation.Cancel(m.ID, m.Buyer)
		return nil

	case protocol.Buy:
		err := purchase.Start(m.ID, m.Buyer)
		if nil != err && fault.IsErrInvalid(err) {
			log.Warnf("%s: buy for %s from %q rejected: %s", source, m.ID, m.Buyer, err)
		}
		return nil

	default:
		// a server to peer message looped back at us
		log.Warnf("%s: unroutable message %q", source, line)
		return nil
	}
}
