// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"strconv"
	"strings"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
)

// Parse - convert one wire line into a typed message
//
// Tokens are whitespace delimited; unknown commands, short messages
// and malformed fields all return an error so the dispatcher can log
// and drop the line without crashing.
func Parse(line string) (Message, error) {
	tokens := strings.Fields(line)
	if 0 == len(tokens) {
		return nil, fault.MessageTooShort
	}

	command := tokens[0]
	args := tokens[1:]

	switch command {

	case CmdRegister:
		id, err := requireID(args, 5)
		if nil != err {
			return nil, err
		}
		udpPort, err := parsePort(args[3])
		if nil != err {
			return nil, err
		}
		tcpPort, err := parsePort(args[4])
		if nil != err {
			return nil, err
		}
		return Register{
			ID:      id,
			Name:    args[1],
			IP:      args[2],
			UDPPort: udpPort,
			TCPPort: tcpPort,
		}, nil

	case CmdRegistered:
		id, err := requireID(args, 1)
		if nil != err {
			return nil, err
		}
		return Registered{ID: id}, nil

	case CmdRegisterDenied:
		id, err := requireID(args, 2)
		if nil != err {
			return nil, err
		}
		return RegisterDenied{ID: id, Reason: tail(args, 1)}, nil

	case CmdDeregister:
		id, err := requireID(args, 2)
		if nil != err {
			return nil, err
		}
		return Deregister{ID: id, Name: args[1]}, nil

	case CmdDeregistered:
		id, err := requireID(args, 1)
		if nil != err {
			return nil, err
		}
		return Deregistered{ID: id}, nil

	case CmdDeregisterFailed:
		id, err := requireID(args, 2)
		if nil != err {
			return nil, err
		}
		return DeregisterFailed{ID: id, Reason: tail(args, 1)}, nil

	case CmdLookingFor:
		id, err := requireID(args, 5)
		if nil != err {
			return nil, err
		}
		maxPrice, err := parsePrice(args[4])
		if nil != err {
			return nil, err
		}
		return LookingFor{
			ID:          id,
			Requester:   args[1],
			Item:        args[2],
			Description: args[3],
			MaxPrice:    maxPrice,
		}, nil

	case CmdLookingForAck:
		id, err := requireID(args, 2)
		if nil != err {
			return nil, err
		}
		return LookingForAck{ID: id, Text: tail(args, 1)}, nil

	case CmdSearch:
		id, err := requireID(args, 3)
		if nil != err {
			return nil, err
		}
		return Search{ID: id, Item: args[1], Description: args[2]}, nil

	case CmdOffer:
		id, err := requireID(args, 4)
		if nil != err {
			return nil, err
		}
		price, err := parsePrice(args[3])
		if nil != err {
			return nil, err
		}
		return Offer{ID: id, Seller: args[1], Item: args[2], Price: price}, nil

	case CmdNegotiate:
		id, err := requireID(args, 3)
		if nil != err {
			return nil, err
		}
		maxPrice, err := parsePrice(args[2])
		if nil != err {
			return nil, err
		}
		return Negotiate{ID: id, Item: args[1], MaxPrice: maxPrice}, nil

	case CmdAccept, CmdRefuse:
		id, err := requireID(args, 4)
		if nil != err {
			return nil, err
		}
		maxPrice, err := parsePrice(args[3])
		if nil != err {
			return nil, err
		}
		if CmdAccept == command {
			return Accept{ID: id, Seller: args[1], Item: args[2], MaxPrice: maxPrice}, nil
		}
		return Refuse{ID: id, Seller: args[1], Item: args[2], MaxPrice: maxPrice}, nil

	case CmdFound:
		id, err := requireID(args, 3)
		if nil != err {
			return nil, err
		}
		price, err := parsePrice(args[2])
		if nil != err {
			return nil, err
		}
		return Found{ID: id, Item: args[1], Price: price}, nil

	case CmdNotFound:
		id, err := requireID(args, 3)
		if nil != err {
			return nil, err
		}
		maxPrice, err := parsePrice(args[2])
		if nil != err {
			return nil, err
		}
		return NotFound{ID: id, Item: args[1], MaxPrice: maxPrice}, nil

	case CmdReserve:
		id, err := requireID(args, 3)
		if nil != err {
			return nil, err
		}
		price, err := parsePrice(args[2])
		if nil != err {
			return nil, err
		}
		return Reserve{ID: id, Item: args[1], Price: price}, nil

	case CmdBuy:
		id, err := requireID(args, 2)
		if nil != err {
			return nil, err
		}
		return Buy{ID: id, Buyer: args[1]}, nil

	case CmdCancel:
		return parseCancel(args)

	case CmdInformReq:
		if 2 > len(args) {
			return nil, fault.MessageTooShort
		}
		price, err := parsePrice(args[1])
		if nil != err {
			return nil, err
		}
		return InformReq{Item: args[0], Price: price}, nil

	case CmdInformRes:
		if 4 > len(args) {
			return nil, fault.MessageTooShort
		}
		return InformRes{
			Name:     args[0],
			CCNumber: args[1],
			CCExpiry: args[2],
			Address:  tail(args, 3),
		}, nil

	case CmdShippingInfo:
		if 2 > len(args) {
			return nil, fault.MessageTooShort
		}
		return ShippingInfo{Item: args[0], Address: tail(args, 1)}, nil

	default:
		return nil, fault.UnknownCommand
	}
}

// the CANCEL command names three messages:
//
//	CANCEL RQ# buyerName   - buyer drops a reservation
//	CANCEL RQ# item price  - server notifies a counter-party
//	CANCEL reason…         - transaction plane abort, no request id
func parseCancel(args []string) (Message, error) {
	if 1 > len(args) {
		return nil, fault.MessageTooShort
	}

	id, err := ParseRequestID(args[0])
	if nil != err {
		// no request id: transaction plane abort
		return CancelTransaction{Reason: tail(args, 0)}, nil
	}

	switch len(args) {
	case 2:
		return CancelRequest{ID: id, Buyer: args[1]}, nil
	case 3:
		price, err := parsePrice(args[2])
		if nil != err {
			return nil, err
		}
		return CancelNotice{ID: id, Item: args[1], Price: price}, nil
	default:
		return nil, fault.MessageTooShort
	}
}

// requireID - check minimum argument count and parse the request id
// count includes the request id itself
func requireID(args []string, count int) (RequestID, error) {
	if count > len(args) {
		return "", fault.MessageTooShort
	}
	return ParseRequestID(args[0])
}

// tail - join the remaining tokens back into one field
func tail(args []string, from int) string {
	return strings.Join(args[from:], " ")
}

// parsePrice - prices are non-negative integers
func parsePrice(s string) (int, error) {
	price, err := strconv.Atoi(s)
	if nil != err || price < 0 {
		return 0, fault.InvalidPrice
	}
	return price, nil
}

// parsePort - network ports are 1…65535
func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if nil != err || port < 1 || port > 65535 {
		return 0, fault.InvalidPort
	}
	return port, nil
}
