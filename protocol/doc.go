// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package protocol - the marketplace wire protocol
//
// Messages are whitespace delimited tokens.  Control plane messages
// travel over the connectionless UDP channel and carry a request id
// as their second token; the request id correlates all messages
// belonging to one want/offer/negotiate/buy flow.  Transaction plane
// messages travel over a dedicated TCP connection and carry no
// request id, the connection itself is the correlation.
//
// The codec is stateless: Parse converts a line into a typed message
// and every message type packs back to the identical line.
package protocol
