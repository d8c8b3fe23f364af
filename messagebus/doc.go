// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - queue of server-initiated messages
//
// Handlers queue outbound control plane messages by peer name; the
// dispatcher's writer drains the queue, resolves the peer's current
// UDP address in the registry and transmits.  Resolution happens at
// send time so a peer that deregistered mid-flow simply causes the
// message to be dropped with a log line.
package messagebus
