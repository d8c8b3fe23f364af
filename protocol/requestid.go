// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"math/rand"
	"strings"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
)

// RequestID - correlation token in the form "RQ" followed by exactly
// four decimal digits
type RequestID string

const requestIDPrefix = "RQ"

// NewRequestID - generate a random request id
//
// The id space is small so callers must still check for collisions
// against their active set.
func NewRequestID() RequestID {
	digits := []byte{
		byte('1' + rand.Intn(9)), // no leading zero
		byte('0' + rand.Intn(10)),
		byte('0' + rand.Intn(10)),
		byte('0' + rand.Intn(10)),
	}
	return RequestID(requestIDPrefix + string(digits))
}

// ParseRequestID - validate a request id token
func ParseRequestID(s string) (RequestID, error) {
	if !strings.HasPrefix(s, requestIDPrefix) {
		return "", fault.InvalidRequestId
	}
	digits := s[len(requestIDPrefix):]
	if 4 != len(digits) {
		return "", fault.InvalidRequestId
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", fault.InvalidRequestId
		}
	}
	return RequestID(s), nil
}

// String - conversion for fmt package
func (r RequestID) String() string {
	return string(r)
}
