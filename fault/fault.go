// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	ExistsError   GenericError
	InvalidError  GenericError
	NotFoundError GenericError
	ProcessError  GenericError
	TimeoutError  GenericError
)

// common errors - keep in alphabetic order
var (
	AlreadyInitialised    = ProcessError("already initialised")
	AlreadyRegistered     = ExistsError("Name already registered")
	DuplicateRequest      = ExistsError("request id already in use")
	InvalidIPAddress      = InvalidError("invalid ip address")
	InvalidLoggerChannel  = InvalidError("invalid logger channel")
	InvalidPeerResponse   = InvalidError("invalid peer response")
	InvalidPort           = InvalidError("invalid port number")
	InvalidPrice          = InvalidError("invalid price")
	InvalidRequestId      = InvalidError("invalid request id")
	InvalidStatus         = ProcessError("invalid status transition")
	MessageTooShort       = InvalidError("message is too short")
	MissingParameters     = InvalidError("missing parameters")
	NotInitialised        = ProcessError("not initialised")
	NotNegotiatingSeller  = InvalidError("not the negotiating seller")
	NotReservationBuyer   = InvalidError("not the reservation buyer")
	NotRegistered         = NotFoundError("Not registered")
	PurchaseTimeout       = TimeoutError("purchase round trip timed out")
	RateLimiting          = ProcessError("rate limiting active")
	RequestNotFound       = NotFoundError("request id not found")
	ReservationNotFound   = NotFoundError("reservation not found")
	ReservationNotHeld    = ProcessError("reservation is not held")
	SnapshotFormat        = ProcessError("snapshot file format error")
	UnknownCommand        = InvalidError("unknown command")
)

// Error - the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e TimeoutError) Error() string  { return string(e) }

// IsErrExists - determine if an error is an ExistsError
func IsErrExists(e error) bool { _, ok := e.(ExistsError); return ok }

// IsErrInvalid - determine if an error is an InvalidError
func IsErrInvalid(e error) bool { _, ok := e.(InvalidError); return ok }

// IsErrNotFound - determine if an error is a NotFoundError
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// IsErrProcess - determine if an error is a ProcessError
func IsErrProcess(e error) bool { _, ok := e.(ProcessError); return ok }

// IsErrTimeout - determine if an error is a TimeoutError
func IsErrTimeout(e error) bool { _, ok := e.(TimeoutError); return ok }
