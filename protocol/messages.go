// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package protocol

import (
	"fmt"
)

// command tokens - the first token of every message
const (
	CmdRegister         = "REGISTER"
	CmdRegistered       = "REGISTERED"
	CmdRegisterDenied   = "REGISTER-DENIED"
	CmdDeregister       = "DE-REGISTER"
	CmdDeregistered     = "DE-REGISTERED"
	CmdDeregisterFailed = "DE-REGISTER-FAILED"
	CmdLookingFor       = "LOOKING_FOR"
	CmdLookingForAck    = "LOOKING_FOR_ACK"
	CmdSearch           = "SEARCH"
	CmdOffer            = "OFFER"
	CmdNegotiate        = "NEGOTIATE"
	CmdAccept           = "ACCEPT"
	CmdRefuse           = "REFUSE"
	CmdFound            = "FOUND"
	CmdNotFound         = "NOT_FOUND"
	CmdReserve          = "RESERVE"
	CmdBuy              = "BUY"
	CmdCancel           = "CANCEL"
	CmdInformReq        = "INFORM_Req"
	CmdInformRes        = "INFORM_Res"
	CmdShippingInfo     = "Shipping_Info"
)

// Message - any parseable wire message
type Message interface {
	Pack() string
}

// Register - peer → server: join the marketplace
type Register struct {
	ID      RequestID
	Name    string
	IP      string
	UDPPort int
	TCPPort int
}

// Pack - serialize to wire form
func (m Register) Pack() string {
	return fmt.Sprintf("%s %s %s %s %d %d", CmdRegister, m.ID, m.Name, m.IP, m.UDPPort, m.TCPPort)
}

// Registered - server → peer: registration accepted
type Registered struct {
	ID RequestID
}

// Pack - serialize to wire form
func (m Registered) Pack() string {
	return fmt.Sprintf("%s %s", CmdRegistered, m.ID)
}

// RegisterDenied - server → peer: registration rejected
type RegisterDenied struct {
	ID     RequestID
	Reason string
}

// Pack - serialize to wire form
func (m RegisterDenied) Pack() string {
	return fmt.Sprintf("%s %s %s", CmdRegisterDenied, m.ID, m.Reason)
}

// Deregister - peer → server: leave the marketplace
type Deregister struct {
	ID   RequestID
	Name string
}

// Pack - serialize to wire form
func (m Deregister) Pack() string {
	return fmt.Sprintf("%s %s %s", CmdDeregister, m.ID, m.Name)
}

// Deregistered - server → peer: deregistration accepted
type Deregistered struct {
	ID RequestID
}

// Pack - serialize to wire form
func (m Deregistered) Pack() string {
	return fmt.Sprintf("%s %s", CmdDeregistered, m.ID)
}

// DeregisterFailed - server → peer: deregistration rejected
type DeregisterFailed struct {
	ID     RequestID
	Reason string
}

// Pack - serialize to wire form
func (m DeregisterFailed) Pack() string {
	return fmt.Sprintf("%s %s %s", CmdDeregisterFailed, m.ID, m.Reason)
}

// LookingFor - peer → server: announce a want
type LookingFor struct {
	ID          RequestID
	Requester   string
	Item        string
	Description string
	MaxPrice    int
}

// Pack - serialize to wire form
func (m LookingFor) Pack() string {
	return fmt.Sprintf("%s %s %s %s %s %d", CmdLookingFor, m.ID, m.Requester, m.Item, m.Description, m.MaxPrice)
}

// LookingForAck - server → peer: want received and broadcast
type LookingForAck struct {
	ID   RequestID
	Text string
}

// Pack - serialize to wire form
func (m LookingForAck) Pack() string {
	return fmt.Sprintf("%s %s %s", CmdLookingForAck, m.ID, m.Text)
}

// Search - server → peer: somebody wants this item
type Search struct {
	ID          RequestID
	Item        string
	Description string
}

// Pack - serialize to wire form
func (m Search) Pack() string {
	return fmt.Sprintf("%s %s %s %s", CmdSearch, m.ID, m.Item, m.Description)
}

// Offer - peer → server: a priced bid against a search
type Offer struct {
	ID     RequestID
	Seller string
	Item   string
	Price  int
}

// Pack - serialize to wire form
func (m Offer) Pack() string {
	return fmt.Sprintf("%s %s %s %s %d", CmdOffer, m.ID, m.Seller, m.Item, m.Price)
}

// Negotiate - server → seller: no offer met the buyer's maximum,
// will the cheapest seller take the buyer's price?
type Negotiate struct {
	ID       RequestID
	Item     string
	MaxPrice int
}

// Pack - serialize to wire form
func (m Negotiate) Pack() string {
	return fmt.Sprintf("%s %s %s %d", CmdNegotiate, m.ID, m.Item, m.MaxPrice)
}

// Accept - seller → server: negotiated price accepted
type Accept struct {
	ID       RequestID
	Seller   string
	Item     string
	MaxPrice int
}

// Pack - serialize to wire form
func (m Accept) Pack() string {
	return fmt.Sprintf("%s %s %s %s %d", CmdAccept, m.ID, m.Seller, m.Item, m.MaxPrice)
}

// Refuse - seller → server: negotiated price refused
type Refuse struct {
	ID       RequestID
	Seller   string
	Item     string
	MaxPrice int
}

// Pack - serialize to wire form
func (m Refuse) Pack() string {
	return fmt.Sprintf("%s %s %s %s %d", CmdRefuse, m.ID, m.Seller, m.Item, m.MaxPrice)
}

// Found - server → buyer: item reserved at this price
type Found struct {
	ID    RequestID
	Item  string
	Price int
}

// Pack - serialize to wire form
func (m Found) Pack() string {
	return fmt.Sprintf("%s %s %s %d", CmdFound, m.ID, m.Item, m.Price)
}

// NotFound - server → buyer: nothing available at the maximum price
type NotFound struct {
	ID       RequestID
	Item     string
	MaxPrice int
}

// Pack - serialize to wire form
func (m NotFound) Pack() string {
	return fmt.Sprintf("%s %s %s %d", CmdNotFound, m.ID, m.Item, m.MaxPrice)
}

// Reserve - server → seller: hold the item at this price
type Reserve struct {
	ID    RequestID
	Item  string
	Price int
}

// Pack - serialize to wire form
func (m Reserve) Pack() string {
	return fmt.Sprintf("%s %s %s %d", CmdReserve, m.ID, m.Item, m.Price)
}

// Buy - buyer → server: finalize the reserved purchase
type Buy struct {
	ID    RequestID
	Buyer string
}

// Pack - serialize to wire form
func (m Buy) Pack() string {
	return fmt.Sprintf("%s %s %s", CmdBuy, m.ID, m.Buyer)
}

// CancelRequest - buyer → server: drop the reservation
type CancelRequest struct {
	ID    RequestID
	Buyer string
}

// Pack - serialize to wire form
func (m CancelRequest) Pack() string {
	return fmt.Sprintf("%s %s %s", CmdCancel, m.ID, m.Buyer)
}

// CancelNotice - server → peer: a reservation this peer is party to
// was dropped
type CancelNotice struct {
	ID    RequestID
	Item  string
	Price int
}

// Pack - serialize to wire form
func (m CancelNotice) Pack() string {
	return fmt.Sprintf("%s %s %s %d", CmdCancel, m.ID, m.Item, m.Price)
}

// InformReq - server → peer over TCP: supply purchase details
type InformReq struct {
	Item  string
	Price int
}

// Pack - serialize to wire form
func (m InformReq) Pack() string {
	return fmt.Sprintf("%s %s %d", CmdInformReq, m.Item, m.Price)
}

// InformRes - peer → server over TCP: payment and shipping details
//
// Address is the message tail and may contain spaces.
type InformRes struct {
	Name     string
	CCNumber string
	CCExpiry string // MM/YY
	Address  string
}

// Pack - serialize to wire form
func (m InformRes) Pack() string {
	return fmt.Sprintf("%s %s %s %s %s", CmdInformRes, m.Name, m.CCNumber, m.CCExpiry, m.Address)
}

// ShippingInfo - server → seller over TCP: where to send the item
//
// Address is the message tail and may contain spaces.
type ShippingInfo struct {
	Item    string
	Address string
}

// Pack - serialize to wire form
func (m ShippingInfo) Pack() string {
	return fmt.Sprintf("%s %s %s", CmdShippingInfo, m.Item, m.Address)
}

// CancelTransaction - server → peer over TCP: purchase aborted
//
// Reason is the message tail and may contain spaces.
type CancelTransaction struct {
	Reason string
}

// Pack - serialize to wire form
func (m CancelTransaction) Pack() string {
	return fmt.Sprintf("%s %s", CmdCancel, m.Reason)
}
