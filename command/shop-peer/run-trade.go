// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
)

func runOffer(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	id, err := requiredRequestID(c)
	if nil != err {
		return err
	}

	item := c.String("item")
	price := c.Int("price")
	if "" == item || price <= 0 {
		return fmt.Errorf("--item and --price are both required")
	}

	err = sendOnly(m, protocol.Offer{
		ID:     id,
		Seller: m.name,
		Item:   item,
		Price:  price,
	})
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "offer sent: %s %s at %d\n", id, item, price)
	return nil
}

func runAccept(c *cli.Context) error {
	return runNegotiationReply(c, true)
}

func runRefuse(c *cli.Context) error {
	return runNegotiationReply(c, false)
}

func runNegotiationReply(c *cli.Context, accepted bool) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	id, err := requiredRequestID(c)
	if nil != err {
		return err
	}

	item := c.String("item")
	price := c.Int("price")
	if "" == item || price <= 0 {
		return fmt.Errorf("--item and --price are both required")
	}

	var message protocol.Message
	var verb string
	if accepted {
		message = protocol.Accept{ID: id, Seller: m.name, Item: item, MaxPrice: price}
		verb = "accept"
	} else {
		message = protocol.Refuse{ID: id, Seller: m.name, Item: item, MaxPrice: price}
		verb = "refuse"
	}

	err = sendOnly(m, message)
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "%s sent: %s %s at %d\n", verb, id, item, price)
	return nil
}

func runBuy(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	id, err := requiredRequestID(c)
	if nil != err {
		return err
	}

	err = sendOnly(m, protocol.Buy{
		ID:    id,
		Buyer: m.name,
	})
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "buy sent: %s\n", id)
	fmt.Fprintf(m.w, "the purchase details are exchanged on the registered TCP port, see the listen command\n")
	return nil
}
