// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
)

func runSearch(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	item := c.String("item")
	description := c.String("description")
	maxPrice := c.Int("max-price")
	if "" == item || "" == description || maxPrice <= 0 {
		return fmt.Errorf("--item, --description and --max-price are all required")
	}

	id := protocol.NewRequestID()
	reply, err := exchange(m, protocol.LookingFor{
		ID:          id,
		Requester:   m.name,
		Item:        item,
		Description: description,
		MaxPrice:    maxPrice,
	})
	if nil != err {
		return err
	}

	ack, ok := reply.(protocol.LookingForAck)
	if !ok {
		return fmt.Errorf("unexpected reply: %s", reply.Pack())
	}

	fmt.Fprintf(m.w, "%s: %s\n", ack.ID, ack.Text)
	fmt.Fprintf(m.w, "the outcome arrives on the registered UDP port, see the listen command\n")
	return nil
}

func runCancel(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	id, err := requiredRequestID(c)
	if nil != err {
		return err
	}

	err = sendOnly(m, protocol.CancelRequest{
		ID:    id,
		Buyer: m.name,
	})
	if nil != err {
		return err
	}

	fmt.Fprintf(m.w, "cancel sent: %s\n", id)
	return nil
}
