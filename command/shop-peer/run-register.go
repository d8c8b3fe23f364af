// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
)

func runRegister(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	udpPort := c.Int("udp-port")
	tcpPort := c.Int("tcp-port")
	if udpPort <= 0 || tcpPort <= 0 {
		return fmt.Errorf("both --udp-port and --tcp-port are required")
	}

	reply, err := exchange(m, protocol.Register{
		ID:      protocol.NewRequestID(),
		Name:    m.name,
		IP:      c.String("ip"),
		UDPPort: udpPort,
		TCPPort: tcpPort,
	})
	if nil != err {
		return err
	}

	switch r := reply.(type) {
	case protocol.Registered:
		fmt.Fprintf(m.w, "registered: %s\n", m.name)
	case protocol.RegisterDenied:
		return fmt.Errorf("denied: %s", r.Reason)
	default:
		return fmt.Errorf("unexpected reply: %s", reply.Pack())
	}
	return nil
}

func runDeregister(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	reply, err := exchange(m, protocol.Deregister{
		ID:   protocol.NewRequestID(),
		Name: m.name,
	})
	if nil != err {
		return err
	}

	switch r := reply.(type) {
	case protocol.Deregistered:
		fmt.Fprintf(m.w, "deregistered: %s\n", m.name)
	case protocol.DeregisterFailed:
		return fmt.Errorf("failed: %s", r.Reason)
	default:
		return fmt.Errorf("unexpected reply: %s", reply.Pack())
	}
	return nil
}
