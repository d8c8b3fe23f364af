// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
)

// how long to wait for the server's direct acknowledgement
const replyTimeout = 10 * time.Second

// exchange - send one control message and wait for the direct reply
//
// the reply comes back to the sending socket; messages the server
// pushes later go to the registered UDP port and are picked up by
// the listen command instead
func exchange(m *metadata, message protocol.Message) (protocol.Message, error) {
	conn, err := net.Dial("udp", m.server)
	if nil != err {
		return nil, err
	}
	defer conn.Close()

	packed := message.Pack()
	if m.verbose {
		fmt.Fprintf(m.e, "send: %s\n", packed)
	}

	_, err = conn.Write([]byte(packed))
	if nil != err {
		return nil, err
	}

	_ = conn.SetReadDeadline(time.Now().Add(replyTimeout))
	buffer := make([]byte, 1024)
	n, err := conn.Read(buffer)
	if nil != err {
		return nil, err
	}

	line := strings.TrimSpace(string(buffer[:n]))
	if m.verbose {
		fmt.Fprintf(m.e, "receive: %s\n", line)
	}
	return protocol.Parse(line)
}

// sendOnly - send one control message, no reply expected
func sendOnly(m *metadata, message protocol.Message) error {
	conn, err := net.Dial("udp", m.server)
	if nil != err {
		return err
	}
	defer conn.Close()

	packed := message.Pack()
	if m.verbose {
		fmt.Fprintf(m.e, "send: %s\n", packed)
	}

	_, err = conn.Write([]byte(packed))
	return err
}

// checkName - the global name flag is required by every command
func checkName(m *metadata) error {
	if "" == m.name {
		return fmt.Errorf("missing peer name, use --name")
	}
	return nil
}

// requiredRequestID - commands that reply to a server message must
// quote its request id
func requiredRequestID(c *cli.Context) (protocol.RequestID, error) {
	supplied := c.String("request")
	if "" == supplied {
		return "", fmt.Errorf("missing request id, use --request")
	}
	return protocol.ParseRequestID(supplied)
}
