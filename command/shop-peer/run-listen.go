// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"github.com/urfave/cli"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/protocol"
)

// runListen - the resident half of a peer
//
// Prints every control plane message the server pushes to the
// registered UDP port and answers INFORM_Req connections on the
// registered TCP port with the configured payment details.  Runs
// until interrupted.
func runListen(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)
	if err := checkName(m); nil != err {
		return err
	}

	udpPort := c.Int("udp-port")
	tcpPort := c.Int("tcp-port")
	if udpPort <= 0 || tcpPort <= 0 {
		return fmt.Errorf("both --udp-port and --tcp-port are required")
	}

	details := protocol.InformRes{
		Name:     m.name,
		CCNumber: c.String("cc-number"),
		CCExpiry: c.String("cc-expiry"),
		Address:  c.String("address"),
	}
	if "" == details.CCNumber || "" == details.CCExpiry || "" == details.Address {
		return fmt.Errorf("--cc-number, --cc-expiry and --address are all required")
	}

	socket, err := net.ListenPacket("udp", fmt.Sprintf(":%d", udpPort))
	if nil != err {
		return err
	}
	defer socket.Close()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", tcpPort))
	if nil != err {
		return err
	}
	defer listener.Close()

	fmt.Fprintf(m.w, "listening: udp %d, tcp %d\n", udpPort, tcpPort)

	go serveTransactions(m, listener, details)

	buffer := make([]byte, 1024)
	for {
		n, _, err := socket.ReadFrom(buffer)
		if nil != err {
			return err
		}
		fmt.Fprintf(m.w, "%s\n", strings.TrimSpace(string(buffer[:n])))
	}
}

func serveTransactions(m *metadata, listener net.Listener, details protocol.InformRes) {
	for {
		conn, err := listener.Accept()
		if nil != err {
			return
		}
		go answerPurchase(m, conn, details)
	}
}

// one purchase conversation: reply to INFORM_Req, then print
// whatever the server concludes with
func answerPurchase(m *metadata, conn net.Conn, details protocol.InformRes) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if nil != err {
			return
		}
		line = strings.TrimSpace(line)
		fmt.Fprintf(m.w, "%s\n", line)

		if strings.HasPrefix(line, protocol.CmdInformReq) {
			_, err = fmt.Fprintf(conn, "%s\n", details.Pack())
			if nil != err {
				return
			}
		}
	}
}
