// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
)

// time allowed for a connection to deliver its request line
const requestTimeout = 30 * time.Second

// the control plane connection acceptor
//
// a connection carries exactly one request line; the reply, if the
// request has one, is written back before the close
type tcpListener struct {
	log *logger.L
}

// Run - accept loop, terminates when the listener closes
func (l *tcpListener) Run(args interface{}, shutdown <-chan struct{}) {
	l.log = args.(*logger.L)

	l.log.Info("tcp: starting…")

loop:
	for {
		conn, err := globalData.listener.Accept()
		if nil != err {
			// closed listener means shutdown is in progress
			break loop
		}

		if globalData.count.Increment() <= globalData.maximum {
			go func(conn net.Conn) {
				l.serve(conn)
				_ = conn.Close()
				globalData.count.Decrement()
			}(conn)
		} else {
			globalData.count.Decrement()
			_ = conn.Close()
			l.log.Warn("tcp: connection limit reached, dropping")
		}
	}

	l.log.Info("tcp: shutting down…")
}

func (l *tcpListener) serve(conn net.Conn) {
	source := conn.RemoteAddr().String()

	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if nil != err {
		l.log.Warnf("tcp: %s: read error: %s", source, err)
		return
	}
	line = strings.TrimSpace(line)
	l.log.Debugf("tcp: %s: received: %q", source, line)

	reply := route(line, source, l.log)
	if nil == reply {
		return
	}

	packed := reply.Pack()
	l.log.Debugf("tcp: %s: reply: %q", source, packed)
	_, err = fmt.Fprintf(conn, "%s\n", packed)
	if nil != err {
		l.log.Warnf("tcp: %s: reply error: %s", source, err)
	}
}
