// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dispatch - the server's network frontier
//
// Three background processes share one routing table:
//
//	udpListener - reads control plane datagrams, replies to the
//	              datagram's source address
//	tcpListener - accepts control plane connections carrying one
//	              request line each, replies on the connection
//	writer      - drains the message bus and delivers server
//	              initiated messages to the addressed peer's
//	              registered UDP endpoint
//
// Inbound messages are parsed and routed off the read loop so one
// slow handler cannot stall the socket.
package dispatch

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/background"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/counter"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/bitmark-inc/logger"
)

// rate limiting for inbound datagrams
const (
	rateLimit = 500 // datagrams per second
	rateBurst = 100
)

// largest acceptable inbound message
const maximumPacketSize = 1024

// default bound on concurrent control plane connections
const defaultMaximumConnections = 100

// Configuration - listen endpoints for the server
type Configuration struct {
	Listen             string `gluamapper:"listen" json:"listen"`
	TCPListen          string `gluamapper:"tcp_listen" json:"tcp_listen"`
	MaximumConnections uint64 `gluamapper:"maximum_connections" json:"maximum_connections"`
}

// globals for this module
type dispatchData struct {
	sync.Mutex // to allow locking

	log *logger.L

	socket   net.PacketConn // shared by udpListener and writer
	listener net.Listener

	limiter *rate.Limiter
	count   counter.Counter
	maximum uint64

	// for background
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData dispatchData

// Initialise - bind the sockets and start the network processes
func Initialise(configuration *Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("dispatch")
	log := globalData.log
	log.Info("starting…")

	if "" == configuration.Listen {
		log.Error("missing listen")
		return fault.MissingParameters
	}
	if "" == configuration.TCPListen {
		log.Error("missing tcp_listen")
		return fault.MissingParameters
	}

	maximum := configuration.MaximumConnections
	if 0 == maximum {
		maximum = defaultMaximumConnections
	}

	socket, err := net.ListenPacket("udp", configuration.Listen)
	if nil != err {
		log.Errorf("udp listen error: %s", err)
		return err
	}

	listener, err := net.Listen("tcp", configuration.TCPListen)
	if nil != err {
		log.Errorf("tcp listen error: %s", err)
		_ = socket.Close()
		return err
	}

	log.Infof("listening udp: %s  tcp: %s", socket.LocalAddr(), listener.Addr())

	globalData.socket = socket
	globalData.listener = listener
	globalData.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateBurst)
	globalData.maximum = maximum

	globalData.initialised = true

	// start background processes
	log.Info("start background…")

	processes := background.Processes{
		&udpListener{},
		&tcpListener{},
		&writer{},
	}

	globalData.background = background.Start(processes, log)

	return nil
}

// Finalise - close the sockets and stop the network processes
func Finalise() error {
	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// closing the sockets unblocks the listeners so they can see
	// the shutdown signal
	_ = globalData.socket.Close()
	_ = globalData.listener.Close()

	globalData.background.Stop()

	globalData.Lock()
	globalData.initialised = false
	globalData.Unlock()

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// LocalAddresses - the bound endpoints, for tests with ephemeral ports
func LocalAddresses() (string, string) {
	globalData.Lock()
	defer globalData.Unlock()

	return globalData.socket.LocalAddr().String(), globalData.listener.Addr().String()
}

// deadline granularity for shutdown polling
const pollInterval = time.Second
