// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - the peer registry
//
// Mapping of peer name to contact info: network address, the UDP port
// for control plane messages and the TCP port for the transaction
// plane.  A name registers exactly once; there is no refresh, a peer
// that wants new contact info must deregister first.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/bitmark-inc/logger"
)

// Peer - one registered marketplace participant
type Peer struct {
	Name    string `json:"name"`
	IP      string `json:"ip"`
	UDPPort int    `json:"udp_port"`
	TCPPort int    `json:"tcp_port"`
}

// ControlAddress - the peer's connectionless endpoint
func (p Peer) ControlAddress() string {
	return fmt.Sprintf("%s:%d", p.IP, p.UDPPort)
}

// TransactionAddress - the peer's connection-oriented endpoint
func (p Peer) TransactionAddress() string {
	return fmt.Sprintf("%s:%d", p.IP, p.TCPPort)
}

// globals for this module
type registryData struct {
	sync.RWMutex // to allow locking

	log   *logger.L
	peers map[string]Peer

	changed bool // set on every successful mutation

	// set once during initialise
	initialised bool
}

// global data
var globalData registryData

// Initialise - set up the registry
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("registry")
	globalData.log.Info("starting…")

	globalData.peers = make(map[string]Peer)
	globalData.changed = false
	globalData.initialised = true

	return nil
}

// Finalise - stop all background tasks
func Finalise() error {
	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.Lock()
	defer globalData.Unlock()

	globalData.log.Info("finished")
	globalData.log.Flush()

	globalData.peers = nil
	globalData.initialised = false

	return nil
}

// Register - add a peer
//
// registration is rejected outright if the name already exists
func Register(name string, ip string, udpPort int, tcpPort int) error {
	globalData.Lock()
	defer globalData.Unlock()

	if _, ok := globalData.peers[name]; ok {
		globalData.log.Warnf("register: %q already registered", name)
		return fault.AlreadyRegistered
	}

	globalData.peers[name] = Peer{
		Name:    name,
		IP:      ip,
		UDPPort: udpPort,
		TCPPort: tcpPort,
	}
	globalData.changed = true

	globalData.log.Infof("registered: %q  %s:%d/%d", name, ip, udpPort, tcpPort)
	return nil
}

// Deregister - remove a peer
func Deregister(name string) error {
	globalData.Lock()
	defer globalData.Unlock()

	if _, ok := globalData.peers[name]; !ok {
		globalData.log.Warnf("deregister: %q not registered", name)
		return fault.NotRegistered
	}

	delete(globalData.peers, name)
	globalData.changed = true

	globalData.log.Infof("deregistered: %q", name)
	return nil
}

// Lookup - resolve a peer name
//
// references from requests and reservations are weak: the peer may
// have deregistered mid-flow so callers must handle the error
func Lookup(name string) (Peer, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	peer, ok := globalData.peers[name]
	if !ok {
		return Peer{}, fault.NotRegistered
	}
	return peer, nil
}

// IsRegistered - check a name without fetching the entry
func IsRegistered(name string) bool {
	globalData.RLock()
	defer globalData.RUnlock()

	_, ok := globalData.peers[name]
	return ok
}

// List - all peers in stable name order
func List() []Peer {
	globalData.RLock()
	defer globalData.RUnlock()

	peers := make([]Peer, 0, len(globalData.peers))
	for _, peer := range globalData.peers {
		peers = append(peers, peer)
	}
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Name < peers[j].Name
	})
	return peers
}

// Count - number of registered peers
func Count() int {
	globalData.RLock()
	defer globalData.RUnlock()

	return len(globalData.peers)
}

// IsChanged - mutations since the last snapshot
func IsChanged() bool {
	globalData.RLock()
	defer globalData.RUnlock()

	return globalData.changed
}

// ClearChanged - called by the snapshot saver after a write
func ClearChanged() {
	globalData.Lock()
	defer globalData.Unlock()

	globalData.changed = false
}

// Restore - bulk load from a snapshot, startup only
func Restore(peers []Peer) {
	globalData.Lock()
	defer globalData.Unlock()

	for _, peer := range peers {
		globalData.peers[peer.Name] = peer
	}
	globalData.log.Infof("restored %d peers", len(peers))
}
