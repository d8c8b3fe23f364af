// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/market"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/messagebus"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/snapshot"
	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
)

const (
	testingDirName = "testing"
	offerWindow    = 10 * time.Second // searches must not evaluate mid test
	saveInterval   = time.Hour        // only explicit saves
)

func cacheFile() string {
	return filepath.Join(testingDirName, "shopd.cache")
}

func setup(t *testing.T) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	startState(t)
	err := snapshot.Initialise(cacheFile(), saveInterval)
	assert.Nil(t, err, "snapshot initialise")
}

func startState(t *testing.T) {
	err := registry.Initialise()
	assert.Nil(t, err, "registry initialise")
	err = reservation.Initialise()
	assert.Nil(t, err, "reservation initialise")
	err = market.Initialise(offerWindow)
	assert.Nil(t, err, "market initialise")
}

func stopState() {
	_ = market.Finalise()
	_ = reservation.Finalise()
	_ = registry.Finalise()
}

func teardown() {
	_ = snapshot.Finalise()
	stopState()
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	_ = os.RemoveAll(testingDirName)
}

// drain - discard n queued control messages
func drain(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i += 1 {
		select {
		case <-messagebus.Chan():
		case <-time.After(time.Second):
			t.Fatalf("missing message %d of %d", i+1, n)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	setup(t)
	defer teardown()

	err := registry.Register("alice", "10.0.0.1", 5001, 5002)
	assert.Nil(t, err, "register alice")
	err = registry.Register("bob", "10.0.0.2", 5003, 5004)
	assert.Nil(t, err, "register bob")
	err = registry.Register("carol", "10.0.0.3", 5005, 5006)
	assert.Nil(t, err, "register carol")

	err = reservation.Create("RQ8001", "alice", "bob", "lamp", 40)
	assert.Nil(t, err, "create reservation")

	err = market.OpenSearch("RQ8002", "alice", "radio", "portable", 25)
	assert.Nil(t, err, "open search")
	drain(t, 2) // SEARCH to bob and carol

	err = snapshot.Save()
	assert.Nil(t, err, "save")

	// simulate a restart; the short pause lets the cancelled
	// collector goroutine finish before new state appears
	stopState()
	time.Sleep(20 * time.Millisecond)
	startState(t)

	assert.Equal(t, 0, registry.Count(), "registry not empty")

	err = snapshot.Load()
	assert.Nil(t, err, "load")

	assert.Equal(t, 3, registry.Count(), "peer count")
	peer, err := registry.Lookup("bob")
	assert.Nil(t, err, "lookup bob")
	assert.Equal(t, "10.0.0.2:5004", peer.TransactionAddress(), "bob address")

	r, err := reservation.Get("RQ8001")
	assert.Nil(t, err, "get reservation")
	assert.Equal(t, "bob", r.Seller, "reservation seller")
	assert.Equal(t, 40, r.Price, "reservation price")
	assert.Equal(t, reservation.Held, r.Status, "reservation status")

	status, err := market.StatusOf("RQ8002")
	assert.Nil(t, err, "search status")
	assert.Equal(t, market.Collecting, status, "search restored collecting")

	// a fresh load leaves the dirty flags clear
	assert.False(t, registry.IsChanged(), "registry dirty after load")
	assert.False(t, reservation.IsChanged(), "reservation dirty after load")
	assert.False(t, market.IsChanged(), "market dirty after load")
}

func TestLoadMissingFile(t *testing.T) {
	setup(t)
	defer teardown()

	err := snapshot.Load()
	assert.Nil(t, err, "missing file must not be an error")
	assert.Equal(t, 0, registry.Count(), "registry not empty")
}

func TestLoadRejectsWrongHeader(t *testing.T) {
	setup(t)
	defer teardown()

	err := ioutil.WriteFile(cacheFile(), []byte("not a cache file"), 0600)
	assert.Nil(t, err, "write junk")

	err = snapshot.Load()
	assert.NotNil(t, err, "junk file accepted")
}

func TestSaveClearsDirtyFlags(t *testing.T) {
	setup(t)
	defer teardown()

	err := registry.Register("alice", "10.0.0.1", 5001, 5002)
	assert.Nil(t, err, "register alice")
	assert.True(t, registry.IsChanged(), "registry should be dirty")

	err = snapshot.Save()
	assert.Nil(t, err, "save")
	assert.False(t, registry.IsChanged(), "registry still dirty after save")
}
