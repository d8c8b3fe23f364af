// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package snapshot - advisory persistence of marketplace state
//
// Registered peers, in-flight search requests and held reservations
// are written to a tagged record cache file whenever one of those
// modules reports a change.  The file is reloaded once at startup;
// it is a convenience across restarts, not a transaction log, and a
// missing or damaged file only costs the state it held.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/background"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/market"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
	"github.com/bitmark-inc/logger"
)

type tagType byte

// record types in cache file
const (
	taggedBOF         tagType = iota
	taggedEOF         tagType = iota
	taggedPeer        tagType = iota
	taggedSearch      tagType = iota
	taggedReservation tagType = iota
)

// the BOF tag to check file version
// exact match is required
var bofData = []byte("shopd-cache v1.0")

// DefaultSaveInterval - how often the dirty flags are polled
const DefaultSaveInterval = 10 * time.Second

// largest single record the file format can carry
const maximumRecordLength = 65535

// globals for this module
type snapshotData struct {
	sync.Mutex // to allow locking

	log      *logger.L
	filename string
	interval time.Duration

	// for background
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData snapshotData

// Initialise - open the snapshot system and start the saver
//
// an interval of zero selects the default
func Initialise(filename string, interval time.Duration) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("snapshot")
	globalData.log.Info("starting…")

	if 0 == interval {
		interval = DefaultSaveInterval
	}
	globalData.filename = filename
	globalData.interval = interval

	globalData.initialised = true

	// start background processes
	globalData.log.Info("start background…")

	processes := background.Processes{
		&saver{},
	}

	globalData.background = background.Start(processes, globalData.log)

	return nil
}

// Finalise - stop the saver and write a final snapshot
func Finalise() error {
	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.background.Stop()

	if err := Save(); nil != err {
		globalData.log.Errorf("final save error: %s", err)
	}

	globalData.Lock()
	globalData.initialised = false
	globalData.Unlock()

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// Save - write the whole marketplace state to the cache file
//
// the dirty flags are cleared before the state is read so a change
// racing the save is picked up by the next poll
func Save() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	log := globalData.log
	log.Info("saving…")

	registry.ClearChanged()
	market.ClearChanged()
	reservation.ClearChanged()

	f, err := os.OpenFile(globalData.filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if nil != err {
		return err
	}
	defer f.Close()

	// write beginning of file marker
	err = writeRecord(f, taggedBOF, bofData)
	if nil != err {
		return err
	}

	for _, peer := range registry.List() {
		packed, err := json.Marshal(peer)
		if nil != err {
			return err
		}
		err = writeRecord(f, taggedPeer, packed)
		if nil != err {
			return err
		}
	}

	for _, request := range market.Active() {
		packed, err := json.Marshal(request)
		if nil != err {
			return err
		}
		err = writeRecord(f, taggedSearch, packed)
		if nil != err {
			return err
		}
	}

	for _, entry := range reservation.List() {
		packed, err := json.Marshal(entry)
		if nil != err {
			return err
		}
		err = writeRecord(f, taggedReservation, packed)
		if nil != err {
			return err
		}
	}

	// end the file
	err = writeRecord(f, taggedEOF, []byte("EOF"))
	if nil != err {
		return err
	}

	log.Info("save completed")
	return nil
}

// Load - restore the marketplace state from the cache file
//
// called once at startup after the state modules are initialised; a
// missing file is not an error, there is simply nothing to restore
func Load() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	log := globalData.log

	f, err := os.Open(globalData.filename)
	if os.IsNotExist(err) {
		log.Info("no cache file, starting empty")
		return nil
	}
	if nil != err {
		return err
	}
	defer f.Close()

	// must have BOF record first
	tag, packed, err := readRecord(f)
	if nil != err {
		return err
	}

	if taggedBOF != tag {
		log.Errorf("expected BOF: %d but read: %d", taggedBOF, tag)
		return fault.SnapshotFormat
	}

	if !bytes.Equal(bofData, packed) {
		log.Errorf("expected BOF: %q but read: %q", bofData, packed)
		return fault.SnapshotFormat
	}

	log.Infof("restore from file: %s", globalData.filename)

	peers := make([]registry.Peer, 0, 16)
	requests := make([]market.SearchRequest, 0, 16)
	entries := make([]reservation.Reservation, 0, 16)

restore_loop:
	for {
		tag, packed, err := readRecord(f)
		if nil != err {
			return err
		}
		switch tag {

		case taggedEOF:
			break restore_loop

		case taggedPeer:
			var peer registry.Peer
			if err := json.Unmarshal(packed, &peer); nil != err {
				log.Errorf("unable to unpack peer: %s", err)
				continue restore_loop
			}
			peers = append(peers, peer)

		case taggedSearch:
			var request market.SearchRequest
			if err := json.Unmarshal(packed, &request); nil != err {
				log.Errorf("unable to unpack search request: %s", err)
				continue restore_loop
			}
			requests = append(requests, request)

		case taggedReservation:
			var entry reservation.Reservation
			if err := json.Unmarshal(packed, &entry); nil != err {
				log.Errorf("unable to unpack reservation: %s", err)
				continue restore_loop
			}
			entries = append(entries, entry)

		default:
			log.Errorf("read invalid tag: 0x%02x", tag)
			return fault.SnapshotFormat
		}
	}

	registry.Restore(peers)
	reservation.Restore(entries)
	market.Restore(requests)

	registry.ClearChanged()
	market.ClearChanged()
	reservation.ClearChanged()

	log.Info("restore completed")
	return nil
}

// write a tagged record
func writeRecord(f *os.File, tag tagType, packed []byte) error {

	if len(packed) > maximumRecordLength {
		globalData.log.Criticalf("write record packed length: %d > %d", len(packed), maximumRecordLength)
		logger.Panicf("write record packed length: %d > %d", len(packed), maximumRecordLength)
	}

	_, err := f.Write([]byte{byte(tag)})
	if nil != err {
		return err
	}

	count := make([]byte, 2)
	binary.BigEndian.PutUint16(count, uint16(len(packed)))
	_, err = f.Write(count)
	if nil != err {
		return err
	}
	_, err = f.Write(packed)
	return err
}

func readRecord(f *os.File) (tagType, []byte, error) {

	tag := make([]byte, 1)
	n, err := f.Read(tag)
	if nil != err {
		return taggedEOF, []byte{}, err
	}
	if 1 != n {
		return taggedEOF, []byte{}, fault.SnapshotFormat
	}

	countBuffer := make([]byte, 2)
	n, err = f.Read(countBuffer)
	if nil != err {
		return taggedEOF, []byte{}, err
	}
	if 2 != n {
		return taggedEOF, []byte{}, fault.SnapshotFormat
	}

	count := int(binary.BigEndian.Uint16(countBuffer))

	if count > 0 {
		buffer := make([]byte, count)
		n, err := io.ReadFull(f, buffer)
		if nil != err {
			return taggedEOF, []byte{}, err
		}
		if count != n {
			return taggedEOF, []byte{}, fault.SnapshotFormat
		}
		return tagType(tag[0]), buffer, nil
	}
	return tagType(tag[0]), []byte{}, nil
}
