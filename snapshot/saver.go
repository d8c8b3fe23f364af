// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package snapshot

import (
	"time"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/market"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/registry"
	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/reservation"
	"github.com/bitmark-inc/logger"
)

// the saver polls the state modules and rewrites the cache file when
// any of them reports a change
type saver struct {
	log *logger.L
}

// Run - poll loop, terminates on shutdown
func (s *saver) Run(args interface{}, shutdown <-chan struct{}) {
	s.log = args.(*logger.L)

	s.log.Info("saver: starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(globalData.interval):
			if registry.IsChanged() || market.IsChanged() || reservation.IsChanged() {
				if err := Save(); nil != err {
					s.log.Errorf("saver: save error: %s", err)
				}
			}
		}
	}
	s.log.Info("saver: shutting down…")
}
