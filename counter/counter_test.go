// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter_test

import (
	"sync"
	"testing"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/counter"
	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	c := counter.Counter(0)
	assert.True(t, c.IsZero(), "initial value")

	assert.Equal(t, uint64(1), c.Increment(), "first increment")
	assert.Equal(t, uint64(2), c.Increment(), "second increment")
	assert.Equal(t, uint64(1), c.Decrement(), "decrement")
	assert.Equal(t, uint64(1), c.Uint64(), "current value")
}

func TestCounterConcurrent(t *testing.T) {
	c := counter.Counter(0)

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j += 1 {
				c.Increment()
				c.Decrement()
			}
		}()
	}
	wg.Wait()

	assert.True(t, c.IsZero(), "unbalanced count")
}
