// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/LouisChoiniere/COEN366-F24-P2P-Shopping-v2/fault"
	"github.com/stretchr/testify/assert"
)

func TestErrorClasses(t *testing.T) {
	assert.True(t, fault.IsErrExists(fault.AlreadyRegistered), "exists class")
	assert.True(t, fault.IsErrNotFound(fault.NotRegistered), "not found class")
	assert.True(t, fault.IsErrInvalid(fault.MessageTooShort), "invalid class")
	assert.True(t, fault.IsErrProcess(fault.InvalidStatus), "process class")
	assert.True(t, fault.IsErrTimeout(fault.PurchaseTimeout), "timeout class")

	assert.False(t, fault.IsErrExists(fault.NotRegistered), "wrong class match")
	assert.False(t, fault.IsErrNotFound(fault.AlreadyRegistered), "wrong class match")
}

func TestErrorText(t *testing.T) {
	// these strings are part of the wire protocol replies
	assert.Equal(t, "Name already registered", fault.AlreadyRegistered.Error(), "register denial reason")
	assert.Equal(t, "Not registered", fault.NotRegistered.Error(), "deregister failure reason")
}
