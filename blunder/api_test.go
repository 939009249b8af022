// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package blunder

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues(t *testing.T) {
	assert.Equal(t, 1, BadArgsError.Value())
	assert.Equal(t, 2, SizeTooSmallError.Value())
	assert.Equal(t, 3, WriteFileError.Value())
	assert.Equal(t, 10, ReadOpenError.Value())
	assert.Equal(t, 11, CacheBypassError.Value())
	assert.Equal(t, 20, ReadEmptyError.Value())
	assert.Equal(t, 99, InterruptedError.Value())
}

func TestDefaultExitCode(t *testing.T) {
	var err error

	// A nil error is success
	assert.Equal(t, 0, ExitCode(err))
	assert.True(t, IsSuccess(err))

	// A plain error that was never tagged reports the failure default
	err = fmt.Errorf("some untagged error")
	assert.Equal(t, -1, ExitCode(err))
	assert.True(t, IsNotSuccess(err))
}

func TestNewError(t *testing.T) {
	err := NewError(ReadEmptyError, "read %v bytes", 0)

	require.Error(t, err)
	assert.Equal(t, 20, ExitCode(err))
	assert.True(t, Is(err, ReadEmptyError))
	assert.True(t, IsNot(err, WriteFileError))
	assert.Equal(t, "read 0 bytes", err.Error())
}

func TestAddError(t *testing.T) {
	err := fmt.Errorf("error opening %v", "/tmp/nonesuch")
	err = AddError(err, WriteFileError)

	assert.Equal(t, 3, ExitCode(err))
	assert.True(t, Is(err, WriteFileError))

	// AddError on nil still produces a tagged error
	err = AddError(nil, InterruptedError)
	require.Error(t, err)
	assert.Equal(t, 99, ExitCode(err))
}

func TestPropagatedUtilityStatus(t *testing.T) {
	// A cache-flush utility failure carries the utility's own exit status
	err := NewError(BenchError(7), "cache flush failed")

	assert.Equal(t, 7, ExitCode(err))
	assert.True(t, IsNotSuccess(err))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "", ErrorString(nil))

	err := NewError(SizeTooSmallError, "size too small")
	assert.Contains(t, ErrorString(err), "Exit Code: 2")
}

func TestLocation(t *testing.T) {
	err := NewError(WriteFileError, "some error")

	file, line := Location(err)
	assert.Contains(t, file, "api_test.go")
	assert.NotZero(t, line)
	assert.NotEmpty(t, SourceLine(err))
	assert.NotEmpty(t, Details(err))
	assert.NotEmpty(t, Stacktrace(err))
}
