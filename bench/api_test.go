// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/ssdbench/blunder"
)

// testContext returns a Context pointed at a file in a per-test temp dir,
// with the cache-flush command replaced by a no-op and the no-cache
// directive disabled (temp dirs may live on filesystems that reject it).
func testContext(t *testing.T, sizeMiB uint64) (ctx *Context) {
	ctx = NewContext(filepath.Join(t.TempDir(), "bench.out"), sizeMiB)
	ctx.FlushCommand = "true"
	ctx.BypassPageCache = false

	return
}

func resetInterrupted() {
	atomic.StoreUint32(&interrupted, 0)
}

func TestWritePhaseProducesRequestedSize(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 4)

	err := ctx.WritePhase()
	require.NoError(t, err)
	require.True(t, ctx.OutFileCreated)

	fileInfo, err := os.Stat(ctx.OutFilePath)
	require.NoError(t, err)
	assert.Equal(t, int64(4*MiB), fileInfo.Size())

	ctx.RemoveOutFile()
	assert.False(t, ctx.OutFileCreated)

	_, err = os.Stat(ctx.OutFilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestWritePhaseDropsPartialRemainder(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 1)
	ctx.BufSize = 3000 // does not divide 1 MiB

	err := ctx.WritePhase()
	require.NoError(t, err)

	expectedSize := (uint64(MiB) / ctx.BufSize) * ctx.BufSize

	fileInfo, err := os.Stat(ctx.OutFilePath)
	require.NoError(t, err)
	assert.Equal(t, int64(expectedSize), fileInfo.Size())

	ctx.RemoveOutFile()
}

func TestWritePhaseSizeTooSmall(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 1)
	ctx.BufSize = 2 * MiB

	err := ctx.WritePhase()
	require.Error(t, err)
	assert.True(t, blunder.Is(err, blunder.SizeTooSmallError))

	// Failed before any I/O: nothing to clean up
	assert.False(t, ctx.OutFileCreated)
	_, err = os.Stat(ctx.OutFilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestWritePhaseOpenFailure(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 1)
	ctx.OutFilePath = filepath.Join(ctx.OutFilePath, "not-a-dir", "bench.out")

	err := ctx.WritePhase()
	require.Error(t, err)
	assert.True(t, blunder.Is(err, blunder.WriteFileError))
	assert.Contains(t, err.Error(), "error opening")
	assert.False(t, ctx.OutFileCreated)
}

func TestWriteThenReadBackByteCount(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 2)

	err := ctx.WritePhase()
	require.NoError(t, err)
	defer ctx.RemoveOutFile()

	err = ctx.ReadPhase()
	require.NoError(t, err)

	// The read phase reports what the write phase actually produced
	fileInfo, err := os.Stat(ctx.OutFilePath)
	require.NoError(t, err)
	assert.Equal(t, fileInfo.Size(), int64(ctx.BytesRead))
}

func TestReadPhaseFlushUtilityFailure(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 1)

	err := ctx.WritePhase()
	require.NoError(t, err)
	defer ctx.RemoveOutFile()

	// The phase fails with the utility's own status and never reads
	ctx.FlushCommand = "exit 7"

	err = ctx.ReadPhase()
	require.Error(t, err)
	assert.Equal(t, 7, blunder.ExitCode(err))
	assert.Zero(t, ctx.BytesRead)
}

func TestReadPhaseOpenFailure(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 1)

	// No write phase ran, so there is nothing to open
	err := ctx.ReadPhase()
	require.Error(t, err)
	assert.True(t, blunder.Is(err, blunder.ReadOpenError))
}

func TestReadPhaseEmptyFile(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 1)

	file, err := os.Create(ctx.OutFilePath)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	ctx.OutFileCreated = true
	defer ctx.RemoveOutFile()

	err = ctx.ReadPhase()
	require.Error(t, err)
	assert.True(t, blunder.Is(err, blunder.ReadEmptyError))
}

func TestInterruptedWritePhase(t *testing.T) {
	resetInterrupted()
	defer resetInterrupted()

	ctx := testContext(t, 4)

	MarkInterrupted()
	require.True(t, Interrupted())

	err := ctx.WritePhase()
	require.Error(t, err)
	assert.True(t, blunder.Is(err, blunder.InterruptedError))

	// The file was created before the loop noticed the flag, so cleanup
	// still owes its removal
	require.True(t, ctx.OutFileCreated)
	_, err = os.Stat(ctx.OutFilePath)
	require.NoError(t, err)

	ctx.RemoveOutFile()
	_, err = os.Stat(ctx.OutFilePath)
	assert.True(t, os.IsNotExist(err))
}

func TestInterruptedReadPhase(t *testing.T) {
	resetInterrupted()
	defer resetInterrupted()

	ctx := testContext(t, 1)

	err := ctx.WritePhase()
	require.NoError(t, err)
	defer ctx.RemoveOutFile()

	MarkInterrupted()

	err = ctx.ReadPhase()
	require.Error(t, err)
	assert.True(t, blunder.Is(err, blunder.InterruptedError))
}

func TestWritePhaseIdempotence(t *testing.T) {
	resetInterrupted()

	ctx := testContext(t, 2)

	err := ctx.WritePhase()
	require.NoError(t, err)
	firstInfo, err := os.Stat(ctx.OutFilePath)
	require.NoError(t, err)

	// A second run against the same path truncates and rewrites
	err = ctx.WritePhase()
	require.NoError(t, err)
	secondInfo, err := os.Stat(ctx.OutFilePath)
	require.NoError(t, err)

	assert.Equal(t, firstInfo.Size(), secondInfo.Size())

	ctx.RemoveOutFile()
}
