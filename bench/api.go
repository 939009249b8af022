// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package bench implements the two measurement phases of ssdbench.
//
// A benchmark run writes a file of incompressible random data while timing
// the writes, then evicts the OS page cache and reads the file back with
// caching disabled on the descriptor while timing the reads. The write phase
// must fully succeed before the read phase begins. Both phases poll a
// process-wide interruption flag at scratch-buffer granularity so a caught
// signal terminates the run promptly and cleanly.
//
// Measurement results are printed to stdout; everything else (warnings,
// cleanup notices) goes to stderr via package logger.
package bench

import (
	"os"
	"sync/atomic"

	"github.com/NVIDIA/ssdbench/logger"
	"github.com/NVIDIA/ssdbench/platform"
)

const (
	// MiB is the unit sizes are requested and throughput is reported in
	MiB = 1024 * 1024

	// BufSize is the scratch buffer size: the granularity of every write,
	// every read, and every interruption check
	BufSize = MiB

	// DefaultSizeMiB is the target file size used when none is requested
	DefaultSizeMiB = 2 * 1024
)

// Context carries the validated configuration of one benchmark run plus the
// little run state there is. Configuration fields are not modified once the
// Context is constructed; OutFileCreated and BytesRead are written by the
// phases.
type Context struct {
	OutFilePath string
	SizeMiB     uint64

	// BufSize, FlushCommand, and BypassPageCache exist so tests can
	// substitute a non-dividing buffer size, a controllable flush command,
	// and filesystems that reject the no-cache directive. NewContext sets
	// the production values.
	BufSize         uint64
	FlushCommand    string
	BypassPageCache bool

	// OutFileCreated is set as soon as the write phase has created the
	// output file, before the first write. Cleanup keys off of it.
	OutFileCreated bool

	// BytesRead is the actual byte count accumulated by the read phase
	BytesRead uint64
}

// NewContext returns a Context for the given output path and requested size
// with the production buffer size and cache-defeat settings filled in.
func NewContext(outFilePath string, sizeMiB uint64) (ctx *Context) {
	ctx = &Context{
		OutFilePath:     outFilePath,
		SizeMiB:         sizeMiB,
		BufSize:         BufSize,
		FlushCommand:    platform.FlushCacheCommand,
		BypassPageCache: true,
	}

	return
}

// RemoveOutFile removes the output file iff the write phase created it.
// It is intended to be deferred once by the caller so that every exit path
// (completion, phase failure, interruption) removes the file exactly once.
// A removal failure is reported but changes nothing else.
func (ctx *Context) RemoveOutFile() {
	var (
		err error
	)

	if !ctx.OutFileCreated {
		return
	}

	err = os.Remove(ctx.OutFilePath)
	if nil != err {
		logger.Errorf("failed to remove file %v: %v", ctx.OutFilePath, err)
	} else {
		ctx.OutFileCreated = false
		logger.Infof("(Removed %v)", ctx.OutFilePath)
	}
}

// interrupted is only ever accessed through sync/atomic: it is written by
// the signal-watcher goroutine while the phase loops read it, and a plain
// bool would carry no visibility guarantee across those goroutines.
var interrupted uint32

// MarkInterrupted records that a termination-request signal was received.
// The flag is set, never incremented or queued; repeat signals are no-ops.
func MarkInterrupted() {
	atomic.StoreUint32(&interrupted, 1)
}

// Interrupted reports whether a termination-request signal has been received.
// The phase loops poll it between buffer-sized operations.
func Interrupted() bool {
	return 0 != atomic.LoadUint32(&interrupted)
}
