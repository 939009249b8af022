// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/NVIDIA/ssdbench/blunder"
	"github.com/NVIDIA/ssdbench/platform"
	"github.com/NVIDIA/ssdbench/utils"
)

// ReadPhase measures sequential read throughput of the file the write phase
// produced, with OS cache effects removed.
//
// The cache-flush utility runs first; a non-zero status from it fails the
// phase with that same status and no read is attempted. The no-cache
// directive is then applied to the freshly-opened descriptor so the reads
// that follow hit the media rather than any surviving page cache.
//
// Reported throughput divides the byte count actually read, not the
// requested size, by the elapsed read-loop time.
func (ctx *Context) ReadPhase() (err error) {
	var (
		file       *os.File
		flushCmd   *exec.Cmd
		nread      int
		readWatch  *utils.Stopwatch
		scratchBuf []byte
		status     int
	)

	fmt.Printf("Running %v (clearing read cache)...\n", ctx.FlushCommand)

	flushCmd = exec.Command("/bin/sh", "-c", ctx.FlushCommand)
	flushCmd.Stdout = os.Stdout
	flushCmd.Stderr = os.Stderr

	err = flushCmd.Run()
	if nil != err {
		// Propagate the utility's own status as this phase's exit code
		status = 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			status = exitErr.ExitCode()
		}
		err = blunder.NewError(blunder.BenchError(status), "failed to execute cache flush, exit code: %v", status)
		return
	}

	fmt.Printf("Reading back %v...", ctx.OutFilePath)

	file, err = os.Open(ctx.OutFilePath)
	if nil != err {
		fmt.Println()
		err = blunder.NewError(blunder.ReadOpenError, "error opening %v: %v", ctx.OutFilePath, err)
		return
	}

	// Released on every exit path from this phase; removal of the file
	// itself happens once, at process shutdown
	defer func() {
		_ = file.Close()
	}()

	if ctx.BypassPageCache {
		err = platform.DisableReadCaching(file)
		if nil != err {
			fmt.Println()
			err = blunder.AddError(err, blunder.CacheBypassError)
			return
		}
	}

	scratchBuf = utils.AlignedByteSlice(ctx.BufSize)

	readWatch = utils.NewStopwatch()

	for !Interrupted() {
		nread, err = file.Read(scratchBuf)
		if nread > 0 {
			ctx.BytesRead += uint64(nread)
		}
		if nil != err {
			// io.EOF or a mid-stream failure both end the loop; what
			// matters below is whether any bytes arrived at all
			break
		}
	}

	readWatch.Stop()

	err = nil

	if Interrupted() {
		fmt.Println()
		err = blunder.NewError(blunder.InterruptedError, "interrupted while reading %v", ctx.OutFilePath)
		return
	}

	if 0 == ctx.BytesRead {
		fmt.Println()
		err = blunder.NewError(blunder.ReadEmptyError, "read back zero bytes from %v", ctx.OutFilePath)
		return
	}

	elapsed := readWatch.ElapsedSeconds()
	fmt.Printf("took %.3f secs (%.2f MB/sec)\n", elapsed, (float64(ctx.BytesRead)/float64(MiB))/elapsed)

	return
}
