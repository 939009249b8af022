// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package bench

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/NVIDIA/ssdbench/blunder"
	"github.com/NVIDIA/ssdbench/utils"
)

// WritePhase produces the output file and reports write throughput.
//
// The file is filled by writing one randomized scratch buffer
// floor(sizeBytes/BufSize) times; a trailing remainder of a size that is not
// a buffer multiple is deliberately not written, so the file may come up
// short of the request by up to one buffer. Buffer generation is timed and
// reported separately and is excluded from the write throughput figure.
//
// Reported throughput divides the requested MiB count, not the byte count
// actually written, by the elapsed write-loop time.
func (ctx *Context) WritePhase() (err error) {
	var (
		file       *os.File
		genWatch   *utils.Stopwatch
		i          uint64
		numWrites  uint64
		scratchBuf []byte
		sizeBytes  uint64
		writeWatch *utils.Stopwatch
	)

	sizeBytes = ctx.SizeMiB * MiB

	if sizeBytes < ctx.BufSize {
		err = blunder.NewError(blunder.SizeTooSmallError, "invalid output size specified: %v", sizeBytes)
		return
	}

	file, err = os.OpenFile(ctx.OutFilePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if nil != err {
		err = blunder.NewError(blunder.WriteFileError, "error opening %v: %v", ctx.OutFilePath, err)
		return
	}

	// From here on the file exists and cleanup must remove it, even if a
	// write fails below
	ctx.OutFileCreated = true

	// Fill the scratch buffer with uniformly-distributed unpredictable
	// bytes. The content must be incompressible, or filesystems that
	// compress or detect zero blocks would report bandwidth the media
	// cannot deliver. Generation is timed apart from the writes.
	scratchBuf = utils.AlignedByteSlice(ctx.BufSize)

	fmt.Printf("Generating random data...")
	genWatch = utils.NewStopwatch()
	_, err = rand.Read(scratchBuf)
	if nil != err {
		fmt.Println()
		_ = file.Close()
		err = blunder.AddError(err, blunder.WriteFileError)
		return
	}
	genWatch.Stop()
	fmt.Printf("took %.3f seconds\n", genWatch.ElapsedSeconds())

	fmt.Printf("Writing %v MB to %v...", ctx.SizeMiB, ctx.OutFilePath)

	writeWatch = utils.NewStopwatch()

	numWrites = sizeBytes / ctx.BufSize
	for i = 0; i < numWrites && !Interrupted(); i++ {
		_, err = file.Write(scratchBuf)
		if nil != err {
			fmt.Println()
			_ = file.Close()
			err = blunder.NewError(blunder.WriteFileError, "error writing to %v: %v", ctx.OutFilePath, err)
			return
		}
	}

	// Close before stopping the clock; the write figure includes handing
	// the last buffer to the kernel but deliberately not an fsync, so it
	// reflects what an application sees, not raw media persistence
	err = file.Close()
	if nil != err {
		fmt.Println()
		err = blunder.NewError(blunder.WriteFileError, "error writing to %v: %v", ctx.OutFilePath, err)
		return
	}

	writeWatch.Stop()

	if Interrupted() {
		fmt.Println()
		err = blunder.NewError(blunder.InterruptedError, "interrupted while writing to %v", ctx.OutFilePath)
		return
	}

	elapsed := writeWatch.ElapsedSeconds()
	fmt.Printf("took %.3f seconds (%.2f MB/sec)\n", elapsed, float64(ctx.SizeMiB)/elapsed)

	err = nil
	return
}
