// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// ssdbench measures raw sequential write and read throughput of the volume
// holding a target file. It writes SIZE_MB MiB of incompressible random data
// to outfile while timing the writes, evicts the OS page cache, reads the
// file back with caching disabled on the descriptor while timing the reads,
// prints both figures in MB/sec, and removes outfile on the way out.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/NVIDIA/ssdbench/bench"
	"github.com/NVIDIA/ssdbench/blunder"
	"github.com/NVIDIA/ssdbench/logger"
)

const version = "1.0"

func usage(file *os.File, showBanner bool) {
	progname := "ssdbench"
	if 0 != len(os.Args) {
		progname = os.Args[0]
	}

	if showBanner {
		fmt.Fprintf(file, "ssdbench %v - simple SSD sequential throughput benchmark\n", version)
		fmt.Fprintf(file, "\n")
	}
	fmt.Fprintf(file, "Usage: \t%v outfile [SIZE_MB]\n", progname)
	fmt.Fprintf(file, "  where:\n")
	fmt.Fprintf(file, "    outfile                 file to create, overwrite, and remove at exit; must not start with '-'\n")
	fmt.Fprintf(file, "    SIZE_MB                 target file size in MiB; positive integer (default %v)\n", bench.DefaultSizeMiB)
	if showBanner {
		fmt.Fprintf(file, "\n")
		fmt.Fprintf(file, "Note: clearing the read cache between the phases runs a privileged utility via sudo\n")
	}
}

// parseArgs resolves the raw process arguments into a validated bench.Context
// or reports usage guidance to stderr and returns !ok (the caller exits 1).
func parseArgs(args []string) (ctx *bench.Context, ok bool) {
	var (
		err     error
		outfile string
		sizeMiB uint64
	)

	if 2 > len(args) {
		usage(os.Stderr, true)
		return nil, false
	}

	outfile = args[1]

	if 0 == len(outfile) || '-' == outfile[0] {
		// leading '-' is reserved for future flags
		usage(os.Stderr, true)
		return nil, false
	}

	sizeMiB = bench.DefaultSizeMiB

	if 2 < len(args) {
		sizeMiB, err = strconv.ParseUint(args[2], 10, 64)
		if nil != err {
			fmt.Fprintf(os.Stderr, "Failed to parse SIZE_MB (%v)\n\n", err)
			usage(os.Stderr, false)
			return nil, false
		}
		if 0 == sizeMiB {
			fmt.Fprintf(os.Stderr, "Failed to parse SIZE_MB (must be > 0)\n\n")
			usage(os.Stderr, false)
			return nil, false
		}
	}

	if 3 < len(args) {
		fmt.Fprintf(os.Stderr, "Unexpected extra arguments: %v\n\n", args[3:])
		usage(os.Stderr, false)
		return nil, false
	}

	ctx = bench.NewContext(outfile, sizeMiB)

	return ctx, true
}

// armSignalHandler maps every termination-request signal onto the single
// interruption flag the phase loops poll.
func armSignalHandler() {
	// Note: signalChan must be buffered to avoid a race in the window
	// between arming the handler and the watcher blocking on the chan
	// read, when signals might otherwise be lost.
	signalChan := make(chan os.Signal, 16)

	signal.Notify(signalChan, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM, unix.SIGHUP)

	go func() {
		for signalReceived := range signalChan {
			bench.MarkInterrupted()
			fmt.Fprintf(os.Stderr, "(Caught signal %v, will exit)\n", signalReceived)
		}
	}()
}

func run(args []string) (exitCode int) {
	var (
		ctx *bench.Context
		err error
		ok  bool
	)

	ctx, ok = parseArgs(args)
	if !ok {
		return blunder.BadArgsError.Value()
	}

	logger.Up()
	armSignalHandler()

	// Remove the output file on every path out of this function once the
	// write phase has created it
	defer ctx.RemoveOutFile()

	err = ctx.WritePhase()
	if nil != err {
		logger.Errorf("%v", err)
		return blunder.ExitCode(err)
	}

	err = ctx.ReadPhase()
	if nil != err {
		logger.Errorf("%v", err)
		return blunder.ExitCode(err)
	}

	return 0
}

func main() {
	// All work happens in run() so that its deferred cleanup executes
	// before the process exits
	os.Exit(run(os.Args))
}
