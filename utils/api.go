// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package utils provides miscellaneous utilities for ssdbench.
package utils

import (
	"bytes"
	"regexp"
	"runtime"
	"strconv"
	"time"
	"unsafe"
)

// AlignedBoundary is the alignment guaranteed by AlignedByteSlice. It is
// sufficient for O_DIRECT reads on every filesystem we target (the
// requirement is the logical block size, at most 4 KiB).
const AlignedBoundary = 4096

// AlignedByteSlice returns a byte slice of the requested size whose first
// element sits on an AlignedBoundary boundary. The Go allocator only
// guarantees word alignment, so we over-allocate and slice.
func AlignedByteSlice(size uint64) (buf []byte) {
	var (
		offset  uintptr
		rawAddr uintptr
		rawBuf  []byte
	)

	rawBuf = make([]byte, size+AlignedBoundary)
	rawAddr = uintptr(unsafe.Pointer(&rawBuf[0]))

	offset = (AlignedBoundary - (rawAddr % AlignedBoundary)) % AlignedBoundary

	buf = rawBuf[offset : offset+uintptr(size)]

	return
}

// GetGID returns the current goroutine's id; useful when logging around
// asynchronous signal delivery.
func GetGID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// Return a string containing calling function and package
func GetAFnName(level int) string {
	// Get the PC and file for the level requested, adding one level to skip this function
	pc, _, _, _ := runtime.Caller(level + 1)
	// Retrieve a Function object this functions parent
	functionObject := runtime.FuncForPC(pc)
	// Regex to extract just the package and function name (and not the module path)
	extractFnName := regexp.MustCompile(`[^\/]*$`)
	return extractFnName.FindString(functionObject.Name())
}

// Return separate strings containing calling function and package
func GetFuncPackage(level int) (fn string, pkg string, gid uint64) {
	// Get the combined function and package names of our caller
	funcPkg := GetAFnName(level + 1)

	// Regex to extract the package name (beginning of string to first ".")
	extractPkgName := regexp.MustCompile(`^[^.]*`)
	pkg = extractPkgName.FindString(funcPkg)

	// Regex to extract the function name (end of string to last ".")
	extractFnName := regexp.MustCompile(`[^.]*$`)
	fn = extractFnName.FindString(funcPkg)

	gid = GetGID()

	return fn, pkg, gid
}

type Stopwatch struct {
	StartTime   time.Time
	StopTime    time.Time
	ElapsedTime time.Duration
	IsRunning   bool
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{StartTime: time.Now(), IsRunning: true}
}

func (sw *Stopwatch) Stop() time.Duration {
	sw.StopTime = time.Now()

	// Stopwatch should have been running when stopped, but
	// to avoid making callers do error checking we just
	// don't do calculations if it wasn't.
	if sw.IsRunning {
		sw.ElapsedTime = sw.StopTime.Sub(sw.StartTime)
		sw.IsRunning = false
	}
	return sw.ElapsedTime
}

func (sw *Stopwatch) Restart() {
	// Stopwatch should not be running when restarted, but
	// to avoid making callers do error checking we just
	// don't do anything if it wasn't.
	if !sw.IsRunning {
		sw.ElapsedTime = 0
		sw.StartTime = time.Now()
		sw.StopTime = time.Time{}
		sw.IsRunning = true
	}
}

func (sw *Stopwatch) Elapsed() time.Duration {
	if !sw.IsRunning {
		// Not running, return elapsed time when stopped
		return sw.ElapsedTime
	}

	// Otherwise still running, return time so far
	return time.Since(sw.StartTime)
}

// ElapsedSeconds returns the elapsed time as a float64 number of seconds,
// the unit throughput is computed in.
func (sw *Stopwatch) ElapsedSeconds() float64 {
	return sw.Elapsed().Seconds()
}

func (sw *Stopwatch) ElapsedString() string {
	return sw.Elapsed().String()
}
