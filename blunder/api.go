// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package blunder provides error-handling wrappers
//
// These wrappers allow callers to provide additional information in Go errors
// while still conforming to the Go error interface.
//
// This package provides APIs to attach a process exit code to regular Go
// errors. Every failure path in ssdbench maps to exactly one exit code, so
// the code rides along inside the error from the point of failure all the
// way up to main's os.Exit.
//
// This package is currently implemented on top of the ansel1/merry package:
//   https://github.com/ansel1/merry
//
//   merry comes with built-in support for adding information to errors:
//    - stacktraces
//    - overriding the error message
//    - your own additional information
package blunder

import (
	"fmt"

	"github.com/ansel1/merry"
)

// BenchError is the exit-code space of the benchmark.
//
// The one unlisted case is a cache-flush utility failure: the utility's own
// exit status is propagated verbatim, so any small positive value may appear.
// Use BenchError(status) to tag such errors.
type BenchError int

const (
	// BadArgsError covers every argument-resolution failure
	BadArgsError BenchError = 1
	// SizeTooSmallError is returned when the requested size is below the scratch buffer size
	SizeTooSmallError BenchError = 2
	// WriteFileError covers both open and write failures of the write phase
	WriteFileError BenchError = 3
	// ReadOpenError is a failure to open the just-written file for reading back
	ReadOpenError BenchError = 10
	// CacheBypassError means the no-cache directive could not be applied to the
	// read descriptor; the measurement would be meaningless
	CacheBypassError BenchError = 11
	// ReadEmptyError means the read loop hit EOF without a single byte
	ReadEmptyError BenchError = 20
	// InterruptedError is the distinct termination path taken when a signal is caught
	InterruptedError BenchError = 99
)

// Default exit codes for success and failure
const successCode = 0
const failureCode = -1

// Value returns the int value for the specified BenchError constant
func (err BenchError) Value() int {
	return int(err)
}

// NewError creates a new merry/blunder.BenchError-annotated error using the
// given format string and arguments.
func NewError(errValue BenchError, format string, a ...interface{}) error {
	return merry.WrapSkipping(fmt.Errorf(format, a...), 1).WithValue("exitcode", int(errValue))
}

// AddError is used to add exit-code detail to a Go error.
//
// NOTE: Checks whether the error value has already been set
//       Note that by default merry will replace the old with the new.
//
func AddError(e error, errValue BenchError) error {
	if e == nil {
		// Error hasn't been allocated yet; need to create one
		//
		// Usually we wouldn't want to mess with a nil error, but the caller of
		// this function obviously intends to make this a non-nil error.
		//
		// It's recommended that the caller create an error with some context
		// in the error string first, but we don't want to silently not work
		// if they forget to do that.
		//
		return merry.New("regular error").WithValue("exitcode", int(errValue))
	}

	// Make the error "merry", adding stack trace as well as exit-code value.
	// This is done all in one line because the merry APIs create a new error each time.
	return merry.WrapSkipping(e, 1).WithValue("exitcode", int(errValue))
}

// ExitCode extracts the exit code from the error, if it was previously
// wrapped. Otherwise a default value is returned.
func ExitCode(e error) int {
	if e == nil {
		// nil error = success
		return successCode
	}

	// If the "exitcode" key/value was not present, merry.Value returns nil.
	var code = failureCode
	tmp := merry.Value(e, "exitcode")
	if tmp != nil {
		code = tmp.(int)
	}

	return code
}

func ErrorString(e error) string {
	if e == nil {
		return ""
	}

	// Get the regular error string
	errPlusVal := e.Error()

	// Add the exit-code value to it, if set
	tmp := merry.Value(e, "exitcode")
	if tmp != nil {
		errPlusVal = fmt.Sprintf("%s. Exit Code: %v\n", errPlusVal, tmp.(int))
	}

	return errPlusVal
}

// Check if an error matches a particular BenchError
//
// NOTE: Because the value of the underlying exit code is used to do this
//       check, one cannot use this API to distinguish between errors that
//       share a code (an open failure and a write failure both carry
//       WriteFileError and differ only in their message).
//
func Is(e error, theError BenchError) bool {
	return ExitCode(e) == theError.Value()
}

// Check if an error is NOT a particular BenchError
func IsNot(e error, theError BenchError) bool {
	return ExitCode(e) != theError.Value()
}

// Check if an error is the success case
func IsSuccess(e error) bool {
	return ExitCode(e) == successCode
}

// Check if an error is NOT the success case
func IsNotSuccess(e error) bool {
	return ExitCode(e) != successCode
}

// Location returns the file and line number of the code that generated the error.
// Returns zero values if e has no stacktrace.
func Location(e error) (file string, line int) {
	file, line = merry.Location(e)
	return
}

// SourceLine returns the string representation of Location's result.
// Returns empty string if e has no stacktrace.
func SourceLine(e error) string {
	return merry.SourceLine(e)
}

// Details wraps merry.Details, which returns all error details including stacktrace in a string.
func Details(e error) string {
	return merry.Details(e)
}

// Stacktrace wraps merry.Stacktrace, which returns error stacktrace (if set) in a string.
func Stacktrace(e error) string {
	return merry.Stacktrace(e)
}
