// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package logger provides logging wrappers
//
// These wrappers allow us to standardize logging while still using a third-party
// logging package.
//
// This package is currently implemented on top of the sirupsen/logrus package:
//   https://github.com/sirupsen/logrus
//
// The APIs here add package and calling function to all logs.
//
// All output goes to stderr: stdout is reserved for measurement results,
// which the benchmark prints directly.
package logger

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/NVIDIA/ssdbench/utils"
)

// Log fields supported by logger:
const packageKey string = "package"
const functionKey string = "function"
const gidKey string = "goroutine"

// Up initializes the underlying logrus logger. Safe to call more than once.
func Up() {
	log.SetFormatter(&log.TextFormatter{DisableColors: true})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)
}

func newLogEntry(level int) *log.Entry {
	// Extract package and function from the call stack
	fn, pkg, gid := utils.GetFuncPackage(level + 1)

	fields := make(log.Fields)
	fields[functionKey] = fn
	fields[packageKey] = pkg
	fields[gidKey] = gid

	return log.WithFields(fields)
}

var backtraceOneLevel int = 1

// EXTERNAL logging APIs
// These APIs are in the style of those provided by the logrus package.

func Info(args ...interface{}) {
	newLogEntry(backtraceOneLevel).Info(fmt.Sprint(args...))
}

func Infof(format string, args ...interface{}) {
	newLogEntry(backtraceOneLevel).Info(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...interface{}) {
	newLogEntry(backtraceOneLevel).Warn(fmt.Sprintf(format, args...))
}

func Error(args ...interface{}) {
	newLogEntry(backtraceOneLevel).Error(fmt.Sprint(args...))
}

func Errorf(format string, args ...interface{}) {
	newLogEntry(backtraceOneLevel).Error(fmt.Sprintf(format, args...))
}

// ErrorWithError logs the error message at error level plus whatever
// additional detail the error carries.
func ErrorWithError(err error, args ...interface{}) {
	newLogEntry(backtraceOneLevel).WithError(err).Error(fmt.Sprint(args...))
}

func Fatalf(format string, args ...interface{}) {
	newLogEntry(backtraceOneLevel).Fatal(fmt.Sprintf(format, args...))
}
