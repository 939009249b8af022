// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// FlushCacheCommand evicts cached file content system-wide. Writing to
// drop_caches needs root, hence the sudo; it is invoked via the shell with
// no arguments.
const FlushCacheCommand = "sync; /usr/bin/sudo /bin/sh -c 'echo 3 > /proc/sys/vm/drop_caches'"

// DisableReadCaching tells the kernel not to cache reads on the open file.
//
// Linux has no F_NOCACHE; O_DIRECT is set on the open descriptor instead.
// Reads then DMA directly into user memory, which requires the destination
// buffer to be aligned on the platform's buffer cache boundary.
func DisableReadCaching(file *os.File) (err error) {
	var (
		flags int
	)

	flags, err = unix.FcntlInt(file.Fd(), unix.F_GETFL, 0)
	if nil != err {
		err = fmt.Errorf("fcntl(,F_GETFL,) failed: %v", err)
		return
	}

	_, err = unix.FcntlInt(file.Fd(), unix.F_SETFL, flags|syscall.O_DIRECT)
	if nil != err {
		err = fmt.Errorf("fcntl(,F_SETFL,O_DIRECT) failed: %v", err)
	}

	return
}
