// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"fmt"
	"os"
	"syscall"
)

// FlushCacheCommand evicts cached file content system-wide. purge(8) needs
// root, hence the sudo; it is invoked via the shell with no arguments.
const FlushCacheCommand = "/usr/bin/sudo /usr/sbin/purge"

// DisableReadCaching tells the kernel not to cache reads on the open file.
//
// Note that the request for no caching will only be honored if the file has
// not already entered the cache at the time of the call.
func DisableReadCaching(file *os.File) (err error) {
	var (
		errno syscall.Errno
	)

	_, _, errno = syscall.Syscall(syscall.SYS_FCNTL, uintptr(file.Fd()), syscall.F_NOCACHE, 1)
	if 0 != errno {
		err = fmt.Errorf("fcntl(,F_NOCACHE,1) returned non-zero errno: %v", errno)
	}

	return
}
