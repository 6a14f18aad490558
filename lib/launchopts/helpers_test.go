// Copyright 2026 The Foundry Authors
// SPDX-License-Identifier: Apache-2.0

package launchopts

import "os"

// writeExecutable drops a trivial executable shell script at path, so
// tests can exercise resolveJavaPath without a real JDK present.
func writeExecutable(path string) error {
	return os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755)
}
