// SPDX-License-Identifier: MPL-2.0

package hostenv

import (
	"os"
	"slices"
	"sync"
)

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"
)

// detectOnce caches the sandbox detection for the lifetime of the process.
// detectSandboxFrom must not panic: sync.OnceValue re-panics on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the application sandbox, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process runs in.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand returns argv rewritten so that it runs on the host when the
// process is sandboxed. Outside a sandbox argv is returned unchanged.
//
// SDK tools such as adb and makensis are installed on the host, not inside
// the Flatpak or Snap bundle forge may ship in.
func HostCommand(st SandboxType, argv []string) []string {
	prefix := SpawnPrefix(st)
	if len(prefix) == 0 {
		return argv
	}
	return append(slices.Clone(prefix), argv...)
}

// SpawnPrefix returns the command and arguments that run a program on the
// host from inside sandbox st.
func SpawnPrefix(st SandboxType) []string {
	switch st {
	case SandboxFlatpak:
		return []string{"flatpak-spawn", "--host"}
	case SandboxSnap:
		return []string{"snap", "run", "--shell"}
	case SandboxNone:
		return nil
	default:
		return nil
	}
}

// detectSandboxFrom performs detection with injected lookups so tests do not
// touch process-wide state.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	// Flatpak takes precedence; /.flatpak-info exists in every Flatpak sandbox.
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
