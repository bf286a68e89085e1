//go:build !windows

// Package process terminates browser process trees left behind by the
// headless renderer.
package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid, taking the
// browser's renderer and GPU children down with it. Non-positive pids are
// ignored since they would target the caller's own group.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best effort: the launcher's own Kill runs after this as a fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
