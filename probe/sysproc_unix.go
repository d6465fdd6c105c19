//go:build !windows

package probe

import "os/exec"

func setSysProcAttr(cmd *exec.Cmd) {
	// No additional attributes needed for Unix
}
