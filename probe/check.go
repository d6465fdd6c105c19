package probe

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// ErrFFprobeMissing is returned by Check when ffprobe cannot be run.
var ErrFFprobeMissing = errors.New("probe: ffprobe not available")

// Check runs `ffprobe -version` to confirm the binary next to FFmpegPath works.
func (p *Prober) Check(ctx context.Context) error {
	checkffprobe := exec.CommandContext(ctx, ffprobePath(p.FFmpegPath), "-version")
	setSysProcAttr(checkffprobe)

	if _, err := checkffprobe.Output(); err != nil {
		p.Log().Error().Str("function", "Check").Err(err).Msg("")
		return errors.Wrapf(ErrFFprobeMissing, "Check: %v", err)
	}
	return nil
}
