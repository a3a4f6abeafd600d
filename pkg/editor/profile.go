package editor

import (
	"fmt"
	"os"

	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/platform"
)

// AppendPathLine appends a PATH export for binDir to the shell profile
// when binary does not already resolve on PATH. Returns whether a line
// was appended.
//
// The append is intentionally not de-duplicated against existing profile
// content: re-running while the binary is still unresolvable appends the
// line again. Append is cheap, the profile is user-owned, and a
// content-diffing merge is exactly the complexity this tool avoids. The
// behavior is pinned by a regression test so any future change is
// deliberate.
func AppendPathLine(profilePath, binDir, binary string, facts platform.Facts) (bool, error) {
	logger := logging.GetLogger("editor.profile")

	if facts.OnPath(binary) {
		logger.Debug().Str("binary", binary).Msg("Binary already on PATH, no profile change")
		return false, nil
	}

	f, err := os.OpenFile(profilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to open profile %s", profilePath)
	}
	defer func() { _ = f.Close() }()

	line := fmt.Sprintf("export PATH=\"$PATH:%s\"\n", binDir)
	if _, err := f.WriteString(line); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to append to profile %s", profilePath)
	}

	logger.Info().Str("profile", profilePath).Str("dir", binDir).Msg("Appended PATH line")
	return true, nil
}
