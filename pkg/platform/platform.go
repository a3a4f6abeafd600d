// Package platform captures the ambient machine facts every stage
// branches on. Facts is built once at startup and passed explicitly so
// business logic never reads the environment directly, which keeps
// stages deterministic under test.
package platform

import (
	"os/exec"
	"runtime"

	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/shirou/gopsutil/v3/host"
)

// OS family identifiers used throughout the catalogs
const (
	FamilyDarwin = "darwin"
	FamilyLinux  = "linux"
)

// LookPathFunc reports where a binary resolves on PATH, if anywhere.
// Matches the signature of exec.LookPath.
type LookPathFunc func(name string) (string, error)

// Facts is an immutable snapshot of the machine devup is provisioning
type Facts struct {
	// Family is the OS family ("darwin", "linux")
	Family string

	// Arch is the machine architecture ("arm64", "amd64")
	Arch string

	// Hostname as reported by the kernel
	Hostname string

	// Distro is the platform name from the host info (e.g. "ubuntu"),
	// empty when detection fails
	Distro string

	// LookPath tests PATH membership for a binary. Injected so tests can
	// simulate resolvable and unresolvable binaries.
	LookPath LookPathFunc
}

// Detect builds Facts for the current machine. Host metadata failures
// degrade to empty fields rather than aborting the run.
func Detect() Facts {
	logger := logging.GetLogger("platform")

	facts := Facts{
		Family:   runtime.GOOS,
		Arch:     runtime.GOARCH,
		LookPath: exec.LookPath,
	}

	info, err := host.Info()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read host info, continuing without it")
		return facts
	}

	facts.Hostname = info.Hostname
	facts.Distro = info.Platform

	logger.Debug().
		Str("family", facts.Family).
		Str("arch", facts.Arch).
		Str("distro", facts.Distro).
		Msg("Platform detected")

	return facts
}

// OnPath reports whether the named binary resolves on PATH
func (f Facts) OnPath(name string) bool {
	if f.LookPath == nil {
		return false
	}
	_, err := f.LookPath(name)
	return err == nil
}

// IsDarwin reports whether the machine is a macOS host
func (f Facts) IsDarwin() bool {
	return f.Family == FamilyDarwin
}

// IsLinux reports whether the machine is a Linux host
func (f Facts) IsLinux() bool {
	return f.Family == FamilyLinux
}
