// Package pkgmgr drives the OS package managers devup installs through.
// Presence checks always prefer the manager's own query over filesystem
// heuristics, and a failed query is treated as "not installed" rather
// than an error, so a broken search index leads to a safe re-install
// instead of a silent skip.
package pkgmgr

import (
	"context"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/platform"
)

// Manager is a package-manager front-end
type Manager interface {
	// Name identifies the manager in logs
	Name() string

	// Available reports whether the manager binary is on PATH
	Available(facts platform.Facts) bool

	// Bootstrap installs or refreshes the manager itself
	Bootstrap(ctx context.Context, facts platform.Facts) error

	// Installed reports whether a tool is already present. Read-only;
	// query failures mean "not present", never a hard error.
	Installed(ctx context.Context, tool catalog.Tool) bool

	// Install brings a tool to installed state
	Install(ctx context.Context, tool catalog.Tool) error
}

// CaskManager is implemented by managers that also install bundle-style
// applications outside the standard package format
type CaskManager interface {
	Manager

	InstalledCask(ctx context.Context, tool catalog.Tool) bool
	InstallCask(ctx context.Context, tool catalog.Tool) error
}
