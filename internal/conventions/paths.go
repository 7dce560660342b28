package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default patchcheck data directory name (relative to home).
	DefaultDataDir = ".patchcheck"
	// ConfigFile is the config filename inside the data directory.
	ConfigFile = "config.yaml"

	// Sandbox-level files.

	// SandboxMetaDir is the directory inside a sandbox root that holds patchcheck
	// files, it's never part of the baseline.
	SandboxMetaDir = ".patchcheck"
	// PatchFile is the filename the diff is written to before running the patch tool.
	PatchFile = "patch.diff"

	// Docker runner.

	// ContainerWorkspaceDir is where the sandbox root is mounted inside containers.
	ContainerWorkspaceDir = "/workspace"
	// ContainerSandboxLabel is the container label that holds the sandbox directory.
	ContainerSandboxLabel = "patchcheck.sandbox"
)

// DefaultConfigPath returns the default config file path for a home directory.
func DefaultConfigPath(home string) string {
	return filepath.Join(home, DefaultDataDir, ConfigFile)
}

// SandboxPatchPath returns the full path of the diff file inside a sandbox root.
func SandboxPatchPath(root string) string {
	return filepath.Join(root, SandboxMetaDir, PatchFile)
}

// SandboxPatchRelPath returns the diff file path relative to the sandbox root.
func SandboxPatchRelPath() string {
	return filepath.Join(SandboxMetaDir, PatchFile)
}
