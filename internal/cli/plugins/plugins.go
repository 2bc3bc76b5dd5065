// Package plugins runs external errprofile-<command> binaries for commands
// errprofile does not know, the way kubectl and git do.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "errprofile-"

// EnvPluginDir adds a directory searched before all others.
const EnvPluginDir = "ERRPROFILE_PLUGIN_DIR"

// KnownPlugins maps plugin names to a short description shown when the
// plugin is requested but not installed.
var KnownPlugins = map[string]string{
	"watch": "Re-profile a directory whenever its log files change.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// SearchDirs returns the directories searched for plugins, in order:
//  1. $ERRPROFILE_PLUGIN_DIR, if set
//  2. the directory of the errprofile binary
//  3. ~/.errprofile/plugins
//
// PATH is searched after these.
func SearchDirs() []string {
	var dirs []string
	if dir := os.Getenv(EnvPluginDir); dir != "" {
		dirs = append(dirs, dir)
	}
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".errprofile", "plugins"))
	}
	return dirs
}

// FindPlugin returns the path of the errprofile-<command> binary.
func FindPlugin(command string) (string, error) {
	name := Prefix + command

	for _, dir := range SearchDirs() {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments, wired to the current
// stdin, stdout and stderr, and returns its exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...) // #nosec G204 -- plugin path comes from FindPlugin
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 1
	}

	return 0
}

// FormatNotFoundError explains an unknown command and where a plugin for it
// would be picked up from.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"errprofile\"\n", command)

	if info, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&sb, "\n%q is available as a plugin.\n%s\n\nInstall the plugin binary as one of:\n", command, info)
	} else {
		sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	}

	fmt.Fprintf(&sb, "  - $%s/%s%s\n", EnvPluginDir, Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s in the same directory as errprofile\n", Prefix, command)
	fmt.Fprintf(&sb, "  - ~/.errprofile/plugins/%s%s\n", Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)

	sb.WriteString("\nRun 'errprofile --help' for usage.")

	return sb.String()
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
