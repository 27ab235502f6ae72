// Package logfinder locates the MTG Arena Player.log file.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvLogFile is the environment variable name for specifying the log file.
const EnvLogFile = "ARENADECK_LOG_FILE"

// LogFileName is the name MTG Arena gives its client log.
const LogFileName = "Player.log"

// steamAppID is MTG Arena's Steam application id, used for Proton prefixes.
const steamAppID = "2141910"

// Sentinel errors.
var (
	ErrLogDirNotFound  = errors.New("log directory not found")
	ErrLogFileNotFound = errors.New("log file not found")
)

// DefaultLogFiles returns candidate Player.log locations for the running OS
// in priority order.
func DefaultLogFiles() []string {
	home, _ := os.UserHomeDir()
	return defaultLogFiles(runtime.GOOS, os.Getenv, home)
}

func defaultLogFiles(goos string, getenv func(string) string, home string) []string {
	const vendor = "Wizards Of The Coast"

	switch goos {
	case "windows":
		localAppData := getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := getenv("USERPROFILE")
			if userProfile == "" {
				return nil
			}
			localAppData = filepath.Join(userProfile, "AppData", "Local")
		}
		// LocalLow is a sibling of Local.
		localLow := filepath.Join(filepath.Dir(localAppData), "LocalLow")
		return []string{filepath.Join(localLow, vendor, "MTGA", LogFileName)}
	case "darwin":
		if home == "" {
			return nil
		}
		return []string{filepath.Join(home, "Library", "Logs", vendor, "MTGA", LogFileName)}
	default:
		if home == "" {
			return nil
		}
		// Proton and Wine prefixes.
		users := filepath.Join("drive_c", "users")
		tail := filepath.Join("AppData", "LocalLow", vendor, "MTGA", LogFileName)
		return []string{
			filepath.Join(home, ".steam", "steam", "steamapps", "compatdata", steamAppID, "pfx", users, "steamuser", tail),
			filepath.Join(home, ".local", "share", "Steam", "steamapps", "compatdata", steamAppID, "pfx", users, "steamuser", tail),
			filepath.Join(home, ".wine", users, filepath.Base(home), tail),
		}
	}
}

// FindLogFile returns the Player.log path to watch.
//
// Priority:
//  1. explicit (if non-empty)
//  2. ARENADECK_LOG_FILE environment variable
//  3. the first DefaultLogFiles() entry that exists, then the first whose
//     directory exists (the client may not have written its log yet)
//
// The file itself does not need to exist, but its directory does; a missing
// directory is a configuration error reported as ErrLogDirNotFound.
// Symlinks in the directory part are resolved for consistency.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		return resolveLogFile(explicit)
	}

	if envFile := os.Getenv(EnvLogFile); envFile != "" {
		path, err := resolveLogFile(envFile)
		if err != nil {
			return "", fmt.Errorf("%s environment variable: %w", EnvLogFile, err)
		}
		return path, nil
	}

	candidates := DefaultLogFiles()
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return resolveLogFile(c)
		}
	}
	for _, c := range candidates {
		if path, err := resolveLogFile(c); err == nil {
			return path, nil
		}
	}

	return "", ErrLogFileNotFound
}

// resolveLogFile validates the directory of path and resolves its symlinks.
// The final path element is kept as-is so a later symlink swap of the log
// itself is still caught by safefile.OpenRegular.
func resolveLogFile(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLogDirNotFound, err)
	}
	dir := filepath.Dir(abs)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrLogDirNotFound, dir)
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLogDirNotFound, err)
	}

	if info, err := os.Lstat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrLogFileNotFound, abs)
	}

	return filepath.Join(resolved, filepath.Base(abs)), nil
}
