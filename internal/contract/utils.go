package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Rank label constants.
const (
	LeaderValue = "Leader" // First place
	PodiumValue = "Podium" // Second or third place
	ShownValue  = "Shown"  // Inside the display cutoff
	HiddenValue = "Hidden" // At or past the display cutoff
)

// Color variables for console output.
var (
	LeaderColor = color.New(color.FgYellow, color.Bold)  // LeaderColor marks the front runner.
	PodiumColor = color.New(color.FgMagenta, color.Bold) // PodiumColor marks the chasing pack.
	ShownColor  = color.New(color.FgCyan)                // ShownColor marks the rest of the visible bars.
	HiddenColor = color.New(color.FgHiBlack)             // HiddenColor marks records below the cutoff.
)

// GetPlainLabel returns a plain text label for a rank under the given cutoff.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(rank, cutoff int) string {
	switch {
	case rank >= cutoff:
		return HiddenValue
	case rank == 0:
		return LeaderValue
	case rank < 3:
		return PodiumValue
	default:
		return ShownValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(rank, cutoff int) string {
	text := GetPlainLabel(rank, cutoff)

	switch text {
	case LeaderValue:
		return LeaderColor.Sprint(text)
	case PodiumValue:
		return PodiumColor.Sprint(text)
	case ShownValue:
		return ShownColor.Sprint(text)
	default:
		return HiddenColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for source cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".barrace_cache.db"
	}
	return filepath.Join(homeDir, ".barrace_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".barrace_runs.db"
	}
	return filepath.Join(homeDir, ".barrace_runs.db")
}

// TruncateName truncates an entity name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
