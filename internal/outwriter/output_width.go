package outwriter

import (
	"os"

	"github.com/huangsam/barrace/internal/contract"
	"golang.org/x/term"
)

// getTerminalWidth honors the width override and otherwise asks the terminal.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// getMaxTableNameWidth calculates the maximum width for entity names in
// keyframe tables based on terminal width.
func getMaxTableNameWidth(cfg *contract.Config) int {
	// Frame + Date + Rank + Value + Label + Prev + Next with borders/padding
	baseWidth := 70
	baseWidth += cfg.Precision + 1

	available := getTerminalWidth(cfg) - baseWidth
	if available < 12 {
		return 12
	}
	if available > 48 {
		return 48
	}
	return available
}
