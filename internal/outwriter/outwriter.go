// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteKeyframes prints keyframe results using the configured output format.
func (ow *OutWriter) WriteKeyframes(result schema.KeyframeResult, summary schema.RollupSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteKeyframeResults(result, summary, cfg, duration)
}

// WriteRollup prints a rollup using the configured output format.
func (ow *OutWriter) WriteRollup(summary schema.RollupSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteRollupResults(summary, cfg, duration)
}
