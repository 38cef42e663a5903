package cmd

import (
	"fmt"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/iocache"
	"github.com/huangsam/barrace/internal/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpSetup validates the base config shared by every tool call.
// Sources arrive per call, so none is required here.
func mcpSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.SourceStr = ""
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	contract.SetVerbose(cfg.Verbose)
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the barrace MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents build keyframes and rollups.

Tools:
  get_keyframes - Synthesize keyframes for a source
  get_rollup    - Group a source by date

Logs go to stderr so stdout stays reserved for the protocol.`,
	PreRunE: mcpSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
