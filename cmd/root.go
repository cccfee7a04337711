package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
)

var opts common.GlobalOptions

var rootCmd = &cobra.Command{
	Use:          "metascrub",
	Short:        "metascrub finds and removes privacy-sensitive media metadata",
	Long:         "metascrub scores images, audio and video for GPS, author and AI-generation metadata and writes cleaned copies into a mirrored \"<folder>_clean\" tree.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if stdinInteractive() {
			return runInteractiveMenu()
		}
		return cmd.Help()
	},
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command
// context, which stops scans and cleans between files.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		appCtx, err := common.NewAppContext(ctx, opts)
		if err != nil {
			return err
		}
		cmd.SetContext(common.WithApp(ctx, appCtx))
		return nil
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return nil
		}
		return app.Close()
	}

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "Preview actions without modifying files")
	rootCmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.Yes, "yes", false, "Auto-confirm actions in non-interactive mode")
	rootCmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&opts.NoOpLog, "no-oplog", false, "Disable operation log")
	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config file (default $XDG_CONFIG_HOME/metascrub/config.yaml)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(diagnoseCmd)
}

func printResult(v any) error {
	if opts.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	var text string
	switch r := v.(type) {
	case model.ScanResult:
		text = renderScan(r)
	case model.CleanCommandResult:
		text = renderClean(r)
	case model.DumpResult:
		text = renderDump(r)
	case model.CompareResult:
		text = renderCompare(r)
	case model.DiagnoseResult:
		text = renderDiagnose(r)
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		text = string(b)
	}
	fmt.Println(text)
	return nil
}

// folderArg returns the first positional argument, or the working
// directory.
func folderArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}
