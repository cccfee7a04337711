package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"metascrub/internal/app/clean"
	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
)

var (
	cleanDest     string
	cleanStrategy string
	cleanMode     string
)

var cleanCmd = &cobra.Command{
	Use:   "clean [folder]",
	Short: "Write metadata-free copies into a mirrored output tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		source := folderArg(args)
		svcOpts := clean.Options{
			Dest:     cleanDest,
			Strategy: model.CleanStrategy(cleanStrategy),
			Mode:     model.CleanMode(cleanMode),
		}
		var result model.CleanCommandResult
		err = runWithProgress(cmd.Context(), "Cleaning "+source, func(ctx context.Context, report func(model.ProgressEvent)) error {
			svcOpts.Progress = report
			var err error
			result, err = clean.NewService().Run(ctx, app, source, svcOpts)
			return err
		})
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

func init() {
	cleanCmd.Flags().StringVar(&cleanDest, "dest", "", "Output folder (default <folder>_clean next to the source)")
	cleanCmd.Flags().StringVar(&cleanStrategy, "strategy", string(model.StrategyAuto), "auto, fresh, overwrite or differential")
	cleanCmd.Flags().StringVar(&cleanMode, "mode", string(model.ModeSmart), "smart (lossless where possible) or full (re-encode everything)")
}
