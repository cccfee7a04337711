package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"metascrub/internal/app/common"
	"metascrub/internal/app/scan"
	"metascrub/internal/domain/model"
)

var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "Score media files for privacy-sensitive metadata",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}

		root := folderArg(args)
		var result model.ScanResult
		err = runWithProgress(cmd.Context(), "Scanning "+root, func(ctx context.Context, report func(model.ProgressEvent)) error {
			var err error
			result, err = scan.NewService().Run(ctx, app, root, scan.Options{Progress: report})
			return err
		})
		if err != nil {
			return err
		}
		return printResult(result)
	},
}
