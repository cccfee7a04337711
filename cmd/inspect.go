package cmd

import (
	"github.com/spf13/cobra"

	"metascrub/internal/app/common"
	"metascrub/internal/app/compare"
	"metascrub/internal/app/diagnose"
	"metascrub/internal/app/dump"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print every metadata entry of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		result, err := dump.NewService().Run(cmd.Context(), app, args[0])
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Show metadata before and after cleaning",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		result, err := compare.NewService().Run(cmd.Context(), app, args[0])
		if err != nil {
			return err
		}
		return printResult(result)
	},
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [folder]",
	Short: "Dump the first few images and videos of a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := common.FromCommand(cmd)
		if err != nil {
			return err
		}
		result, err := diagnose.NewService().Run(cmd.Context(), app, folderArg(args))
		if err != nil {
			return err
		}
		return printResult(result)
	},
}
