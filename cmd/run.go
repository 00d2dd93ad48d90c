package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercrane/cascade/internal/cascade"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Detect changes in a document and cascade them downstream",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Bool("force", false, "skip the uncommitted-changes pre-flight check")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	force, _ := cmd.Flags().GetBool("force")
	res, err := s.Engine.Run(ctx, cascade.Request{File: args[0], Force: force})
	if err != nil {
		s.Printer.Error(err.Error())
		return err
	}
	if !res.Success {
		return fmt.Errorf("cascade finished with %d error(s)", len(res.Errors))
	}
	return nil
}
