package cmd

import (
	"github.com/spf13/cobra"
)

var tersifyCmd = &cobra.Command{
	Use:   "tersify <file>",
	Short: "Ask the model for edit actions that tighten a document, then apply them",
	Args:  cobra.ExactArgs(1),
	RunE:  runTersify,
}

func init() {
	rootCmd.AddCommand(tersifyCmd)
}

func runTersify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.Engine.Tersify(ctx, args[0])
	if err != nil {
		s.Printer.Error(err.Error())
		return err
	}
	if !res.Written {
		s.Printer.Info("no actions applied; file left untouched")
	}
	return nil
}
