package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercrane/cascade/internal/graph"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every document's references for self-loops, missing targets, and cycles",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.Close()

	findings := graph.Validate(s.WS.Documents())
	for _, f := range findings {
		s.Printer.Finding(f)
	}

	errs := graph.Errors(findings)
	if len(errs) > 0 {
		return fmt.Errorf("validation failed with %d error(s)", len(errs))
	}
	s.Printer.Info(fmt.Sprintf("%d document(s) validated, %d warning(s)",
		len(s.WS.Documents()), len(findings)-len(errs)))
	return nil
}
