package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercrane/cascade/internal/artifact"
	"github.com/papercrane/cascade/internal/baseline"
	"github.com/papercrane/cascade/internal/section"
)

var diffCmd = &cobra.Command{
	Use:   "diff <file>",
	Short: "Show which sections changed against the stored baseline",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.WS.Resolve(args[0])
	if err != nil {
		return err
	}

	old, err := s.Store.Get(ctx, doc.Meta.Artifact, string(doc.Meta.Phase))
	var cs *section.ChangeSet
	switch {
	case errors.Is(err, baseline.ErrNoBaseline):
		s.Printer.Note(fmt.Sprintf("no baseline for %s; every section counts as changed", doc.SourceFile))
		cs = section.FullChange(doc.Body)
	case err != nil:
		return err
	default:
		baseDoc, perr := artifact.Parse(old)
		if perr != nil {
			s.Printer.Note("baseline is unreadable; every section counts as changed")
			cs = section.FullChange(doc.Body)
		} else {
			cs = section.Compare(baseDoc.Body, doc.Body)
		}
	}

	if cs.Empty() {
		fmt.Fprintln(os.Stdout, "no changes")
		return nil
	}
	fmt.Fprintln(os.Stdout, cs.Summary)
	for _, h := range cs.Changed {
		fmt.Fprintf(os.Stdout, "  %s\n", h)
	}
	return nil
}
