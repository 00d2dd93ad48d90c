package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/papercrane/cascade/internal/artifact"
	"github.com/papercrane/cascade/internal/baseline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize every artifact: phases on disk, baseline state, open clarifications",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Bool("prune", false, "delete baselines whose document no longer exists")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ARTIFACT\tPHASE\tBASELINE\tCLARIFICATIONS")

	for _, id := range s.WS.Artifacts() {
		for _, phase := range artifact.PhaseOrder {
			doc, ok := s.WS.Get(id, phase)
			if !ok {
				continue
			}

			var state string
			entry, err := s.Store.Stat(ctx, id, string(phase))
			switch {
			case errors.Is(err, baseline.ErrNoBaseline):
				state = "none"
			case err != nil:
				return err
			default:
				state = fmt.Sprintf("run %.8s @ %s", entry.RunID, entry.UpdatedAt.Format("2006-01-02 15:04"))
			}

			open := len(artifact.Clarifications(doc.Body))
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", id, phase, state, open)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Baselines whose document was deleted from the workspace.
	prune, _ := cmd.Flags().GetBool("prune")
	entries, err := s.Store.List(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		phase := artifact.Phase(entry.Phase)
		if _, ok := s.WS.Get(entry.Artifact, phase); ok {
			continue
		}
		file := artifact.Filename(entry.Artifact, phase)
		if prune {
			if err := s.Store.Delete(ctx, entry.Artifact, entry.Phase); err != nil {
				return err
			}
			s.Printer.Info(fmt.Sprintf("pruned baseline for %s", file))
			continue
		}
		s.Printer.Note(fmt.Sprintf("baseline for %s has no document on disk (status --prune removes it)", file))
	}
	return nil
}
