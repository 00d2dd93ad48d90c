package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercrane/cascade/internal/artifact"
	"github.com/papercrane/cascade/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a cascade workspace with a config file and an example requirement",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

const defaultConfigYAML = `# cascade configuration
workspace_dir: .
baseline_db: .cascade/baselines.db
model: gpt-4o-mini
api_key_env: OPENAI_API_KEY
request_timeout_secs: 120
max_retries: 2
git_preflight: true
`

func runInit(cmd *cobra.Command, args []string) error {
	printer := ui.New(false)
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cfgPath := filepath.Join(dir, ".cascade.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists; refusing to overwrite", cfgPath)
	}
	if err := os.WriteFile(cfgPath, []byte(defaultConfigYAML), 0o644); err != nil {
		return err
	}

	example := &artifact.Document{
		Meta: artifact.Metadata{
			Artifact:    "example",
			Phase:       artifact.PhaseRequirement,
			Version:     "0.1.0",
			LastUpdated: time.Now().Format("2006-01-02"),
		},
		Body: "# Example Requirement\n\n" +
			"## Functional Requirements\n\n" +
			"- FR-1: Describe what the system must do.\n\n" +
			"## Clarifications\n\n" +
			"- [NEEDS CLARIFICATION: replace this example with a real requirement]\n",
	}
	content, err := example.Serialize()
	if err != nil {
		return err
	}
	docPath := filepath.Join(dir, artifact.Filename("example", artifact.PhaseRequirement))
	if _, err := os.Stat(docPath); err == nil {
		return fmt.Errorf("%s already exists; refusing to overwrite", docPath)
	}
	if err := os.WriteFile(docPath, []byte(content), 0o644); err != nil {
		return err
	}

	printer.Info(fmt.Sprintf("initialized cascade workspace in %s", dir))
	printer.Info(fmt.Sprintf("edit %s, then cascade run %s", docPath, docPath))
	return nil
}
