package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gpubar/internal/config"
	"gpubar/internal/format"
)

type checkResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a config file",
	Long:  "Parse a gpubar config file and its format templates. Checks the given file, or the default config location.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	path := flagConfig
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	result := checkResult{Path: path, Valid: true}
	if err := validateConfig(path); err != nil {
		result.Valid = false
		result.Error = err.Error()
	}

	if jsonOut {
		if err := printJSON(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Printf("OK    %s\n", result.Path)
	} else {
		fmt.Fprintf(os.Stderr, "FAIL  %s\n      %s\n", result.Path, result.Error)
	}

	if !result.Valid {
		return fmt.Errorf("invalid config: %s", path)
	}
	return nil
}

func validateConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if _, err := format.Parse(cfg.Text.Format); err != nil {
		return fmt.Errorf("text format: %w", err)
	}
	if _, err := format.Parse(cfg.Tooltip.Format); err != nil {
		return fmt.Errorf("tooltip format: %w", err)
	}
	return nil
}
