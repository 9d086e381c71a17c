package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"syngen/internal/report"
)

var inspectFlags struct {
	file string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a summary of an emitted run report",
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVarP(&inspectFlags.file, "file", "f", "", "Path to report.json (required)")
	_ = inspectCmd.MarkFlagRequired("file")
}

func runInspect(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(inspectFlags.file)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	fmt.Printf("Entity:            %s\n", rep.Entity)
	fmt.Printf("Images processed:  %d\n", rep.TotalImages)
	fmt.Printf("API successes:     %d\n", rep.APISuccess)
	fmt.Printf("API failures:      %d\n", rep.APIFailures)
	fmt.Printf("Discarded:         %d\n", rep.Discarded)
	fmt.Printf("Augmented images:  %d\n", rep.AugmentedImages)
	fmt.Printf("Processing time:   %s\n", rep.ProcessingTime)

	if len(rep.Contexts) == 0 {
		return nil
	}
	images := make([]string, 0, len(rep.Contexts))
	for name := range rep.Contexts {
		images = append(images, name)
	}
	sort.Strings(images)
	fmt.Println("\nContexts:")
	for _, name := range images {
		contexts := rep.Contexts[name]
		fmt.Printf("  %s (%d)\n", name, len(contexts))
		indexes := make([]string, 0, len(contexts))
		for idx := range contexts {
			indexes = append(indexes, idx)
		}
		sort.Strings(indexes)
		for _, idx := range indexes {
			fmt.Printf("    %s: %s\n", idx, contexts[idx])
		}
	}
	return nil
}
