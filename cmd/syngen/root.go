// syngen builds curated synthetic datasets: it inserts an entity into every
// photograph of a folder at AI-selected placements, keeps only candidates
// that pass an authenticity judge, augments the survivors, and writes a run
// report.
//
// Usage:
//
//	syngen run -e <entity> [-c <limit>] [--augment] [--parallel n]
//	syngen inspect -f <report.json>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "syngen",
	Short: "Synthetic image dataset generation with an AI placement judge",
	Long: "Syngen inserts a target entity into source photographs at model-selected\n" +
		"placements, filters results through an authenticity judge, and augments\n" +
		"accepted images into a training-ready dataset.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
