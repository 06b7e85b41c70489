// =============================================================================
// Collections Automation - Automation Commands
// =============================================================================
//
// This file defines one command per automation. Each takes a single input
// file and runs it through the automation runner.
//
// COMMAND USAGE:
//   automation cured-list FILE [flags]
//   automation updates FILE [flags]
//   automation uploads FILE [flags]
//   automation clean FILE [flags]
//
// FLAGS:
//   --campaign : Campaign code (default: default_campaign from config.yaml)
//   --sheet    : Worksheet to read (default: the campaign's sheet, else the first)
//   --dry-run  : Run the transformation and print row counts only
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"

	"github.com/ginjaninja78/collections-automation/internal/automation"
	"github.com/ginjaninja78/collections-automation/internal/config"
	"github.com/spf13/cobra"
)

// automationFlags holds the flags of one automation command.
type automationFlags struct {
	campaign string
	sheet    string
	dryRun   bool
}

// newAutomationCmd builds the command for one automation.
func newAutomationCmd(name, short, long string) *cobra.Command {
	var flags automationFlags

	cmd := &cobra.Command{
		Use:   name + " FILE",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutomation(name, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.campaign, "campaign", "", "Campaign code (default: default_campaign)")
	cmd.Flags().StringVar(&flags.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Run the transformation without writing files")
	return cmd
}

func init() {
	rootCmd.AddCommand(
		newAutomationCmd(config.AutomationCuredList,
			"Expand a cured list into remarks, reshuffle, and payments files",
			`The cured-list command classifies every cured list row, expands it into
one remark per status label, and enriches each remark from the barcode index.

Outputs (under output_dir):
  BPI_FOR_REMARKS/BPI AUTOCURING REMARKS {date}.xlsx
  BPI_FOR_OTHERS/BPI AUTOCURING RESHUFFLE {date}.xlsx
  BPI_FOR_PAYMENTS/BPI AUTOCURING PAYMENT {date}.xlsx
The input is copied to CURED_LIST/CURED LIST {date}.xlsx.

A source sheet narrower than the configured layout is rejected before any
output is written.`),
		newAutomationCmd(config.AutomationUpdates,
			"Remap an endorsement file for account updates",
			`The updates command projects an endorsement sheet into the 16-column
update layout. Amounts are rounded to two decimals, mobile numbers are
normalized, and ENDO DATE becomes DATE REFERRED (MM/DD/YYYY).`),
		newAutomationCmd(config.AutomationUploads,
			"Remap a new endorsement file for upload",
			`The uploads command projects a new endorsement sheet into the 16-column
upload layout. The conversion is the same as for updates.`),
		newAutomationCmd(config.AutomationClean,
			"Clean a sheet",
			`The clean command runs the campaign's manipulations (add, remove, and
rename columns, filter rows), applies the cleaning options of config.yaml,
replaces unsafe header characters with underscores, and writes
CLEANED/<name>.xlsx.`),
	)
}

// runAutomation runs one automation over one file and prints the result.
func runAutomation(name, path string, flags automationFlags) error {
	campaign, err := resolveCampaign(flags.campaign)
	if err != nil {
		return err
	}

	runner := automation.New(mainConfig, logger, recorder)
	result := runner.Run(automation.Request{
		InputPath:  path,
		Automation: name,
		Campaign:   campaign,
		Sheet:      flags.sheet,
		DryRun:     flags.dryRun,
	})

	printResult(result, flags.dryRun)
	return result.Error
}

// printResult prints a run summary to stdout.
func printResult(r automation.Result, dryRun bool) {
	fmt.Println("\n========================================")
	if dryRun {
		fmt.Println("DRY RUN - no files written")
	}
	fmt.Printf("File:            %s\n", r.FilePath)
	fmt.Printf("Campaign:        %s\n", r.Campaign)
	fmt.Printf("Automation:      %s\n", r.Automation)
	fmt.Printf("Source rows:     %d\n", r.Stats.SourceRows)
	fmt.Printf("After cleaning:  %d\n", r.Stats.CleanedRows)

	if len(r.Stats.Categories) > 0 {
		fmt.Println("Categories:")
		for _, name := range sortedKeys(r.Stats.Categories) {
			fmt.Printf("  %-18s %d\n", name, r.Stats.Categories[name])
		}
		fmt.Printf("Lookup misses:   %d\n", r.Stats.LookupMisses)
		fmt.Printf("Date fallbacks:  %d\n", r.Stats.DateFallbacks)
	}

	if len(r.Stats.OutputRows) > 0 {
		fmt.Println("Output rows:")
		for _, name := range sortedKeys(r.Stats.OutputRows) {
			fmt.Printf("  %-18s %d\n", name, r.Stats.OutputRows[name])
		}
	}
	for _, path := range r.OutputFiles {
		fmt.Printf("Wrote:           %s\n", path)
	}
	if r.InputCopy != "" {
		fmt.Printf("Input copy:      %s\n", r.InputCopy)
	}
	if r.ArchivedTo != "" {
		fmt.Printf("Archived to:     %s\n", r.ArchivedTo)
	}
	fmt.Printf("Time elapsed:    %s\n", r.Stats.ProcessingTime)
	fmt.Println("========================================")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
