// =============================================================================
// Collections Automation - Main Entry Point
// =============================================================================
//
// USAGE:
//   automation cured-list FILE  - Expand a cured list into remarks, reshuffle, and payments
//   automation updates FILE     - Remap an endorsement file for updates
//   automation uploads FILE     - Remap a new endorsement file for upload
//   automation clean FILE       - Clean a sheet
//   automation process          - Run every matching file in the input directory
//   automation version          - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Automations, readers, writers, configuration
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/collections-automation/cmd"
)

func main() {
	cmd.Execute()
}
