package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdazam1942/cti-stix-validator/pkg/cli"
	"github.com/mdazam1942/cti-stix-validator/pkg/console"
	"github.com/mdazam1942/cti-stix-validator/pkg/validator"
)

// Build-time variables set by GoReleaser
var (
	version = "dev"
)

// Global flags
var (
	verbose   bool
	recursive bool
	strict    bool
	watch     bool
	quiet     bool
	schemaDir string
	disabled  []string
	enabled   []string
)

var rootCmd = &cobra.Command{
	Use:   "stix2validator <file-or-directory>...",
	Short: "Validate STIX 2.1 documents against the specification",
	Long: `Validate STIX 2.1 documents against the specification.

Inputs may be JSON or YAML files, or directories of them. Each object is
checked against the STIX object schemas plus additional best-practice checks;
MUST violations are reported as errors and SHOULD violations as warnings
(or errors with --strict).

Individual checks can be turned off with --disable or narrowed with
--enable, using check names or their numeric codes:
  stix2validator --disable custom-prefix,212 bundle.json
  stix2validator --enable format-checks indicator.json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.Options{
			Validator: validator.Options{
				Verbose:  verbose,
				Strict:   strict,
				Disabled: disabled,
				Enabled:  enabled,
			},
			Recursive: recursive,
			Watch:     watch,
			Quiet:     quiet,
			SchemaDir: schemaDir,
		}

		allValid, err := cli.ValidatePaths(args, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			if errors.Is(err, validator.ErrNoFilesFound) {
				os.Exit(2)
			}
			os.Exit(1)
		}
		if !allValid {
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(console.FormatInfoMessage(fmt.Sprintf("stix2validator version %s", version)))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print the failing schema and instance fragments with each error")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories when validating a directory")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "Treat best-practice warnings as errors")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch inputs and revalidate on change")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	rootCmd.Flags().StringVar(&schemaDir, "schemas", "", "Validate against schemas in this directory instead of the bundled set")
	rootCmd.Flags().StringSliceVar(&disabled, "disable", nil, "Checks to skip, by name or numeric code")
	rootCmd.Flags().StringSliceVar(&enabled, "enable", nil, "Only run these checks, by name or numeric code")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
