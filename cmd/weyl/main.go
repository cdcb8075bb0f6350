package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weylang/weyl/pkg/cli"
)

var version = "0.3.0"

func main() {
	var (
		trace bool
		color string
	)

	root := &cobra.Command{
		Use:           "weyl",
		Short:         "Concept witness inference engine",
		Long:          "weyl resolves concept witnesses over declared instance scopes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&trace, "trace", false, "enable resolution tracing")
	root.PersistentFlags().StringVar(&color, "color", "auto", "colorize output (auto|always|never)")

	solveCmd := &cobra.Command{
		Use:   "solve <scopefile>",
		Short: "Resolve every query in a scope file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := cli.Solve(args[0], cli.Options{Trace: trace, Color: color})
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <scopefile>",
		Short: "Validate a scope file without solving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := cli.Check(args[0], cli.Options{Trace: trace, Color: color})
			if code != 0 {
				os.Exit(code)
			}
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("weyl %s\n", version)
		},
	}

	root.AddCommand(solveCmd, checkCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
