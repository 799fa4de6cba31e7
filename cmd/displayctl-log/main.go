// Command displayctl-log views and analyzes monitor access capture files.
//
// Capture files are written by displayctl when run with -access-log.
//
// Usage:
//
//	displayctl-log <command> [flags] <file.dlog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	stats    Show per-monitor reliability statistics
//	export   Export capture file to JSONL or CSV
//	filter   Copy matching events into a new capture file
//
// Examples:
//
//	# View failed accesses only
//	displayctl-log view --failures access.dlog
//
//	# Statistics for one monitor
//	displayctl-log stats --device 'DISPLAY\DEL40A3' access.dlog
//
//	# Export to CSV
//	displayctl-log export --format csv -o access.csv access.dlog
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/displayctl/displayctl-go/cmd/displayctl-log/commands"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "displayctl-log",
		Short:         "View and analyze monitor access capture files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddCommand(newViewCmd(), newStatsCmd(), newExportCmd(), newFilterCmd())
	return root
}

func addFilterFlags(cmd *cobra.Command, opts *commands.FilterOptions) {
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	cmd.Flags().StringVar(&opts.Device, "device", "", "Filter by device instance ID")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Filter by category (access, state, error)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter access events by status (ok, failed, ddc, transmission, gone)")
	cmd.Flags().BoolVar(&opts.FailuresOnly, "failures", false, "Show only failed accesses")
	cmd.Flags().StringVar(&opts.TimeStart, "time-start", "", "Only events at or after this RFC3339 time")
	cmd.Flags().StringVar(&opts.TimeEnd, "time-end", "", "Only events before this RFC3339 time")
}

func newViewCmd() *cobra.Command {
	var opts commands.FilterOptions
	cmd := &cobra.Command{
		Use:   "view [flags] <file.dlog>",
		Short: "View capture file in human-readable format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			return commands.RunView(args[0], filter, cmd.OutOrStdout())
		},
	}
	addFilterFlags(cmd, &opts)
	return cmd
}

func newStatsCmd() *cobra.Command {
	var opts commands.FilterOptions
	cmd := &cobra.Command{
		Use:   "stats [flags] <file.dlog>",
		Short: "Show per-monitor reliability statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			return commands.RunStats(args[0], filter, cmd.OutOrStdout())
		},
	}
	addFilterFlags(cmd, &opts)
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		opts   commands.FilterOptions
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export [flags] <file.dlog>",
		Short: "Export capture file to JSONL or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return commands.RunExport(args[0], format, filter, w)
		},
	}
	addFilterFlags(cmd, &opts)
	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format (jsonl, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newFilterCmd() *cobra.Command {
	var (
		opts   commands.FilterOptions
		output string
	)
	cmd := &cobra.Command{
		Use:   "filter [flags] -o <out.dlog> <file.dlog>",
		Short: "Copy matching events into a new capture file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.Build()
			if err != nil {
				return err
			}
			n, err := commands.RunFilter(args[0], output, filter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", n, output)
			return nil
		},
	}
	addFilterFlags(cmd, &opts)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output capture file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
