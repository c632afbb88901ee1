// Package cmd provides the command-line interface for jiragraph.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiragraph/internal/config"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jiragraph [flags] ISSUE-KEY...",
		Short: "Draw the dependency graph of JIRA issues",
		Long: `jiragraph walks the subtasks, epic children and issue links reachable from one
or more seed issues and draws them as a Graphviz digraph.

Nodes are colored by status category (yellow in progress, green done, white
otherwise) and epics are drawn as purple double octagons. By default the
document is written to out/gv/<name>.gv and rendered to out/png/<name>.png.

Example:
  jiragraph -j https://jira.example.com -u jdoe PROJ-1 PROJ-7
  jiragraph -j https://jira.example.com -b $TOKEN --jql 'project = PROJ' --local`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGraph,
	}

	flags := cmd.Flags()
	flags.String("config", "", "Config file (yaml, toml or json)")

	// Connection
	flags.StringP("jira", "j", "http://jira.example.com", "JIRA base URL (with protocol)")
	flags.StringP("user", "u", "", "Username to access JIRA")
	flags.StringP("password", "p", "", "Password to access JIRA")
	flags.StringP("cookie", "c", "", "JSESSIONID session cookie value")
	flags.StringP("bearer", "b", "", "Bearer token value (no user required)")
	flags.BoolP("no-auth", "N", false, "Use no authentication")
	flags.Bool("no-verify-ssl", false, "Do not verify SSL certificates")

	// Traversal
	flags.String("jql", "", "JQL search for seed issues (e.g. 'project = PROJ')")
	flags.StringArrayP("exclude-link", "x", nil, "Exclude link type (can be specified multiple times)")
	flags.StringArray("hide-link", nil, "Do not draw edges with this link phrase (can be specified multiple times)")
	flags.StringSliceP("show-directions", "s", []string{"inward", "outward"}, "Link directions to draw (inward, outward)")
	flags.StringSliceP("directions", "d", []string{"inward", "outward"}, "Link directions to walk (inward, outward)")
	flags.StringP("issue-include", "i", "", "Only follow linked issues whose key contains this text")
	flags.StringArray("issue-exclude", nil, "Exclude issue key (can be specified multiple times)")
	flags.Bool("ignore-closed", false, "Ignore closed issues")
	flags.BoolP("ignore-epic", "e", false, "Do not follow an epic into its child issues")
	flags.BoolP("ignore-subtasks", "t", false, "Ignore subtasks")
	flags.BoolP("dont-traverse", "T", false, "Do not leave the seed issue's project")
	flags.BoolP("word-wrap", "w", false, "Word wrap issue summaries instead of truncating them")
	flags.Bool("no-merge-relates", false, "Do not merge 'relates to' edges")
	flags.Bool("share-visited", false, "Share visited issues across seeds")

	// Output
	flags.BoolP("local", "l", false, "Print the graphviz document to stdout")
	flags.Bool("gv-only", false, "Write only the graphviz document")
	flags.Bool("png-only", false, "Write only the image")
	flags.StringP("file", "f", config.DefaultFileName, "Output file name (defaults to the seed keys)")
	flags.String("out-dir", "out", "Output directory")
	flags.String("node-shape", "box", "Node shape (box, circle, ellipse, ...)")
	flags.String("image-engine", config.EngineChart, "Image engine (chart, graphviz)")
	flags.String("image-format", "png", "Image format for the graphviz engine (png, svg)")
	flags.String("chart-url", config.DefaultChartURL, "Chart service URL for the chart engine")
	flags.String("log-file", "", "Also append logs to this file")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
