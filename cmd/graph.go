package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/danielolaszy/jiragraph/internal/config"
	"github.com/danielolaszy/jiragraph/internal/graph"
	"github.com/danielolaszy/jiragraph/internal/jira"
	"github.com/danielolaszy/jiragraph/internal/logging"
	"github.com/danielolaszy/jiragraph/internal/progress"
	"github.com/danielolaszy/jiragraph/internal/render"
	"github.com/danielolaszy/jiragraph/pkg/models"
)

// runGraph builds the graph for the seed issues and prints or saves it.
func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	closeLog, err := configureLogging(cfg.Output, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Jira.AuthMode() == config.AuthBasic && progress.IsTerminal(os.Stdin) {
		readPassword := func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
		if err := promptCredentials(&cfg.Jira, cmd.InOrStdin(), cmd.ErrOrStderr(), readPassword); err != nil {
			return err
		}
	}
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return err
	}

	client, err := jira.NewClient(cfg.Jira)
	if err != nil {
		return fmt.Errorf("failed to initialize jira client: %w", err)
	}

	ctx := cmd.Context()
	seeds := append([]string(nil), args...)
	if cfg.Graph.JQL != "" {
		keys, err := client.ListKeys(ctx, cfg.Graph.JQL)
		if err != nil {
			return fmt.Errorf("failed to run jql query: %w", err)
		}
		logging.Info("jql query matched issues", "jql", cfg.Graph.JQL, "count", len(keys))
		seeds = append(seeds, keys...)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no issue keys given: pass issue keys as arguments or use --jql")
	}

	statements, err := buildGraph(ctx, client, graphOptions(cfg), seeds)
	if err != nil {
		return err
	}
	statements = graph.Dedup(statements)

	out := cmd.OutOrStdout()
	if cfg.Output.Local {
		fmt.Fprintln(out, render.Pretty(statements, cfg.Output.NodeShape))
		return nil
	}

	engine, err := imageEngine(cfg.Output)
	if err != nil {
		return err
	}

	name := outputName(cfg.Output.File, seeds)
	writer := render.NewWriter(cfg.Output.Dir, engine)
	paths := writer.Write(ctx, name, render.Document(statements, cfg.Output.NodeShape), outputKinds(cfg.Output))

	fmt.Fprintln(out, "Graph(s) written to:")
	for _, path := range paths {
		fmt.Fprintf(out, " - %s\n", path)
	}
	return nil
}

// buildGraph runs the builder behind a spinner when stderr is a terminal.
func buildGraph(ctx context.Context, repo graph.Repository, opts graph.Options, seeds []string) ([]graph.Statement, error) {
	if !progress.IsTerminal(os.Stderr) {
		return graph.NewBuilder(repo, opts).BuildAll(ctx, seeds)
	}

	spinner := progress.New(ctx, os.Stderr, "Fetching issues...")
	spinner.Start()

	statements, err := graph.NewBuilder(repo, opts).BuildAll(ctx, seeds)
	if err != nil {
		spinner.Stop()
		return nil, err
	}
	spinner.StopWithSuccess("Done.")
	return statements, nil
}

// configureLogging applies --verbose and --log-file. The returned function
// closes the log file, if any.
func configureLogging(out config.OutputConfig, stderr io.Writer) (func(), error) {
	level := logging.LevelFromEnv()
	if out.Verbose {
		level = logging.LevelDebug
	}

	if out.LogFile == "" {
		if out.Verbose {
			logging.SetupLogger(stderr, level)
		}
		return func() {}, nil
	}

	f, err := logging.OpenLogFile(out.LogFile)
	if err != nil {
		return nil, err
	}
	logging.SetupLogger(io.MultiWriter(stderr, f), level)
	return func() { f.Close() }, nil
}

// graphOptions converts the graph configuration into builder options.
func graphOptions(cfg *config.Config) graph.Options {
	return graph.Options{
		BaseURL:            cfg.Jira.URL,
		ExcludedLinkTypes:  cfg.Graph.ExcludeLinks,
		ShowDirections:     directions(cfg.Graph.ShowDirections),
		WalkDirections:     directions(cfg.Graph.WalkDirections),
		IssueKeyInclude:    cfg.Graph.IssueInclude,
		ExcludedIssueKeys:  cfg.Graph.IssueExcludes,
		HiddenLinkVerbs:    cfg.Graph.HideLinks,
		IgnoreClosed:       cfg.Graph.IgnoreClosed,
		IgnoreEpicChildren: cfg.Graph.IgnoreEpic,
		IgnoreSubtasks:     cfg.Graph.IgnoreSubtasks,
		CrossProject:       cfg.Graph.Traverse,
		WordWrap:           cfg.Graph.WordWrap,
		MergeRelates:       cfg.Graph.MergeRelates,
		ShareVisited:       cfg.Graph.ShareVisited,
	}
}

func directions(names []string) []models.Direction {
	dirs := make([]models.Direction, 0, len(names))
	for _, name := range names {
		dirs = append(dirs, models.Direction(name))
	}
	return dirs
}

// outputName is the file name unless it is the default, in which case the
// seed keys joined with "+" are used.
func outputName(file string, seeds []string) string {
	if file != config.DefaultFileName {
		return file
	}
	return strings.Join(seeds, "+")
}

func outputKinds(out config.OutputConfig) render.Kinds {
	switch {
	case out.GVOnly:
		return render.KindGraphviz
	case out.PNGOnly:
		return render.KindImage
	}
	return render.KindAll
}

func imageEngine(out config.OutputConfig) (render.Engine, error) {
	if out.ImageEngine == config.EngineGraphviz {
		engine, err := render.NewGraphviz(out.ImageFormat)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	return render.NewChartClient(out.ChartURL, &http.Client{Timeout: 60 * time.Second}), nil
}
