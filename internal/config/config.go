// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultFileName is the output name that is replaced by the seed keys.
const DefaultFileName = "issue_graph"

// DefaultChartURL is the remote chart service used by the chart image engine.
const DefaultChartURL = "https://chart.apis.google.com/chart"

// Image engines.
const (
	EngineChart    = "chart"
	EngineGraphviz = "graphviz"
)

// AuthMode selects how requests to JIRA are authenticated.
type AuthMode string

const (
	AuthBasic  AuthMode = "basic"
	AuthCookie AuthMode = "cookie"
	AuthBearer AuthMode = "bearer"
	AuthNone   AuthMode = "none"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira   JiraConfig
	Graph  GraphConfig
	Output OutputConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL         string
	Username    string
	Password    string
	Bearer      string
	Cookie      string
	NoAuth      bool
	NoVerifySSL bool
}

// AuthMode resolves the authentication mode. A session cookie wins over a
// bearer token, which wins over no-auth; basic auth is the fallback.
func (c JiraConfig) AuthMode() AuthMode {
	switch {
	case c.Cookie != "":
		return AuthCookie
	case c.Bearer != "":
		return AuthBearer
	case c.NoAuth:
		return AuthNone
	}
	return AuthBasic
}

// GraphConfig holds the traversal filters.
type GraphConfig struct {
	JQL            string
	ExcludeLinks   []string
	HideLinks      []string
	ShowDirections []string
	WalkDirections []string
	IssueInclude   string
	IssueExcludes  []string
	IgnoreClosed   bool
	IgnoreEpic     bool
	IgnoreSubtasks bool
	Traverse       bool
	WordWrap       bool
	MergeRelates   bool
	ShareVisited   bool
}

// OutputConfig holds rendering and output options.
type OutputConfig struct {
	Local       bool
	GVOnly      bool
	PNGOnly     bool
	File        string
	Dir         string
	NodeShape   string
	ImageEngine string
	ImageFormat string
	ChartURL    string
	LogFile     string
	Verbose     bool
}

// flagKeys maps configuration keys to command-line flag names.
var flagKeys = map[string]string{
	"config":               "config",
	"jira.url":             "jira",
	"jira.username":        "user",
	"jira.password":        "password",
	"jira.bearer":          "bearer",
	"jira.cookie":          "cookie",
	"jira.no_auth":         "no-auth",
	"jira.no_verify_ssl":   "no-verify-ssl",
	"graph.jql":            "jql",
	"graph.exclude_links":  "exclude-link",
	"graph.hide_links":     "hide-link",
	"graph.show":           "show-directions",
	"graph.walk":           "directions",
	"graph.issue_include":  "issue-include",
	"graph.issue_excludes": "issue-exclude",
	"graph.ignore_closed":  "ignore-closed",
	"graph.ignore_epic":    "ignore-epic",
	"graph.ignore_subtask": "ignore-subtasks",
	"graph.dont_traverse":  "dont-traverse",
	"graph.word_wrap":      "word-wrap",
	"graph.no_merge":       "no-merge-relates",
	"graph.share_visited":  "share-visited",
	"output.local":         "local",
	"output.gv_only":       "gv-only",
	"output.png_only":      "png-only",
	"output.file":          "file",
	"output.dir":           "out-dir",
	"output.node_shape":    "node-shape",
	"output.image_engine":  "image-engine",
	"output.image_format":  "image-format",
	"output.chart_url":     "chart-url",
	"output.log_file":      "log-file",
	"output.verbose":       "verbose",
}

// LoadConfig builds the configuration from flags, environment variables and
// an optional config file named by the --config flag. Flags set on the
// command line win over the environment, which wins over the file.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("jira.url", "http://jira.example.com")
	v.SetDefault("graph.show", []string{"inward", "outward"})
	v.SetDefault("graph.walk", []string{"inward", "outward"})
	v.SetDefault("output.file", DefaultFileName)
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.node_shape", "box")
	v.SetDefault("output.image_engine", EngineChart)
	v.SetDefault("output.image_format", "png")
	v.SetDefault("output.chart_url", DefaultChartURL)

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Map specific environment variables
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.password", "JIRA_PASSWORD", "JIRA_TOKEN")
	v.BindEnv("jira.bearer", "JIRA_BEARER")
	v.BindEnv("jira.cookie", "JIRA_COOKIE")
	v.BindEnv("jira.no_verify_ssl", "JIRA_NO_VERIFY_SSL")
	v.BindEnv("output.log_file", "JIRAGRAPH_LOG_FILE")

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}

	config := &Config{
		Jira: JiraConfig{
			URL:         strings.TrimSuffix(v.GetString("jira.url"), "/"),
			Username:    v.GetString("jira.username"),
			Password:    v.GetString("jira.password"),
			Bearer:      v.GetString("jira.bearer"),
			Cookie:      v.GetString("jira.cookie"),
			NoAuth:      v.GetBool("jira.no_auth"),
			NoVerifySSL: v.GetBool("jira.no_verify_ssl"),
		},
		Graph: GraphConfig{
			JQL:            v.GetString("graph.jql"),
			ExcludeLinks:   v.GetStringSlice("graph.exclude_links"),
			HideLinks:      v.GetStringSlice("graph.hide_links"),
			ShowDirections: v.GetStringSlice("graph.show"),
			WalkDirections: v.GetStringSlice("graph.walk"),
			IssueInclude:   v.GetString("graph.issue_include"),
			IssueExcludes:  v.GetStringSlice("graph.issue_excludes"),
			IgnoreClosed:   v.GetBool("graph.ignore_closed"),
			IgnoreEpic:     v.GetBool("graph.ignore_epic"),
			IgnoreSubtasks: v.GetBool("graph.ignore_subtask"),
			Traverse:       !v.GetBool("graph.dont_traverse"),
			WordWrap:       v.GetBool("graph.word_wrap"),
			MergeRelates:   !v.GetBool("graph.no_merge"),
			ShareVisited:   v.GetBool("graph.share_visited"),
		},
		Output: OutputConfig{
			Local:       v.GetBool("output.local"),
			GVOnly:      v.GetBool("output.gv_only"),
			PNGOnly:     v.GetBool("output.png_only"),
			File:        v.GetString("output.file"),
			Dir:         v.GetString("output.dir"),
			NodeShape:   v.GetString("output.node_shape"),
			ImageEngine: strings.ToLower(v.GetString("output.image_engine")),
			ImageFormat: strings.ToLower(v.GetString("output.image_format")),
			ChartURL:    v.GetString("output.chart_url"),
			LogFile:     v.GetString("output.log_file"),
			Verbose:     v.GetBool("output.verbose"),
		},
	}

	// Validate configuration
	if err := ValidateGraphConfig(config); err != nil {
		return nil, err
	}
	if err := ValidateOutputConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateJiraConfig validates JIRA-specific configuration. Basic auth needs
// both a username and a password, so it is checked after prompting.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	// JIRA validation
	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.AuthMode() == AuthBasic {
		if config.Jira.Username == "" {
			missingVars = append(missingVars, "JIRA_USERNAME")
		}
		if config.Jira.Password == "" {
			missingVars = append(missingVars, "JIRA_PASSWORD")
		}
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	u, err := url.Parse(config.Jira.URL)
	if err != nil {
		return fmt.Errorf("invalid jira url %q: %w", config.Jira.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid jira url %q: scheme must be http or https", config.Jira.URL)
	}

	return nil
}

// ValidateGraphConfig checks that link directions are inward or outward.
func ValidateGraphConfig(config *Config) error {
	for _, dirs := range [][]string{config.Graph.ShowDirections, config.Graph.WalkDirections} {
		for _, d := range dirs {
			if d != "inward" && d != "outward" {
				return fmt.Errorf("invalid link direction %q: expected inward or outward", d)
			}
		}
	}
	return nil
}

// ValidateOutputConfig checks output modes, image engine and format.
func ValidateOutputConfig(config *Config) error {
	out := config.Output
	if out.GVOnly && out.PNGOnly {
		return fmt.Errorf("--gv-only and --png-only are mutually exclusive")
	}
	if !slices.Contains([]string{EngineChart, EngineGraphviz}, out.ImageEngine) {
		return fmt.Errorf("invalid image engine %q: expected %s or %s", out.ImageEngine, EngineChart, EngineGraphviz)
	}
	if !slices.Contains([]string{"png", "svg"}, out.ImageFormat) {
		return fmt.Errorf("invalid image format %q: expected png or svg", out.ImageFormat)
	}
	if out.ImageEngine == EngineChart && out.ImageFormat != "png" {
		return fmt.Errorf("the %s engine only produces png images", EngineChart)
	}
	if out.NodeShape == "" {
		return fmt.Errorf("node shape cannot be empty")
	}
	return nil
}
