// Package cli is the command line surface of the enhancer.
package cli

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vilaca/mr-enhancer/internal/actions"
	"github.com/vilaca/mr-enhancer/internal/api"
	"github.com/vilaca/mr-enhancer/internal/api/gitlab"
	"github.com/vilaca/mr-enhancer/internal/config"
	"github.com/vilaca/mr-enhancer/internal/logging"
	"github.com/vilaca/mr-enhancer/internal/notify"
	"github.com/vilaca/mr-enhancer/internal/page"
	"github.com/vilaca/mr-enhancer/internal/preferences"
	"github.com/vilaca/mr-enhancer/internal/service"
)

// App holds the state shared by every command.
type App struct {
	config     *config.Config
	version    string
	out        io.Writer
	errOut     io.Writer
	logger     zerolog.Logger
	httpClient *http.Client
}

// New creates the application. out receives command output, errOut
// receives logs and alerts.
func New(cfg *config.Config, version string, out, errOut io.Writer) *App {
	return &App{
		config:  cfg,
		version: version,
		out:     out,
		errOut:  errOut,
		logger:  logging.Nop(),
	}
}

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "mr-enhancer",
		Short:   "Enhance GitLab merge request lists",
		Version: a.version,
		Long: `mr-enhancer reads a GitLab merge request list page, fetches the
listed merge requests from the GitLab API and annotates the page with
branch paths and action buttons (copy info, copy branch names, toggle WIP).`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.String("gitlab-url", "", "GitLab URL used when the page does not declare one")
	flags.String("preferences", "", "preferences file (.yaml, .json or .jsonc)")
	flags.Int("poll-attempts", 0, "how often to look for rendered merge requests")
	flags.Duration("poll-interval", 0, "delay between two looks")

	rootCmd.SetVersionTemplate("mr-enhancer {{.Version}}\n")

	rootCmd.AddCommand(a.NewEnhanceCommand())
	rootCmd.AddCommand(a.NewActionCommand())
	rootCmd.AddCommand(a.NewServeCommand())

	return rootCmd
}

// setupCommand applies the changed persistent flags over the loaded
// configuration and builds the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		a.config.LogLevel, _ = flags.GetString("log-level")
	} else if verbose, _ := flags.GetBool("verbose"); verbose {
		a.config.LogLevel = "debug"
	}
	if flags.Changed("gitlab-url") {
		a.config.GitLabURL, _ = flags.GetString("gitlab-url")
	}
	if flags.Changed("preferences") {
		a.config.PreferencesFile, _ = flags.GetString("preferences")
	}
	if n, _ := flags.GetInt("poll-attempts"); n > 0 {
		a.config.PollMaxAttempts = n
	}
	if d, _ := flags.GetDuration("poll-interval"); d > 0 {
		a.config.PollInterval = d
	}

	a.logger = logging.New(&logging.Config{
		Level:  a.config.LogLevel,
		Format: a.config.LogFormat,
		Output: a.config.LogOutput,
		Stderr: a.errOut,
	})
	a.httpClient = &http.Client{Timeout: a.config.HTTPTimeout}

	a.logger.Debug().
		Str("gitlab_url", a.config.GitLabURL).
		Bool("token", a.config.HasGitLabToken()).
		Str("config_file", a.config.ConfigFile).
		Msg("configuration loaded")
	return nil
}

// source returns the page source for a file path or an http(s) URL.
func (a *App) source(location string) page.Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return page.NewHTTPSource(location, a.config.GitLabSession, a.httpClient)
	}
	return page.NewFileSource(location)
}

// enhancer is the composition root of one command run.
func (a *App) enhancer(notifier notify.Notifier, clipboard actions.Clipboard) *service.Enhancer {
	return service.NewEnhancer(service.Config{
		Catalog:         page.DefaultCatalog,
		FallbackBaseURL: a.config.GitLabURL,
		Credentials: api.ClientConfig{
			Token:   a.config.GitLabToken,
			Session: a.config.GitLabSession,
		},
		Preferences: preferences.NewFileProvider(a.config.PreferencesFile),
		NewClient: func(cfg api.ClientConfig) api.RecordClient {
			return gitlab.NewClient(cfg, a.httpClient, a.logger, notifier)
		},
		Clipboard:       clipboard,
		Notifier:        notifier,
		PollMaxAttempts: a.config.PollMaxAttempts,
		PollInterval:    a.config.PollInterval,
		Logger:          a.logger,
	})
}
