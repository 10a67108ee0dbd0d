package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vilaca/mr-enhancer/internal/actions"
	"github.com/vilaca/mr-enhancer/internal/dashboard"
	"github.com/vilaca/mr-enhancer/internal/notify"
)

// NewEnhanceCommand creates the enhance command.
func (a *App) NewEnhanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enhance",
		Short: "Write the enhanced merge request list page",
		Example: `  # Enhance a saved page
  mr-enhancer enhance --page mrs.html --out enhanced.html

  # Enhance a live page, authenticated with a session cookie
  GITLAB_SESSION=... mr-enhancer enhance --page https://gitlab.example.com/group/project/-/merge_requests`,
		RunE: a.runEnhance,
	}
	cmd.Flags().String("page", "", "page file or URL (required)")
	cmd.Flags().String("out", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func (a *App) runEnhance(cmd *cobra.Command, _ []string) error {
	location, _ := cmd.Flags().GetString("page")
	outPath, _ := cmd.Flags().GetString("out")

	enhancer := a.enhancer(notify.NewWriter(a.errOut), &actions.MemoryClipboard{})
	session, err := enhancer.Run(cmd.Context(), a.source(location))
	if err != nil {
		return err
	}

	document, err := session.Render()
	if err != nil {
		return fmt.Errorf("failed to serialize page: %w", err)
	}

	if outPath == "" {
		_, err = fmt.Fprint(a.out, document)
		return err
	}
	if err := os.WriteFile(outPath, []byte(document), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	a.logger.Info().
		Str("out", outPath).
		Int("matched", session.Report.Matched).
		Int("missed", session.Report.Missed).
		Msg("enhanced page written")
	return nil
}

// NewActionCommand creates the action command.
func (a *App) NewActionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Run one merge request action from an enhanced page",
		Long: `Run one of the actions the enhancer injects: copy-info,
copy-source-branch, copy-target-branch or toggle-wip.

Copy actions write to the system clipboard unless --print is given.`,
		Example: `  mr-enhancer action --page mrs.html --iid 12 --kind copy-source-branch --print
  mr-enhancer action --page mrs.html --iid 12 --kind toggle-wip`,
		RunE: a.runAction,
	}
	cmd.Flags().String("page", "", "page file or URL (required)")
	cmd.Flags().String("iid", "", "merge request iid (required)")
	cmd.Flags().String("kind", "", "copy-info, copy-source-branch, copy-target-branch or toggle-wip (required)")
	cmd.Flags().Bool("print", false, "print copied text instead of using the clipboard")
	_ = cmd.MarkFlagRequired("page")
	_ = cmd.MarkFlagRequired("iid")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func (a *App) runAction(cmd *cobra.Command, _ []string) error {
	location, _ := cmd.Flags().GetString("page")
	iid, _ := cmd.Flags().GetString("iid")
	kind, _ := cmd.Flags().GetString("kind")
	printOnly, _ := cmd.Flags().GetBool("print")

	action, branch, err := actions.ParseKind(kind)
	if err != nil {
		return err
	}

	memory := &actions.MemoryClipboard{}
	var clipboard actions.Clipboard = actions.SystemClipboard{}
	if printOnly {
		clipboard = memory
	}

	enhancer := a.enhancer(notify.NewWriter(a.errOut), clipboard)
	session, err := enhancer.Run(cmd.Context(), a.source(location))
	if err != nil {
		return err
	}
	if err := session.Act(cmd.Context(), iid, action, branch); err != nil {
		return fmt.Errorf("%s on !%s failed: %w", kind, iid, err)
	}

	if text, ok := memory.Take(); ok {
		_, err = fmt.Fprintln(a.out, text)
		return err
	}
	if state, ok := session.State(iid); ok && kind == actions.KindToggleWIP {
		_, err = fmt.Fprintln(a.out, state.Title)
		return err
	}
	return nil
}

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enhanced page over HTTP",
		Long: `Serve the enhanced merge request list. Every GET / is a fresh page
view; the injected buttons call POST /api/actions on this server.`,
		RunE: a.runServe,
	}
	cmd.Flags().String("page", "", "page file or URL (required)")
	cmd.Flags().IntP("port", "p", 0, "server port (default from PORT)")
	cmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

func (a *App) runServe(cmd *cobra.Command, _ []string) error {
	location, _ := cmd.Flags().GetString("page")
	port, _ := cmd.Flags().GetInt("port")
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
	if port <= 0 {
		port = a.config.Port
	}

	alerts := notify.NewRecorder()
	clipboard := &actions.MemoryClipboard{}
	handler := dashboard.NewHandler(dashboard.HandlerConfig{
		Renderer:   dashboard.NewHTMLRenderer(),
		Logger:     a.logger,
		Enhancer:   a.enhancer(alerts, clipboard),
		Source:     a.source(location),
		Alerts:     alerts,
		Clipboard:  clipboard,
		RunTimeout: a.config.HTTPTimeout + a.config.PollInterval*time.Duration(a.config.PollMaxAttempts),
	})

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", server.Addr).Str("page", location).Msg("starting mr-enhancer server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	a.logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	a.logger.Info().Msg("server stopped")
	return nil
}
