package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodemap/nodemap/internal/server"
	"github.com/nodemap/nodemap/pkg/session"
)

// serveCommand creates the "serve" command for running the editing server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen   string
		document string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a graph editing session over a local HTTP API",
		Long: `Serve a graph editing session over a local HTTP API.

One session is shared by all requests. Mutations arm a debounced autosave
once a document is bound; --document opens an existing document at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, listen, document)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", c.Config.Server.Listen, "address to listen on")
	cmd.Flags().StringVar(&document, "document", "", "document to open at startup")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, listen, document string) error {
	gw, cleanup, err := c.newGateway(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	renderCache, err := c.newCache(cmd, false)
	if err != nil {
		return err
	}
	defer renderCache.Close()

	sess := session.New(gw, session.Options{
		Logger:        c.Logger,
		Layout:        c.Config.Layout,
		AutosaveDelay: c.Config.Autosave.Delay(),
	})
	if document != "" {
		if err := sess.Open(cmd.Context(), document); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:    listen,
		Handler: server.New(sess, server.Options{
			Cache:    renderCache,
			CacheTTL: c.Config.Cache.TTL(),
			Logger:   c.Logger,
		}).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-cmd.Context().Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		// Flush a final save before exiting.
		if err := sess.Close(shutdownCtx); err != nil {
			c.Logger.Warn("final save failed", "err", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
