// Package cli implements the nodemap command-line interface.
//
// Commands operate on graph documents stored as a JSON topology file plus a
// notes directory. The CLI is built using cobra; verbose logging is available
// everywhere via --verbose and flows through context.Context.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nodemap/nodemap/pkg/buildinfo"
	"github.com/nodemap/nodemap/pkg/cache"
	"github.com/nodemap/nodemap/pkg/config"
	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "nodemap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config
}

// New creates a new CLI instance with a default logger and the user's
// configuration (or defaults when no config file exists).
func New(w io.Writer, level log.Level) *CLI {
	cfg, err := config.LoadDefault()
	if err != nil {
		cfg = config.Default()
	}
	c := &CLI{
		Logger: newLogger(w, level),
		Config: cfg,
	}
	if err != nil {
		c.Logger.Warn("config not loaded, using defaults", "err", err)
	}
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Nodemap edits and renders node-link graph documents",
		Long:         `Nodemap manages graph documents made of labeled, color-tagged nodes connected by directed or undirected edges, with a markdown note per node. Layout is always derived from topology.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.newCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backend Factories
// =============================================================================

// newGateway builds the storage gateway selected by the configuration.
// The mongo backend needs a live connection, so construction takes a context.
func (c *CLI) newGateway(cmd *cobra.Command) (store.Gateway, func(), error) {
	switch c.Config.Store.Backend {
	case config.StoreMongo:
		gw, err := store.NewMongoGateway(cmd.Context(), c.Config.Store.MongoURI, c.Config.Store.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return gw, func() { _ = gw.Close(cmd.Context()) }, nil
	default:
		return store.NewFileGateway(), func() {}, nil
	}
}

// newCache builds the render cache selected by the configuration.
func (c *CLI) newCache(cmd *cobra.Command, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(cmd.Context(),
			c.Config.Cache.RedisAddr, c.Config.Cache.RedisPassword, c.Config.Cache.RedisDB)
	default:
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// openDocument loads and parses the topology at ref without holding a
// session open. Used by read-only commands.
func (c *CLI) openDocument(cmd *cobra.Command, ref string) (graph.Document, error) {
	gw, cleanup, err := c.newGateway(cmd)
	if err != nil {
		return graph.Document{}, err
	}
	defer cleanup()

	_, data, err := gw.Open(cmd.Context(), ref)
	if err != nil {
		return graph.Document{}, err
	}
	return graph.Unmarshal(data)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/nodemap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
