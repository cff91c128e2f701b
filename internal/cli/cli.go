// Package cli implements the hiernet command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/internal/config"
	"github.com/matzehuels/hiernet/pkg/buildinfo"
	"github.com/matzehuels/hiernet/pkg/cache"
	"github.com/matzehuels/hiernet/pkg/editor"
	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/network"
	"github.com/matzehuels/hiernet/pkg/observability"
	"github.com/matzehuels/hiernet/pkg/session"
	"github.com/matzehuels/hiernet/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "hiernet"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	backend    string // --store override
	docFlag    string // --doc override of the session document
	atFlag     string // --at override of the session context
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "hiernet edits hierarchical networks",
		Long:         `hiernet edits directed networks whose nodes can be folded into components, entered and exited, with edges that reach through component boundaries.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")
	flags.StringVar(&c.backend, "store", "", "document store backend: file, redis or mongo")
	flags.StringVarP(&c.docFlag, "doc", "d", "", "document to operate on instead of the open session")
	flags.StringVar(&c.atFlag, "at", "", "context path with --doc, e.g. stage/inner")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the render cache")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.closeCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.edgeCommand())
	root.AddCommand(c.foldCommand())
	root.AddCommand(c.enterCommand())
	root.AddCommand(c.exitCommand())
	root.AddCommand(c.portsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if cfg.Render.NoCache {
		c.noCache = true
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && c.Logger.GetLevel() != LogDebug {
		c.Logger.SetLevel(lvl)
	}
	if c.Logger.GetLevel() == LogDebug {
		observability.SetAll(observability.NewLogHooks(c.Logger))
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates an editor runner for CLI use. Close it when done.
func (c *CLI) newRunner(ctx context.Context) (*editor.Runner, error) {
	st, err := store.Open(ctx, c.Config.Store, c.Logger)
	if err != nil {
		return nil, err
	}
	return editor.NewRunner(st, c.newCache(), nil, c.Logger), nil
}

// newCache opens the render cache, falling back to no cache with a warning.
func (c *CLI) newCache() cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err == nil {
		var fc cache.Cache
		if fc, err = cache.NewFileCache(dir); err == nil {
			return fc
		}
	}
	printWarning("Render cache disabled: %s", errors.UserMessage(err))
	return cache.NewNullCache()
}

// sessions returns the CLI session store.
func (c *CLI) sessions() (*session.CLIStore, error) {
	s, err := session.NewCLIStore(c.Config.Session.Dir)
	if err != nil {
		return nil, err
	}
	if ttl, err := time.ParseDuration(c.Config.Session.TTL); err == nil {
		s.SetTTL(ttl)
	}
	return s, nil
}

// =============================================================================
// Target Resolution
// =============================================================================

// target is the document and context stack a command operates on.
type target struct {
	name    string
	context []string
	sess    *session.Session // nil when --doc was given
}

// resolveTarget picks --doc/--at when given and the open session otherwise.
func (c *CLI) resolveTarget(ctx context.Context) (*target, error) {
	if c.docFlag != "" {
		return &target{name: c.docFlag, context: splitPath(c.atFlag)}, nil
	}
	sessions, err := c.sessions()
	if err != nil {
		return nil, err
	}
	sess, err := sessions.Current(ctx)
	if errors.Is(err, errors.ErrCodeSessionNotFound) || errors.Is(err, errors.ErrCodeSessionExpired) {
		return nil, errors.Wrap(errors.GetCode(err), err, "no open document; run `%s open <name>` or pass --doc", appName)
	}
	if err != nil {
		return nil, err
	}
	return &target{name: sess.Document, context: sess.Context, sess: sess}, nil
}

// update runs fn against the target and stores the resulting context stack
// in the session.
func (c *CLI) update(ctx context.Context, fn func(m *network.Model) error) (*network.Model, *target, error) {
	t, err := c.resolveTarget(ctx)
	if err != nil {
		return nil, nil, err
	}
	r, err := c.newRunner(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	m, err := r.Update(ctx, t.name, t.context, fn)
	if err != nil {
		return nil, nil, err
	}
	if err := c.saveContext(ctx, t, m.ContextIDs()); err != nil {
		return nil, nil, err
	}
	return m, t, nil
}

// open loads the target without modifying it.
func (c *CLI) open(ctx context.Context) (*network.Model, *target, error) {
	t, err := c.resolveTarget(ctx)
	if err != nil {
		return nil, nil, err
	}
	r, err := c.newRunner(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	m, err := r.Open(ctx, t.name, t.context)
	if err != nil {
		return nil, nil, err
	}
	return m, t, nil
}

func (c *CLI) saveContext(ctx context.Context, t *target, ids []string) error {
	if t.sess == nil {
		return nil
	}
	sessions, err := c.sessions()
	if err != nil {
		return err
	}
	t.sess.SetContext(ids)
	return sessions.Save(ctx, t.sess)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/hiernet/).
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

// templatesPath returns the component template library file.
func templatesPath() string {
	return filepath.Join(config.Dir(), "templates.json")
}

// splitPath parses "a/b" into a context stack.
func splitPath(s string) []string {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}
