// Package cli implements boardctl, a terminal client for the listing API.
// It keeps one client-side session in a JSON file and applies the same idle
// policy as the server: every command counts as activity, and the shell
// prints the warning countdown and the expiry notice.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arielspace/listing-board/internal/core/session"
)

const envPrefix = "BOARDCTL"

// annotationExplicitActivity marks commands that record their own activity
// instead of the implicit keydown every other command counts as.
const annotationExplicitActivity = "boardctl/explicit-activity"

// Options wires the command to its environment. Zero values mean the
// process defaults.
type Options struct {
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	HTTPClient *http.Client
	Clock      session.Clock
}

type app struct {
	opts Options
	v    *viper.Viper
	out  *syncWriter

	client  *Client
	manager *session.Manager

	interactive bool
}

// syncWriter serialises writes from commands and from timer hooks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// NewRootCommand returns the boardctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = session.SystemClock()
	}

	a := &app{opts: opts, v: viper.New(), out: &syncWriter{w: opts.Out}}
	return a.newRoot()
}

// Execute runs boardctl with os.Args and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand(Options{})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "boardctl",
		Short:         "Browse and manage internship listings from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.manager != nil && !a.interactive {
				a.manager.Stop()
			}
		},
	}
	root.SetIn(a.opts.In)
	root.SetOut(a.out)
	root.SetErr(a.opts.Err)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.boardctl.yaml)")
	flags.String("api-url", "http://localhost:8080", "listing API base URL")
	flags.String("state-dir", defaultStateDir(), "directory holding the saved session")
	flags.Duration("session-timeout", session.DefaultTimeout, "idle time before logout")
	flags.Duration("session-warning", session.DefaultWarningWindow, "warning window before logout")

	root.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newExtendCmd(),
		a.newListingsCmd(),
		a.newShellCmd(),
	)
	return root
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "boardctl")
	}
	return ".boardctl"
}

// prepare loads configuration and restores the saved session on first use.
// Every command then counts as keyboard activity unless it is annotated
// with annotationExplicitActivity.
func (a *app) prepare(cmd *cobra.Command) error {
	ctx := cmd.Context()
	_, explicit := cmd.Annotations[annotationExplicitActivity]
	if a.manager != nil {
		if !explicit {
			a.manager.Activity(ctx, session.EventKeyDown)
		}
		return nil
	}

	if err := a.loadConfig(cmd); err != nil {
		return err
	}
	if cmd.Name() == "shell" {
		a.interactive = true
	}

	policy := session.Policy{
		Timeout:       a.v.GetDuration("session-timeout"),
		WarningWindow: a.v.GetDuration("session-warning"),
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	store := session.NewFileStore(a.v.GetString("state-dir"))
	_, loadErr := store.Load(ctx, session.DefaultKey)

	a.manager = session.NewManager(store, session.Config{Policy: policy},
		session.WithClock(a.opts.Clock),
		session.WithHooks(session.Hooks{Warning: a.onWarning, Expired: a.onExpired}),
	)
	a.client = NewClient(a.v.GetString("api-url"), a.opts.HTTPClient, a.manager.Token)

	if a.manager.Restore(ctx) == session.LoggedOut && loadErr == nil {
		fmt.Fprintf(a.out, "Your session expired after %s of inactivity. Please log in again.\n", policy.Timeout)
	}
	if !explicit {
		a.manager.Activity(ctx, session.EventKeyDown)
	}
	return nil
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		a.v.AddConfigPath(home)
		a.v.SetConfigName(".boardctl")
		a.v.SetConfigType("yaml")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) onWarning(countdown time.Duration) {
	if !a.interactive {
		return
	}
	fmt.Fprintf(a.out, "\nYour session will expire in %s due to inactivity. Type 'extend' to stay logged in.\n",
		countdown.Round(time.Second))
}

func (a *app) onExpired() {
	if !a.interactive {
		return
	}
	fmt.Fprintln(a.out, "\nYour session has expired due to inactivity. Please log in again.")
}

// requireSession fails commands that need a logged-in user.
func (a *app) requireSession() (session.User, error) {
	u, ok := a.manager.User()
	if !ok {
		return session.User{}, errors.New("not logged in; run 'boardctl login'")
	}
	return u, nil
}

// requireAdmin fails admin-only commands before they reach the API.
func (a *app) requireAdmin() error {
	u, err := a.requireSession()
	if err != nil {
		return err
	}
	if !u.IsAdmin() {
		return fmt.Errorf("%s is not an admin; this command needs the admin role", u.Email)
	}
	return nil
}

// apiError drops the local session when the server no longer accepts it.
func (a *app) apiError(ctx context.Context, err error) error {
	if IsUnauthorized(err) && a.manager.State() != session.LoggedOut {
		a.manager.Logout(ctx)
		return fmt.Errorf("%w (local session cleared, please log in again)", err)
	}
	return err
}
