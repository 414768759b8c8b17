package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arielspace/listing-board/internal/core/session"
)

func (a *app) newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and start an idle-limited session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				password = a.v.GetString("password")
			}
			if password == "" {
				fmt.Fprint(a.out, "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			res, err := a.client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			user, ok := a.manager.Login(ctx, res.User.Email,
				session.WithUserID(res.User.ID),
				session.WithRole(res.User.Role),
				session.WithName(res.User.Name()),
				session.WithToken(res.Token),
			)
			if !ok {
				return errors.New("could not save the session locally")
			}
			fmt.Fprintf(a.out, "Welcome, %s! You are logged in as %s (%s).\n", user.Name, user.Email, user.Role)
			fmt.Fprintf(a.out, "Sessions end after %s without activity.\n", time.Duration(res.Session.TimeoutSeconds)*time.Second)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $BOARDCTL_PASSWORD or prompt)")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if err := a.client.Logout(ctx); err != nil && !IsUnauthorized(err) {
				return err
			}
			a.manager.Logout(ctx)
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user and session status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			me, err := a.client.Me(cmd.Context())
			if err != nil {
				return a.apiError(cmd.Context(), err)
			}
			fmt.Fprintf(a.out, "%s <%s> role=%s\n", me.Name(), me.Email, me.Role)
			fmt.Fprintf(a.out, "session %s, expires %s\n", a.manager.State(), a.manager.ExpiresAt().Format(time.Kitchen))
			return nil
		},
	}
}

func (a *app) newExtendCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "extend",
		Short:       "Stay logged in",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationExplicitActivity: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireSession(); err != nil {
				return err
			}
			if a.manager.Extend(ctx) {
				fmt.Fprintln(a.out, "Inactivity warning dismissed.")
			} else {
				a.manager.Activity(ctx, session.EventKeyDown)
			}
			st, err := a.client.ExtendSession(ctx)
			if err != nil {
				return a.apiError(ctx, err)
			}
			fmt.Fprintf(a.out, "Session extended until %s.\n", st.ExpiresAt.Local().Format(time.Kitchen))
			return nil
		},
	}
}

func (a *app) newListingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "listings",
		Aliases: []string{"ls"},
		Short:   "Browse and manage listings",
	}
	cmd.AddCommand(a.newListingsListCmd(), a.newListingsGetCmd(), a.newListingsCreateCmd(), a.newListingsDeleteCmd())
	return cmd
}

func (a *app) newListingsListCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := a.client.ListListings(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(a.out, "No listings found.")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tCERTIFIED\tCREATED")
			for _, l := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.Title, yesNo(l.HasCertification), l.CreatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search in title and short description")
	return cmd
}

func (a *app) newListingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a listing with its full details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.client.GetListing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderListing(a.out, l)
			return nil
		},
	}
}

func (a *app) newListingsCreateCmd() *cobra.Command {
	var (
		in          ListingInput
		detailsFile string
		location    string
		duration    string
		deadline    string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a listing (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if detailsFile != "" {
				raw, err := os.ReadFile(detailsFile)
				if err != nil {
					return fmt.Errorf("read details: %w", err)
				}
				in.FullDetails = string(raw)
			}
			in.Location = optional(location)
			in.Duration = optional(duration)
			in.Deadline = optional(deadline)

			l, err := a.client.CreateListing(ctx, in)
			if err != nil {
				return a.apiError(ctx, err)
			}
			fmt.Fprintf(a.out, "Created listing %s (%s).\n", l.ID, l.Title)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "listing title")
	f.StringVar(&in.ShortDescription, "short", "", "short description (max 200 characters)")
	f.StringVar(&in.FullDetails, "details", "", "full details; lines starting with '##', '###' or '-' are formatted")
	f.StringVar(&detailsFile, "details-file", "", "read full details from a file")
	f.StringVar(&in.ApplyURL, "apply-url", "", "application form URL")
	f.BoolVar(&in.HasCertification, "certified", false, "listing awards a certificate")
	f.StringVar(&location, "location", "", "location")
	f.StringVar(&duration, "duration", "", "duration, e.g. \"3 months\"")
	f.StringVar(&deadline, "deadline", "", "application deadline (YYYY-MM-DD)")
	return cmd
}

func (a *app) newListingsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a listing (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.requireAdmin(); err != nil {
				return err
			}
			if err := a.client.DeleteListing(ctx, args[0]); err != nil {
				return a.apiError(ctx, err)
			}
			fmt.Fprintf(a.out, "Deleted listing %s.\n", args[0])
			return nil
		},
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
