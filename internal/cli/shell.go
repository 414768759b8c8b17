package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive mode with live session warnings",
		Long: "Runs boardctl commands read from standard input. Each command counts as activity; " +
			"the shell announces the inactivity warning and logs out automatically when the session expires.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.interactive = true
			defer func() { a.interactive = false }()

			ctx := cmd.Context()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(a.out, a.prompt())
				if !scanner.Scan() {
					fmt.Fprintln(a.out)
					return scanner.Err()
				}

				args, err := splitArgs(scanner.Text())
				if err != nil {
					fmt.Fprintln(a.opts.Err, "error:", err)
					continue
				}
				if len(args) == 0 {
					continue
				}
				switch args[0] {
				case "exit", "quit":
					return nil
				case "shell":
					fmt.Fprintln(a.opts.Err, "error: already in the shell")
					continue
				}

				// A fresh tree per line keeps flag values from leaking between commands.
				sub := a.newRoot()
				sub.SetArgs(args)
				if err := sub.ExecuteContext(ctx); err != nil {
					fmt.Fprintln(a.opts.Err, "error:", err)
				}
			}
		},
	}
}

func (a *app) prompt() string {
	if u, ok := a.manager.User(); ok {
		return fmt.Sprintf("%s [%s]> ", u.Email, a.manager.State())
	}
	return "guest> "
}

// splitArgs splits a shell line on whitespace, honouring single and double
// quotes and backslash escapes outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, errors.New("unterminated quote or escape")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
