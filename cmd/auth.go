package cmd

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/naka-gawa/gitorg/internal/config"
	"github.com/naka-gawa/gitorg/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with a GitHub personal access token",
		Long: `Validates a personal access token against GitHub and stores it in the
config file, replacing any previous token. Without --token the token is read
from the terminal without echo.`,
		Args: requireNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := appFrom(ctx)

			if token == "" {
				t, err := promptToken(a.streams)
				if err != nil {
					return err
				}
				token = t
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return &usageError{err: goerr.New("token must not be empty")}
			}

			gw, err := a.newGatewayWithToken(domain.Token(token))
			if err != nil {
				return err
			}
			a.logger.Debug("Validating token...")
			viewer, err := gw.FetchViewer(ctx)
			if err != nil {
				return err
			}

			a.cfg.SetToken(domain.Token(token))
			if err := config.Save(a.cfgPath, a.cfg); err != nil {
				return err
			}
			a.logger.Debug("Token saved.", slog.String("path", a.cfgPath), slog.Any("token", domain.Token(token)))

			a.renderer.Success("Authenticated as %s (%s)", viewer.Login, cmp.Or(viewer.Name, "no name set"))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Token to store (prompted for when omitted)")
	return cmd
}

// promptToken reads a token from the terminal without echo, or a single line
// from a non-terminal input.
func promptToken(s streams) (string, error) {
	fmt.Fprint(s.err, "Enter your GitHub personal access token: ")
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(s.err)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read token")
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", goerr.Wrap(err, "failed to read token")
	}
	fmt.Fprintln(s.err)
	return line, nil
}
