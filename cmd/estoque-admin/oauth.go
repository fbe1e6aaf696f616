package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/oauth2"

	gsheet "estoque/internal/sheets/google"
)

// oauthInitCmd runs the installed-app OAuth flow once and saves the user
// token the mirror worker and the importer read afterwards.
type oauthInitCmd struct {
	port    string
	out     string
	timeout time.Duration
}

func (*oauthInitCmd) Name() string     { return "oauth-init" }
func (*oauthInitCmd) Synopsis() string { return "authorize Google Sheets access with a user account" }
func (*oauthInitCmd) Usage() string {
	return `estoque-admin oauth-init [-port 8085] [-out token.json]

  Prints an authorization URL, waits for the redirect on
  http://localhost:<port>/callback and saves the token. The OAuth client
  comes from GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE and must
  list that redirect URI.
`
}

func (c *oauthInitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", envOr("OAUTH_REDIRECT_PORT", "8085"), "local port for the redirect")
	f.StringVar(&c.out, "out", envOr("GOOGLE_OAUTH_TOKEN_FILE", "token.json"), "where to save the token")
	f.DurationVar(&c.timeout, "timeout", 5*time.Minute, "how long to wait for authorization")
}

func (c *oauthInitCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	clientJSON, err := gsheet.ReadOAuthClient(os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"), os.Getenv("GOOGLE_OAUTH_CLIENT_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	cfg, err := gsheet.OAuthConfig(clientJSON, "http://localhost:"+c.port+"/callback")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	srv := &http.Server{Addr: ":" + c.port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if e := r.URL.Query().Get("error"); e != "" {
			http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", e)
			return
		}
		fmt.Fprintln(w, "Autorização concluída. Pode fechar esta janela.")
		codeCh <- r.URL.Query().Get("code")
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL to authorize:\n%s\n", cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exchanging code: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := gsheet.SaveToken(c.out, tok); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Saved token to %s\n", c.out)
		return subcommands.ExitSuccess
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "Error: authorization not completed: %v\n", ctx.Err())
		return subcommands.ExitFailure
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
