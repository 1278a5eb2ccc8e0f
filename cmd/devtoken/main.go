// devtoken mints an HS256 bearer token for local use against a server
// started with JWT_SECRET. It prints the token on stdout.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/mindmap/mindmap-server/internal/tokens"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	_ = godotenv.Load(".env")

	var (
		user   identity.User
		secret string
		ttl    time.Duration
	)
	flagSet := pflag.NewFlagSet("devtoken", pflag.ContinueOnError)
	flagSet.StringVarP(&user.ID, "sub", "u", "", "subject (user id) claim")
	flagSet.StringVarP(&user.DisplayName, "name", "n", "", "display name claim (default: the subject)")
	flagSet.StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HS256 signing secret (default: $JWT_SECRET)")
	flagSet.DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if user.ID == "" {
		return fmt.Errorf("--sub is required")
	}
	if user.DisplayName == "" {
		user.DisplayName = user.ID
	}

	tok, err := tokens.GenerateAccessToken(secret, user, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}
