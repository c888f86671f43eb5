// Package main is a small operator tool for the elven-keep server. It issues
// bearer tokens for existing user ids, which is handy for smoke tests and for
// connecting to the websocket endpoint by hand.
package main

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Feaman/elven-keep-server/internal/auth"
)

var (
	version   string
	buildDate string
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "keepctl:", err)
		os.Exit(1)
	}
}

// run executes a single keepctl command and writes its output to out.
func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: keepctl <token|version> [flags]")
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "Build version: %s\n", cmp.Or(version, "N/A"))
		fmt.Fprintf(out, "Build date: %s\n", cmp.Or(buildDate, "N/A"))
		return nil
	case "token":
		return issueToken(args[1:], out)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func issueToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.Int64("user", 0, "user id to issue the token for")
	secret := fs.String("s", os.Getenv("JWT_SECRET"), "secret used to sign bearer tokens")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID <= 0 {
		return errors.New("-user must be a positive id")
	}

	issuer, err := auth.NewIssuer(*secret, *ttl)
	if err != nil {
		return err
	}
	token, err := issuer.Issue(*userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
