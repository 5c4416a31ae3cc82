// Command create_user adds an account without going through the API.
//
//	go run ./cmd/create_user --name "Demo User" --email demo@example.com
//
// The password is prompted for (without echo) unless --password is given.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gryffintwin/pkg/envconf"
	"gryffintwin/pkg/identity"

	"golang.org/x/term"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type opener func(dsn string) (*gorm.DB, error)

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func main() {
	envconf.LoadDotEnv()
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, openPostgres); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, open opener) error {
	fs := flag.NewFlagSet("create_user", flag.ContinueOnError)
	fs.SetOutput(stdout)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*email) == "" {
		fs.Usage()
		return errors.New("--name and --email are required")
	}

	dsn := envconf.String("DB_DSN", "")
	if dsn == "" {
		return errors.New("DB_DSN not set in environment")
	}
	db, err := open(dsn)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}

	pw := *password
	if pw == "" {
		fmt.Fprint(stdout, "Password: ")
		if pw, err = readPassword(stdin); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	users, err := identity.NewStore(db)
	if err != nil {
		return err
	}
	user, err := users.Register(ctx, *name, *email, pw)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(stdout, "created user %s id=%d\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
