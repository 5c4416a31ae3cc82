// Package sanitize empties the finance tables of a database, optionally reseeding the demo account.
package sanitize

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"gryffintwin/pkg/demo"
	"gryffintwin/pkg/identity"

	"gorm.io/gorm"
)

// DefaultTables lists the application tables, children before parents.
const DefaultTables = "security_alerts,goals,transactions,users"

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Options struct {
	Tables string // comma separated
	DryRun bool
	Yes    bool // required to actually delete
	Reseed bool
}

// Tables returns the valid, existing tables named in list, in the order given.
func Tables(db *gorm.DB, list string) []string {
	var out []string
	for _, t := range strings.Split(list, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !tableName.MatchString(t) {
			log.Printf("warning: skipping invalid table name %q", t)
			continue
		}
		if !db.Migrator().HasTable(t) {
			log.Printf("info: table %s not found, skipping", t)
			continue
		}
		out = append(out, t)
	}
	return out
}

// Run empties the selected tables. Nothing is deleted unless DryRun is off and Yes is set.
func Run(ctx context.Context, db *gorm.DB, w io.Writer, opts Options) error {
	tables := Tables(db, opts.Tables)
	if len(tables) == 0 {
		fmt.Fprintln(w, "no requested tables present in the database; nothing to do")
		return nil
	}
	fmt.Fprintln(w, "Tables considered for truncation:")
	for _, t := range tables {
		fmt.Fprintf(w, " - %s\n", t)
	}
	if opts.DryRun {
		fmt.Fprintln(w, "dry-run enabled; no changes will be made. Use --dry-run=false --yes to execute.")
		return nil
	}
	if !opts.Yes {
		fmt.Fprintln(w, "Destructive operation. Pass --yes to confirm execution. Aborting.")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := truncate(ctx, db, tables); err != nil {
		return fmt.Errorf("truncate failed: %w", err)
	}
	fmt.Fprintln(w, "Truncate completed.")

	if opts.Reseed {
		users, err := identity.NewStore(db)
		if err != nil {
			return err
		}
		if err := demo.Seed(ctx, db, users, time.Now()); err != nil {
			return fmt.Errorf("reseed failed: %w", err)
		}
		fmt.Fprintf(w, "Demo account %s reseeded.\n", demo.Email)
	}
	return nil
}

func truncate(ctx context.Context, db *gorm.DB, tables []string) error {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = `"` + t + `"`
	}
	if db.Dialector.Name() == "postgres" {
		stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
		log.Printf("Executing: %s", stmt)
		return db.WithContext(ctx).Exec(stmt).Error
	}
	// sqlite has no TRUNCATE
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range quoted {
			if err := tx.Exec("DELETE FROM " + t).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
