// Package models holds the gorm-mapped tables of the finance store.
package models

// All lists every table in dependency order, parents first.
func All() []any {
	return []any{&User{}, &Transaction{}, &Goal{}, &SecurityAlert{}}
}
