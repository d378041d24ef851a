// Package skiplist stores the denylist of domains and addresses excluded
// from enrichment. The list is loaded fresh for every enrichment call.
package skiplist

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Entry kinds.
const (
	KindDomain = "domain"
	KindEmail  = "email"
)

// Entry is one skip-list rule.
type Entry struct {
	ID        string    `json:"id"`
	Pattern   string    `json:"pattern"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// List is a loaded snapshot of the skip list.
type List []Entry

// Blocks reports whether the email or its domain matches any entry.
// Domain entries also match subdomains.
func (l List) Blocks(email, domain string) bool {
	email = strings.ToLower(email)
	domain = strings.ToLower(domain)
	for _, e := range l {
		pattern := strings.ToLower(e.Pattern)
		switch e.Kind {
		case KindEmail:
			if email == pattern {
				return true
			}
		case KindDomain:
			if domain == pattern || strings.HasSuffix(domain, "."+pattern) {
				return true
			}
		}
	}
	return false
}

// Store defines skip-list persistence.
type Store interface {
	Load(ctx context.Context) (List, error)
	Add(ctx context.Context, entry Entry) error
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite", "":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("skiplist: unknown driver %q", driver)
	}
}
