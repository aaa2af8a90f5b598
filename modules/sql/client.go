package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/ctxlog"
)

// Client opens sql-session resources.
type Client struct{}

// RequiredConfigs implements resource.Client.
func (Client) RequiredConfigs(*config.Store) []string {
	return []string{KeyDSN}
}

// Open connects using DB_FLAVOR and DB_DSN, injecting DB_UID and DB_PWD into
// URL style DSNs that carry no credentials.
func (Client) Open(ctx context.Context, cfg *config.Store) (any, error) {
	f, name, err := lookupFlavor(cfg.GetOr(KeyFlavor, DefaultFlavor))
	if err != nil {
		return nil, err
	}
	dsn, redacted, err := connectString(f, cfg)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx).With("flavor", name, "dsn", redacted)
	logger.Debug("Connecting to database.")

	db, err := sql.Open(f.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", name, err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("connecting to %s database: %w", name, err), db.Close())
	}
	logger.Info("Database session established.")
	return &Session{db: db, conn: conn, flavor: f, name: name}, nil
}

// Close implements resource.Client.
func (Client) Close(ctx context.Context, handle any) error {
	s, ok := handle.(*Session)
	if !ok {
		return fmt.Errorf("sql-session: unexpected handle type %T", handle)
	}
	ctxlog.FromContext(ctx).Debug("Closing database session.", "flavor", s.name)
	return s.Close()
}
