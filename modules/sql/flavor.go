package sql

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/CadentTech/bigrays/internal/config"

	// Drivers selectable through DB_FLAVOR.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Config keys read by the sql-session client.
const (
	KeyDSN    = "DB_DSN"
	KeyFlavor = "DB_FLAVOR"
	KeyUID    = "DB_UID"
	KeyPWD    = "DB_PWD"
)

// DefaultFlavor is used when DB_FLAVOR is unset.
const DefaultFlavor = "mssql"

// flavor describes how to talk to one database family.
type flavor struct {
	driver string
	// placeholder returns the bind parameter for the i-th (1-based) value.
	placeholder func(i int) string
	// urlSchemes are the DSN schemes that accept DB_UID/DB_PWD injection.
	urlSchemes []string
}

var flavors = map[string]flavor{
	"mssql": {
		driver:      "sqlserver",
		placeholder: func(i int) string { return "@p" + strconv.Itoa(i) },
		urlSchemes:  []string{"sqlserver"},
	},
	"postgres": {
		driver:      "pgx",
		placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
		urlSchemes:  []string{"postgres", "postgresql"},
	},
	"sqlite": {
		driver:      "sqlite",
		placeholder: func(int) string { return "?" },
	},
}

var flavorAliases = map[string]string{
	"sqlserver":  "mssql",
	"postgresql": "postgres",
	"pgx":        "postgres",
	"sqlite3":    "sqlite",
}

func lookupFlavor(name string) (flavor, string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := flavorAliases[name]; ok {
		name = alias
	}
	f, ok := flavors[name]
	if !ok {
		return flavor{}, "", fmt.Errorf("unsupported %s %q (supported: mssql, postgres, sqlite)", KeyFlavor, name)
	}
	return f, name, nil
}

// connectString builds the driver DSN from the config and a variant of it
// that is safe to log.
func connectString(f flavor, cfg *config.Store) (dsn, redacted string, err error) {
	dsn = cfg.Get(KeyDSN)
	if dsn == "" {
		return "", "", fmt.Errorf("%s is empty", KeyDSN)
	}
	uid, pwd := cfg.Get(KeyUID), cfg.Get(KeyPWD)

	u, perr := url.Parse(dsn)
	if perr != nil || !contains(f.urlSchemes, u.Scheme) {
		// Not a URL DSN: credentials, if any, are already inline.
		return dsn, "[dsn redacted]", nil
	}
	if uid != "" && u.User == nil {
		u.User = url.UserPassword(uid, pwd)
	}
	return u.String(), u.Redacted(), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
