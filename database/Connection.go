package database

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bignyap/go-sqlhelper/config"
	"github.com/go-sql-driver/mysql"
)

// Dialect is the database family named before the "+" of a driver name.
type Dialect string

const (
	DialectSQLServer  Dialect = "mssql"
	DialectPostgreSQL Dialect = "postgresql"
	DialectMySQL      Dialect = "mysql"
	DialectSQLite     Dialect = "sqlite"
)

// Driver is the registered database/sql driver used for a dialect.
type Driver string

const (
	SQLServerDriver    Driver = "sqlserver"
	PostgresDriver     Driver = "postgres"
	PgxDriver          Driver = "pgx"
	MySQLDriver        Driver = "mysql"
	SQLiteDriver       Driver = "sqlite3"
	PureGoSQLiteDriver Driver = "sqlite"
)

// odbcOnlyOptions only mean something to an ODBC-backed SQL Server client.
var odbcOnlyOptions = map[string]bool{
	"driver":             true,
	"trusted_connection": true,
}

// ParseDriver splits a "dialect+driver" name such as "mssql+pyodbc" or
// "postgresql+pgx" and picks the Go driver that serves it.
func ParseDriver(input string) (Dialect, Driver, error) {
	name := strings.ToLower(strings.TrimSpace(input))
	dialect, variant, _ := strings.Cut(name, "+")

	switch dialect {
	case "mssql", "sqlserver":
		return DialectSQLServer, SQLServerDriver, nil
	case "postgresql", "postgres":
		switch variant {
		case "", "psycopg2", "pq":
			return DialectPostgreSQL, PostgresDriver, nil
		case "pgx", "asyncpg", "psycopg":
			return DialectPostgreSQL, PgxDriver, nil
		}
	case "mysql", "mariadb":
		return DialectMySQL, MySQLDriver, nil
	case "sqlite", "sqlite3":
		switch variant {
		case "", "pysqlite", "cgo":
			return DialectSQLite, SQLiteDriver, nil
		case "modernc", "pure":
			return DialectSQLite, PureGoSQLiteDriver, nil
		}
	}
	return "", "", fmt.Errorf("unsupported driver: %s", input)
}

// ConnectionURL identifies a database the way a "dialect+driver://host/db?opts"
// URL does. Values handed out by the registry are copies.
type ConnectionURL struct {
	DriverName string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	Query      map[string]string
}

// BuildURL assembles a ConnectionURL from the [database] section. The query
// bag always carries driver and trusted_connection verbatim.
func BuildURL(cfg config.DatabaseConfig) (ConnectionURL, error) {
	if _, _, err := ParseDriver(cfg.DriverName); err != nil {
		return ConnectionURL{}, err
	}

	query := make(map[string]string, len(cfg.Options)+2)
	for k, v := range cfg.Options {
		query[k] = v
	}
	query["driver"] = cfg.Driver
	query["trusted_connection"] = cfg.TrustedConnection

	return ConnectionURL{
		DriverName: cfg.DriverName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		Host:       cfg.Host,
		Port:       cfg.Port,
		Database:   cfg.Database,
		Query:      query,
	}, nil
}

// String renders the URL with the password masked.
func (u ConnectionURL) String() string {
	return u.Render(true)
}

// Render renders the URL, masking the password when hidePassword is set.
// Query keys are sorted and values form-encoded.
func (u ConnectionURL) Render(hidePassword bool) string {
	var b strings.Builder
	b.WriteString(u.DriverName)
	b.WriteString("://")
	if u.Username != "" {
		b.WriteString(url.QueryEscape(u.Username))
		if u.Password != "" {
			b.WriteByte(':')
			if hidePassword {
				b.WriteString("***")
			} else {
				b.WriteString(url.QueryEscape(u.Password))
			}
		}
		b.WriteByte('@')
	}
	b.WriteString(u.Host)
	if u.Port != "" {
		b.WriteByte(':')
		b.WriteString(u.Port)
	}
	if u.Database != "" {
		b.WriteByte('/')
		b.WriteString(u.Database)
	}
	if len(u.Query) > 0 {
		b.WriteByte('?')
		b.WriteString(u.queryValues(nil).Encode())
	}
	return b.String()
}

func (u ConnectionURL) clone() ConnectionURL {
	c := u
	if u.Query != nil {
		c.Query = make(map[string]string, len(u.Query))
		for k, v := range u.Query {
			c.Query[k] = v
		}
	}
	return c
}

func (u ConnectionURL) queryValues(skip map[string]bool) url.Values {
	values := url.Values{}
	for k, v := range u.Query {
		if skip[k] {
			continue
		}
		values.Set(k, v)
	}
	return values
}

// driverOptions returns the query options that the Go driver understands,
// in a stable order.
func (u ConnectionURL) driverOptions(skip map[string]bool) []string {
	keys := make([]string, 0, len(u.Query))
	for k := range u.Query {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// DSN converts the URL into the data source name expected by its Go driver.
func (u ConnectionURL) DSN() (string, error) {
	_, driver, err := ParseDriver(u.DriverName)
	if err != nil {
		return "", err
	}

	switch driver {
	case SQLServerDriver:
		return u.sqlServerDSN(), nil
	case PostgresDriver, PgxDriver:
		return u.postgresDSN(), nil
	case MySQLDriver:
		return u.mysqlDSN(), nil
	case SQLiteDriver, PureGoSQLiteDriver:
		return u.sqliteDSN(), nil
	default:
		return "", fmt.Errorf("invalid or unsupported driver: %s", driver)
	}
}

func (u ConnectionURL) sqlServerDSN() string {
	host := u.Host
	instance := ""
	if h, inst, ok := strings.Cut(u.Host, `\`); ok {
		host, instance = h, inst
	}
	if u.Port != "" {
		host = net.JoinHostPort(host, u.Port)
	}

	values := u.queryValues(map[string]bool{"driver": true})
	if u.Database != "" {
		values.Set("database", u.Database)
	}

	dsn := url.URL{
		Scheme:   "sqlserver",
		Host:     host,
		Path:     instance,
		RawQuery: values.Encode(),
	}
	if u.Username != "" {
		dsn.User = url.UserPassword(u.Username, u.Password)
	}
	return dsn.String()
}

func (u ConnectionURL) postgresDSN() string {
	var parts []string
	add := func(key, value string) {
		if value == "" {
			return
		}
		parts = append(parts, key+"="+quotePostgresValue(value))
	}
	add("host", u.Host)
	add("port", u.Port)
	add("user", u.Username)
	add("password", u.Password)
	add("dbname", u.Database)
	for _, k := range u.driverOptions(odbcOnlyOptions) {
		add(k, u.Query[k])
	}
	return strings.Join(parts, " ")
}

func quotePostgresValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (u ConnectionURL) mysqlDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = u.Username
	cfg.Passwd = u.Password
	cfg.DBName = u.Database
	if u.Host != "" {
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if u.Port != "" {
			cfg.Addr = net.JoinHostPort(u.Host, u.Port)
		}
	}
	for _, k := range u.driverOptions(odbcOnlyOptions) {
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params[k] = u.Query[k]
	}
	return cfg.FormatDSN()
}

func (u ConnectionURL) sqliteDSN() string {
	path := u.Database
	if path == "" {
		path = ":memory:"
	}
	keys := u.driverOptions(odbcOnlyOptions)
	if len(keys) == 0 {
		return path
	}
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, u.Query[k])
	}
	return path + "?" + values.Encode()
}

type ConnectionPoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	EnableTelemetry bool // Enable OpenTelemetry tracing for the pgx driver
}

func DefaultPoolConfig() *ConnectionPoolConfig {
	return &ConnectionPoolConfig{
		MaxOpenConns:    30,
		MaxIdleConns:    10,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: 10 * time.Minute,
	}
}

// PoolConfigFrom overlays the non-zero values of cfg on DefaultPoolConfig.
func PoolConfigFrom(cfg config.PoolConfig) *ConnectionPoolConfig {
	pool := DefaultPoolConfig()
	if cfg.MaxOpenConns > 0 {
		pool.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		pool.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.ConnMaxIdleTime > 0 {
		pool.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}
	if cfg.ConnMaxLifetime > 0 {
		pool.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	pool.EnableTelemetry = cfg.EnableTelemetry
	return pool
}
