package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const defaultPostgresPort = 5432

// ConnInfo is a resolved PostgreSQL connection target.
type ConnInfo struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	// Options holds extra libpq parameters such as application_name.
	Options url.Values
}

// ParseDatabaseURL reads a postgres:// or postgresql:// URL.
// SSLMode stays empty when the URL does not name one.
func ParseDatabaseURL(rawURL string) (*ConnInfo, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("invalid database URL scheme %q (expected postgres or postgresql)", u.Scheme)
	}

	conn := &ConnInfo{
		Host:     u.Hostname(),
		Port:     defaultPostgresPort,
		Database: strings.TrimPrefix(u.Path, "/"),
		Options:  u.Query(),
	}
	if p := u.Port(); p != "" {
		if conn.Port, err = strconv.Atoi(p); err != nil {
			return nil, fmt.Errorf("invalid port in database URL: %w", err)
		}
	}
	if u.User != nil {
		conn.User = u.User.Username()
		conn.Password, _ = u.User.Password()
	}

	conn.SSLMode = conn.Options.Get("sslmode")
	conn.Options.Del("sslmode")

	return conn, nil
}

// DSN renders the keyword/value form lib/pq connects with. Extra options
// follow in key order.
func (c ConnInfo) DSN() string {
	pairs := []string{
		"host=" + dsnValue(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"user=" + dsnValue(c.User),
		"password=" + dsnValue(c.Password),
		"dbname=" + dsnValue(c.Database),
		"sslmode=" + dsnValue(c.SSLMode),
	}

	keys := make([]string, 0, len(c.Options))
	for k := range c.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, k+"="+dsnValue(c.Options.Get(k)))
	}

	return strings.Join(pairs, " ")
}

// URL renders the postgres:// form golang-migrate expects.
func (c ConnInfo) URL() string {
	q := url.Values{}
	for k, v := range c.Options {
		q[k] = v
	}
	q.Set("sslmode", c.SSLMode)

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}

	return u.String()
}

// dsnValue quotes a libpq value when it is empty or holds spaces or quotes.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// DefaultSSLMode is the sslmode used when neither the URL nor the config
// names one. Staging and production never fall back to plaintext.
func DefaultSSLMode(environment string) string {
	if environment == EnvProduction || environment == EnvStaging {
		return "require"
	}
	return "disable"
}

// Conn resolves the connection target. A valid URL wins over the discrete
// fields; the configured SSLMode fills in when the URL has none.
func (c *DatabaseConfig) Conn() ConnInfo {
	if c.URL != "" {
		if conn, err := ParseDatabaseURL(c.URL); err == nil {
			if conn.SSLMode == "" {
				conn.SSLMode = c.sslMode()
			}
			return *conn
		}
	}

	return ConnInfo{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		SSLMode:  c.sslMode(),
	}
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return c.Conn().DSN()
}

// MigrationURL returns the database URL in the form golang-migrate expects.
func (c *DatabaseConfig) MigrationURL() string {
	return c.Conn().URL()
}

func (c *DatabaseConfig) sslMode() string {
	if c.SSLMode != "" {
		return c.SSLMode
	}
	return "disable"
}

// applyURL copies the URL components over the discrete fields so that every
// consumer of the config sees the database actually used.
func (c *DatabaseConfig) applyURL() error {
	if c.URL == "" {
		return nil
	}

	conn, err := ParseDatabaseURL(c.URL)
	if err != nil {
		return err
	}

	c.Host = conn.Host
	c.Port = conn.Port
	c.User = conn.User
	c.Password = conn.Password
	c.Database = conn.Database
	if conn.SSLMode != "" {
		c.SSLMode = conn.SSLMode
	}
	return nil
}
