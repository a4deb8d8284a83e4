package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kaguya154/dbbridge/types"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
default: local
connections:
  local:
    engine: sqlite
    dsn: data/app.db
  orders:
    engine: mysql
    host: db.internal
    user: app
    password: secret
    database: orders
  analytics:
    engine: postgresql
    dsn: postgres://app@pg.internal/analytics
    driver: postgres
    max_conns: 8
log:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("conn", "", "")
	fs.String("engine", "", "")
	fs.String("dsn", "", "")
	fs.String("driver", "", "")
	fs.String("log-level", "info", "")
	fs.String("output", "table", "")
	fs.Bool("verbose", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Empty(t, cfg.Connections)
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML), nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "local", cfg.Default)
	assert.Equal(t, []string{"analytics", "local", "orders"}, cfg.Names())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "table", cfg.Output, "文件未设置时保留默认值")

	pg := cfg.Connections["analytics"]
	assert.Equal(t, int32(8), pg.MaxConns)
	assert.Equal(t, "postgres", pg.Driver)
	engine, err := pg.EngineTag()
	require.NoError(t, err)
	assert.Equal(t, types.EnginePostgres, engine)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("DBBRIDGE_OUTPUT", "json")
	t.Setenv("DBBRIDGE_CONNECTIONS__LOCAL__DSN", ":memory:")
	t.Setenv("DBBRIDGE_CONNECTIONS__ANALYTICS__MAX_CONNS", "16")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, ":memory:", cfg.Connections["local"].DSN)
	assert.Equal(t, "sqlite", cfg.Connections["local"].Engine, "同级其他键不受影响")
	assert.Equal(t, int32(16), cfg.Connections["analytics"].MaxConns)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("DBBRIDGE_OUTPUT", "json")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--output", "table", "--conn", "orders"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "orders", cfg.Default)
	assert.Equal(t, "debug", cfg.Log.Level, "未设置的参数不覆盖文件")
}

func TestLoad_AdHocConnection(t *testing.T) {
	t.Chdir(t.TempDir())

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--engine", "sqlite", "--dsn", ":memory:"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, AdHocConnection, cfg.Default)

	name, conn, err := cfg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, AdHocConnection, name)
	assert.Equal(t, Connection{Engine: "sqlite", DSN: ":memory:"}, conn)
}

func TestLoad_BadFile(t *testing.T) {
	_, err := Load(writeConfig(t, "connections: [unclosed"), nil)
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
}

func TestConfig_Connection(t *testing.T) {
	cfg := &Config{Connections: map[string]Connection{"only": {Engine: "sqlite", DSN: ":memory:"}}}
	conn, err := cfg.Connection("")
	require.NoError(t, err, "唯一连接无需 default")
	assert.Equal(t, ":memory:", conn.DSN)

	name, _, err := cfg.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "only", name)

	_, err = cfg.Connection("other")
	require.ErrorContains(t, err, `connection "other" not found`)

	cfg.Connections["second"] = Connection{Engine: "sqlite", DSN: "b.db"}
	_, err = cfg.Connection("")
	require.Error(t, err)
}

func TestConnection_Validate(t *testing.T) {
	tests := []struct {
		name      string
		conn      Connection
		errSubstr string
	}{
		{name: "sqlite", conn: Connection{Engine: "sqlite", DSN: "app.db"}},
		{name: "sqlite without dsn", conn: Connection{Engine: "sqlite"}, errSubstr: "sqlite requires dsn"},
		{name: "postgres alias", conn: Connection{Engine: "pg", DSN: "postgres://localhost/db"}},
		{name: "mysql record", conn: Connection{Engine: "mysql", Host: "db"}},
		{name: "mysql colon dsn", conn: Connection{Engine: "mysql", DSN: "db:root:pw:shop"}},
		{name: "mysql bad dsn", conn: Connection{Engine: "mysql", DSN: "db:root:p:w:shop"}, errSubstr: "got 5 fields"},
		{name: "mysql empty", conn: Connection{Engine: "mysql"}, errSubstr: "mysql requires host or dsn"},
		{name: "unknown engine", conn: Connection{Engine: "oracle", DSN: "x"}, errSubstr: "unsupported database engine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errSubstr)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{
		Default:     "missing",
		Connections: map[string]Connection{"bad": {Engine: "sqlite"}},
		Output:      "xml",
		Log:         LogConfig{Level: "loud"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{`default connection "missing"`, `connection "bad"`, "output must be", "invalid log level"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestConnection_Descriptor(t *testing.T) {
	record := Connection{Engine: "mysql", Host: "db", User: "u", Password: "p", Database: "d", DSN: "ignored"}
	assert.Equal(t, types.MySQLConfig{Host: "db", User: "u", Password: "p", Database: "d"}, record.Descriptor())

	colon := Connection{Engine: "mysql", DSN: "db:u:p:d"}
	assert.Equal(t, types.DSN("db:u:p:d"), colon.Descriptor())

	pg := Connection{Engine: "postgres", DSN: "postgres://localhost/db", MaxConns: 4, Driver: "pgx"}
	assert.Equal(t, types.DSN("postgres://localhost/db"), pg.Descriptor())
	assert.Equal(t, types.Options{Driver: "pgx", MaxConns: 4}, pg.Options(nil))
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "engine", "sqlite")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"engine":"sqlite"`)

	_, err = LogConfig{Format: "xml"}.NewLogger(&buf)
	require.Error(t, err)
}
