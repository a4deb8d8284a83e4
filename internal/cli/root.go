// Package cli dbbridge 命令行
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Kaguya154/dbbridge"
	"github.com/Kaguya154/dbbridge/config"
	"github.com/spf13/cobra"
)

// Version 构建时注入
var Version = "0.1.0"

type envKey struct{}

// env 一次命令执行的配置与日志器
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "dbbridge",
		Short: "Query SQLite, MySQL and PostgreSQL through one interface",
		Long: `dbbridge connects to SQLite, MySQL or PostgreSQL and runs raw SQL or
SELECT statements built in the engine's placeholder dialect.

Connections come from dbbridge.yaml, DBBRIDGE_ environment variables,
or --engine/--dsn for a one-off connection.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey{}, &env{cfg: cfg, logger: logger}))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./dbbridge.yaml)")
	flags.StringP("conn", "c", "", "named connection from the config file")
	flags.StringP("engine", "e", "", "engine for a one-off connection (sqlite|mysql|postgres)")
	flags.String("dsn", "", "DSN for a one-off connection")
	flags.String("driver", "", "client driver (sqlite3|sqlite, pgx|postgres)")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	flags.StringP("output", "o", config.DefaultOutput, "output format (table|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("engine", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "mysql", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newSelectCommand())
	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newEnginesCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute 运行根命令
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func getEnv(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{
		cfg:    &config.Config{Log: config.LogConfig{Level: config.DefaultLogLevel}, Output: config.DefaultOutput},
		logger: slog.New(slog.DiscardHandler),
	}
}

// openManager 按 --conn / default 选出连接，建立 Manager 并以连接名注册，调用方负责 closeManagers
func openManager(cmd *cobra.Command) (*dbbridge.Manager, *env, error) {
	e := getEnv(cmd.Context())
	if err := e.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	name, conn, err := e.cfg.Resolve("")
	if err != nil {
		return nil, nil, err
	}
	m, err := dbbridge.Open(conn, e.logger.With("conn", name))
	if err != nil {
		return nil, nil, err
	}
	if err := dbbridge.Register(name, m); err != nil {
		return nil, nil, err
	}
	if err := m.Connect(cmd.Context()); err != nil {
		closeManagers(cmd.Context(), e.logger)
		return nil, nil, err
	}
	return m, e, nil
}

// closeManagers 断开并注销全部已注册连接，失败只记录日志
func closeManagers(ctx context.Context, logger *slog.Logger) {
	if err := dbbridge.DisconnectAll(ctx); err != nil {
		logger.Warn("disconnect failed", "error", err)
	}
}
