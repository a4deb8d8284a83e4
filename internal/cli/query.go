package cli

import (
	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql> [params...]",
		Short: "Run a raw SQL statement",
		Long: `Run one SQL statement against the selected connection.

Parameters bind to the statement's placeholders in order; write them in the
engine's style (? for sqlite and mysql, $1, $2 ... for postgres). Canonical
decimal integers bind as integers, everything else as text.`,
		Example: `  dbbridge query "SELECT * FROM users WHERE age > ?" 18
  dbbridge --conn analytics query "SELECT count(*) FROM events WHERE kind = \$1" click`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, e, err := openManager(cmd)
			if err != nil {
				return err
			}
			defer closeManagers(cmd.Context(), e.logger)

			rows, err := m.ExecuteQuery(cmd.Context(), args[0], parseArgs(args[1:])...)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), rows, e.cfg.Output)
		},
	}
}
