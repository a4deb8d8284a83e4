package cli

import (
	"fmt"
	"strings"

	"github.com/Kaguya154/dbbridge/drivers/mysql"
	"github.com/Kaguya154/dbbridge/drivers/postgresql"
	"github.com/Kaguya154/dbbridge/drivers/sqlite"
	"github.com/Kaguya154/dbbridge/types"
	"github.com/spf13/cobra"
)

// engineDrivers 各引擎可选的底层客户端，首个为默认
var engineDrivers = map[types.Engine][]string{
	types.EngineSQLite:   {sqlite.DriverName, sqlite.PureGoDriverName},
	types.EngineMySQL:    {mysql.DriverName},
	types.EnginePostgres: {postgresql.DriverName, postgresql.LibPQDriverName},
}

func newEnginesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List supported engines, placeholder styles and drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := make([]types.Row, 0, len(types.Engines()))
			for _, engine := range types.Engines() {
				style := engine.Placeholder()
				data = append(data, types.Row{
					"engine":      engine.String(),
					"placeholder": fmt.Sprintf("%s (%s)", style, style.Format(1)),
					"drivers":     strings.Join(engineDrivers[engine], ", "),
				})
			}
			rows := types.NewRows([]string{"engine", "placeholder", "drivers"}, data)
			return render(cmd.OutOrStdout(), rows, getEnv(cmd.Context()).cfg.Output)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dbbridge %s\n", Version)
		},
	}
}
