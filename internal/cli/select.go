package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Kaguya154/dbbridge"
	"github.com/Kaguya154/dbbridge/types"
	"github.com/spf13/cobra"
)

type selectOptions struct {
	table    string
	fields   []string
	where    []string
	args     []string
	whereRaw []string
	joins    []string
	aggs     []string
	dryRun   bool
}

func newSelectCommand() *cobra.Command {
	var opts selectOptions

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Build and run a SELECT in the connection's dialect",
		Long: `Build a SELECT statement with the query builder and run it.

Each --where condition takes one ? marker and is paired with the --arg at the
same position. --where-raw conditions are appended after them verbatim.
When any --agg is given the select list holds only the aggregates.`,
		Example: `  dbbridge select --table users --field id,name --where "age > ?" --arg 18
  dbbridge select --table orders --join LEFT:users:"users.id = orders.user_id" --agg SUM:orders.total
  dbbridge -e postgres --dsn postgres://localhost/app select --table users --where "id = ?" --arg 1 --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.dryRun {
				return runSelectDryRun(cmd, &opts)
			}

			m, e, err := openManager(cmd)
			if err != nil {
				return err
			}
			defer closeManagers(cmd.Context(), e.logger)

			qb, err := opts.build(m.Builder())
			if err != nil {
				return err
			}
			rows, err := m.Run(cmd.Context(), qb)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), rows, e.cfg.Output)
		},
	}

	cmd.Flags().StringVarP(&opts.table, "table", "t", "", "table to select from (required)")
	cmd.Flags().StringSliceVarP(&opts.fields, "field", "f", nil, "fields to select (default *)")
	cmd.Flags().StringArrayVarP(&opts.where, "where", "w", nil, "condition with one ? marker")
	cmd.Flags().StringArrayVarP(&opts.args, "arg", "a", nil, "value for the --where at the same position")
	cmd.Flags().StringArrayVar(&opts.whereRaw, "where-raw", nil, "condition emitted verbatim")
	cmd.Flags().StringArrayVarP(&opts.joins, "join", "j", nil, "join as TYPE:table:on (TYPE is INNER, LEFT or RIGHT)")
	cmd.Flags().StringArrayVar(&opts.aggs, "agg", nil, "aggregate as FUNC:field (COUNT, SUM, AVG, MIN, MAX)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the SQL and parameters without connecting")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}

// build 按参数顺序填充查询构建器
func (o *selectOptions) build(qb *types.QueryBuilder) (*types.QueryBuilder, error) {
	if len(o.where) != len(o.args) {
		return nil, fmt.Errorf("got %d --where and %d --arg, each condition needs exactly one value", len(o.where), len(o.args))
	}

	qb.Table(o.table)
	if len(o.fields) > 0 {
		qb.Select(o.fields...)
	}
	for _, j := range o.joins {
		parts := strings.SplitN(j, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid join %q, want TYPE:table:on", j)
		}
		typ, ok := types.ParseJoinType(parts[0])
		if !ok {
			return nil, fmt.Errorf("invalid join type %q", parts[0])
		}
		qb.Join(typ, parts[1], parts[2])
	}
	for i, cond := range o.where {
		qb.Where(cond, parseArg(o.args[i]))
	}
	for _, cond := range o.whereRaw {
		qb.WhereRaw(cond)
	}
	for _, a := range o.aggs {
		fn, field, found := strings.Cut(a, ":")
		if !found {
			return nil, fmt.Errorf("invalid aggregate %q, want FUNC:field", a)
		}
		agg, ok := types.ParseAggFunc(fn)
		if !ok {
			return nil, fmt.Errorf("invalid aggregate function %q", fn)
		}
		qb.Aggregate(agg, field)
	}
	return qb, nil
}

// runSelectDryRun 只需要引擎决定占位符风格，不建立连接
func runSelectDryRun(cmd *cobra.Command, opts *selectOptions) error {
	e := getEnv(cmd.Context())
	conn, err := e.cfg.Connection("")
	if err != nil {
		return err
	}
	engine, err := conn.EngineTag()
	if err != nil {
		return err
	}

	qb, err := opts.build(dbbridge.Query(engine))
	if err != nil {
		return err
	}
	sql, params, err := qb.Build()
	if err != nil {
		return err
	}
	printStatement(cmd.OutOrStdout(), sql, params)
	return nil
}

func printStatement(w io.Writer, sql string, params []any) {
	_, _ = fmt.Fprintf(w, "SQL:    %s\n", sql)
	_, _ = fmt.Fprintf(w, "Params: %v\n", params)
}
