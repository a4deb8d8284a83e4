// Command dbbridge 通过统一接口对 SQLite、MySQL、PostgreSQL 执行查询
package main

import (
	"os"

	"github.com/Kaguya154/dbbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
