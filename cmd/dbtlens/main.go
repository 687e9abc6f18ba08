// Command dbtlens inspects dbt-style projects: missing metadata, dependency
// lineage, and coverage reporting.
package main

import (
	"os"

	"github.com/leapstack-labs/dbtlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
