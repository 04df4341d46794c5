// Command druscope serves a read-only HTTP API over a Drupal site's
// database, with the connection details taken from the site's settings.php.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "druscope",
		Short:         "Read-only database explorer for Drupal sites",
		Long:          "druscope connects to a Drupal site's database (MySQL, PostgreSQL, SQL Server, or Oracle) using the credentials in settings.php and serves schema, search, and content APIs over HTTP.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
