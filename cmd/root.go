package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/gmailmcp/internal/driver"
)

// rootCmd represents the base command for the gmailmcp application
var rootCmd = &cobra.Command{
	Use:   "gmailmcp",
	Short: "Drives a Gmail MCP server with per-request user credentials",
	Long: `gmailmcp demonstrates stateless, per-request authentication against a Gmail
MCP (Model Context Protocol) server.

It can run as:
  - An interaction driver that launches the server over stdio and calls its tools (default)
  - A Gmail MCP server that takes OAuth credentials from each tool call`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gmailmcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the driver by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// printError writes err unless the driver already reported it on the console.
func printError(w io.Writer, err error) {
	if driver.IsReported(err) {
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
