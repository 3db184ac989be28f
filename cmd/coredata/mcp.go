package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/coredata"
	"github.com/aretw0/coredata/pkg/adapters/mcp"
	"github.com/aretw0/coredata/pkg/domain"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts coredata as an MCP Server so agents can call the resolvers as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		s, err := newSetup(cfg, domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		defer s.Close()

		srv := mcp.NewServer(s.client, strings.TrimSpace(coredata.Version), s.logger)

		switch transport {
		case "stdio":
			// Logs go to Stderr so they don't corrupt JSON-RPC on Stdout.
			log.SetOutput(os.Stderr)
			s.logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf(":%d", port)
			return srv.ServeSSE(ctx, addr, fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
