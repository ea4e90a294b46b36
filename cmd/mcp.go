package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	coreconfig "github.com/l0lsec/PodInsights/core/config"
	uiMcp "github.com/l0lsec/PodInsights/ui/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// Empty defaults defer to MCP_HOST / MCP_PORT from the environment.
var (
	mcpHost string
	mcpPort string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the scheduling MCP server using SSE",
	Long:  `Start a MCP (Model Context Protocol) server using Server-Sent Events (SSE) transport. This allows AI agents to schedule social posts and inspect the queue through a standardized protocol.`,
	Run:   mcpServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPort, "port", "", "Port for the SSE MCP server")
	mcpCmd.Flags().StringVar(&mcpHost, "host", "", "Host for the SSE MCP server")
}

func mcpServer(_ *cobra.Command, _ []string) {
	host := coreconfig.Global.MCP.Host
	if mcpHost != "" {
		host = mcpHost
	}
	port := coreconfig.Global.MCP.Port
	if mcpPort != "" {
		port = mcpPort
	}

	// Create MCP server with capabilities
	mcpSrv := server.NewMCPServer(
		"PodInsights Scheduling MCP Server",
		coreconfig.Global.App.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
	)

	// Add the scheduling queue tools
	queueHandler := uiMcp.InitMcpQueue(schedulerUsecase)
	queueHandler.AddQueueTools(mcpSrv)

	// Create SSE server
	sseServer := server.NewSSEServer(
		mcpSrv,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", host, port)),
		server.WithKeepAlive(true),
	)

	// Start the SSE server
	addr := fmt.Sprintf("%s:%s", host, port)
	logrus.Printf("Starting scheduling MCP SSE server on %s", addr)
	logrus.Printf("SSE endpoint: http://%s:%s/sse", host, port)
	logrus.Printf("Message endpoint: http://%s:%s/message", host, port)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		StopApp()
		os.Exit(0)
	}()

	if err := sseServer.Start(addr); err != nil {
		logrus.Fatalf("Failed to start SSE server: %v", err)
	}
}
