package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/remotehub/pkg/device/schema"
	"github.com/urmzd/remotehub/pkg/hub"
)

// ServerName and ServerVersion identify the server to MCP clients.
const (
	ServerName    = "remotehub"
	ServerVersion = "1.0.0"
)

// Server exposes the hub's device, learning and generation operations as MCP tools
type Server struct {
	mcpServer *server.MCPServer
	hub       *hub.Hub
	validator *schema.Validator
}

// NewServer creates a new MCP server backed by h
func NewServer(h *hub.Hub, validator *schema.Validator) *Server {
	s := &Server{
		hub:       h,
		validator: validator,
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
