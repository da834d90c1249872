package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/kasuganosora/sqlgeo/pkg/api"
	"github.com/kasuganosora/sqlgeo/pkg/config"
)

const (
	serverName    = "sqlgeo"
	serverVersion = "1.0.0"
	endpointPath  = "/mcp"
)

// Server is the MCP protocol server
type Server struct {
	db     *api.DB
	cfg    *config.MCPConfig
	logger api.Logger
}

// NewServer creates a new MCP server
func NewServer(db *api.DB, cfg *config.MCPConfig, logger api.Logger) *Server {
	if logger == nil {
		logger = api.NewNoOpLogger()
	}
	return &Server{db: db, cfg: cfg, logger: logger}
}

// MCPServer builds the tool server without a transport
func (s *Server) MCPServer() *mcpserver.MCPServer {
	deps := &ToolDeps{DB: s.db, Logger: s.logger}

	mcpSrv := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	parseTool := mcp.NewTool("parse_ewkt",
		mcp.WithDescription("Parse an EWKT geometry literal (optional SRID=n; prefix) and describe it. Reports the geometry type, coordinate model, SRID, part counts and bounding box, or the exact error position."),
		mcp.WithString("ewkt", mcp.Description("The EWKT text, e.g. SRID=4326;POLYGON((0 0,4 0,4 4,0 4,0 0))"), mcp.Required()),
		mcp.WithString("format", mcp.Description("Output format: summary (default), ewkt, wkt or geojson")),
		mcp.WithString("trace_id", mcp.Description("Optional trace ID for request tracing")),
	)

	queryTool := mcp.NewTool("query",
		mcp.WithDescription("Execute a SQL statement against the SQLite host. Geometry values are EWKT text; spatial functions such as GeomFromEWKT, ST_SRID, MbrIntersects and AsGeoJSON are available."),
		mcp.WithString("sql", mcp.Description("The SQL statement to execute"), mcp.Required()),
		mcp.WithString("trace_id", mcp.Description("Optional trace ID for request tracing")),
	)

	listFunctionsTool := mcp.NewTool("list_functions",
		mcp.WithDescription("List the spatial SQL functions and their aliases"),
		mcp.WithString("category", mcp.Description("Optional category filter: spatial or mbr")),
	)

	mcpSrv.AddTool(parseTool, deps.HandleParseEWKT)
	mcpSrv.AddTool(queryTool, deps.HandleQuery)
	mcpSrv.AddTool(listFunctionsTool, deps.HandleListFunctions)
	return mcpSrv
}

// Start serves the tools over streamable HTTP (blocking)
func (s *Server) Start() error {
	addr := s.cfg.Address()
	httpServer := mcpserver.NewStreamableHTTPServer(
		s.MCPServer(),
		mcpserver.WithEndpointPath(endpointPath),
	)

	s.logger.Info("[MCP] 启动 MCP 服务器: %s%s", addr, endpointPath)
	return httpServer.Start(addr)
}
