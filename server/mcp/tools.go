package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kasuganosora/sqlgeo/pkg/api"
	"github.com/kasuganosora/sqlgeo/pkg/builtin"
	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
	"github.com/kasuganosora/sqlgeo/pkg/geomconv"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// ToolDeps holds shared dependencies for MCP tool handlers
type ToolDeps struct {
	DB     *api.DB
	Logger api.Logger
}

// HandleParseEWKT parses one EWKT literal and renders it in the requested format
func (d *ToolDeps) HandleParseEWKT(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := request.GetString("ewkt", "")
	format := strings.ToLower(request.GetString("format", "summary"))
	traceID := traceIDOf(request)

	if text == "" {
		return mcp.NewToolResultError("ewkt parameter is required"), nil
	}

	start := time.Now()
	c, err := d.DB.ParseEWKT(text)
	if err != nil {
		d.logToolCall(traceID, "parse_ewkt", time.Since(start), err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out string
	switch format {
	case "summary":
		out = summarize(c)
	case "ewkt":
		out = ewkt.Format(c)
	case "wkt":
		out = ewkt.FormatWKT(c)
	case "geojson":
		b, gerr := geomconv.MarshalFeature(c, traceID, map[string]interface{}{
			"srid": c.SRID,
			"type": c.DeclaredType.String(),
		})
		if gerr != nil {
			err = gerr
			break
		}
		out = string(b)
	default:
		err = fmt.Errorf("unknown format %q, expected summary, ewkt, wkt or geojson", format)
	}
	d.logToolCall(traceID, "parse_ewkt", time.Since(start), err)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

// HandleQuery executes a SQL statement against the sqlite host
func (d *ToolDeps) HandleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sql := request.GetString("sql", "")
	traceID := traceIDOf(request)

	if sql == "" {
		return mcp.NewToolResultError("sql parameter is required"), nil
	}

	start := time.Now()
	if !isReadStatement(sql) {
		result, err := d.DB.Exec(ctx, sql)
		d.logToolCall(traceID, "query", time.Since(start), err)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("execute failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Affected rows: %d", result.RowsAffected)), nil
	}

	result, err := d.DB.Query(ctx, sql)
	d.logToolCall(traceID, "query", time.Since(start), err)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(result.Columns, "\t"))
	sb.WriteString("\n")
	for _, row := range result.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				vals[i] = "NULL"
				continue
			}
			vals[i] = fmt.Sprintf("%v", v)
		}
		sb.WriteString(strings.Join(vals, "\t"))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n(%d rows)", result.Total()))
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleListFunctions lists the spatial SQL functions, optionally by category
func (d *ToolDeps) HandleListFunctions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := request.GetString("category", "")

	var infos []*builtin.FunctionInfo
	if category == "" {
		infos = builtin.GetGlobalRegistry().List()
	} else {
		infos = builtin.GetGlobalRegistry().ListByCategory(builtin.FunctionCategory(category))
	}
	if len(infos) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no functions in category %q", category)), nil
	}

	var sb strings.Builder
	sb.WriteString("Functions:\n")
	for _, info := range infos {
		sb.WriteString(fmt.Sprintf("- %s", info.Name))
		if len(info.Aliases) > 0 {
			sb.WriteString(fmt.Sprintf(" (%s)", strings.Join(info.Aliases, ", ")))
		}
		if info.Description != "" {
			sb.WriteString(": " + info.Description)
		}
		sb.WriteString("\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (d *ToolDeps) logToolCall(traceID, toolName string, duration time.Duration, err error) {
	if d.Logger == nil {
		return
	}
	if err != nil {
		d.Logger.Warn("trace=%s tool=%s duration=%dms failed: %v", traceID, toolName, duration.Milliseconds(), err)
		return
	}
	d.Logger.Info("trace=%s tool=%s duration=%dms ok", traceID, toolName, duration.Milliseconds())
}

// traceIDOf returns the caller's trace_id, or a fresh one.
func traceIDOf(request mcp.CallToolRequest) string {
	if id := request.GetString("trace_id", ""); id != "" {
		return id
	}
	return uuid.NewString()
}

func isReadStatement(sql string) bool {
	upper := strings.ToUpper(strings.TrimSpace(sql))
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "EXPLAIN", "VALUES"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

func summarize(c *geometry.Collection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type: %s\n", c.DeclaredType)
	fmt.Fprintf(&sb, "model: %s\n", c.Model)
	fmt.Fprintf(&sb, "srid: %d\n", c.SRID)
	fmt.Fprintf(&sb, "points: %d, linestrings: %d, polygons: %d\n", len(c.Points), len(c.Linestrings), len(c.Polygons))
	fmt.Fprintf(&sb, "mbr: %g %g, %g %g", c.MBR.MinX, c.MBR.MinY, c.MBR.MaxX, c.MBR.MaxY)
	return sb.String()
}
