package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kasuganosora/sqlgeo/pkg/api"
	"github.com/kasuganosora/sqlgeo/pkg/builtin"
	"github.com/kasuganosora/sqlgeo/pkg/config"
	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
	"github.com/kasuganosora/sqlgeo/pkg/geomconv"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
	mcpserver "github.com/kasuganosora/sqlgeo/server/mcp"
)

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlgeo",
		Short: "EWKT geometry parser and spatial SQL host",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: $SQLGEO_CONFIG or ./sqlgeo.json)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (error, warn, info, debug)")
	rootCmd.PersistentFlags().String("dsn", "", "Override database.dsn")

	parseCmd := &cobra.Command{
		Use:   "parse [EWKT...]",
		Short: "Parse EWKT literals",
		Long:  "Parse EWKT literals given as arguments, or one per line on stdin, and print them.",
		RunE:  ParseHandler,
	}
	parseCmd.Flags().StringP("format", "f", "table", "Output format: table, ewkt, wkt or geojson")

	queryCmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Run SQL with the spatial functions available",
		Args:  cobra.ExactArgs(1),
		RunE:  QueryHandler,
	}

	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "List spatial SQL functions",
		Args:  cobra.NoArgs,
		RunE:  FunctionsHandler,
	}
	functionsCmd.Flags().String("category", "", "Only list one category (spatial, mbr)")

	serveCmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the MCP tools over streamable HTTP",
		Args:  cobra.NoArgs,
		RunE:  ServeMCPHandler,
	}
	serveCmd.Flags().String("host", "", "Override mcp.host")
	serveCmd.Flags().Int("port", 0, "Override mcp.port")

	rootCmd.AddCommand(parseCmd, queryCmd, functionsCmd, serveCmd)
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	if path == "" {
		cfg = config.LoadConfigOrDefault()
	} else {
		c, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	return cfg, nil
}

func openDB(cmd *cobra.Command) (*api.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := api.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := api.NewDefaultLoggerWithOutput(level, cmd.ErrOrStderr())
	return api.Open(cmd.Context(), cfg, logger)
}

func ParseHandler(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "ewkt", "wkt", "geojson":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	inputs := args
	if len(inputs) == 0 {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			return err
		}
		inputs = lines
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no EWKT input")
	}

	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := db.ParseBatch(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var data [][]string
	for i, r := range results {
		if r.Err != nil {
			return fmt.Errorf("input %d: %w", i+1, r.Err)
		}
		c := r.Geometry
		switch format {
		case "table":
			data = append(data, summaryRow(i+1, c))
		case "ewkt":
			fmt.Fprintln(out, ewkt.Format(c))
		case "wkt":
			fmt.Fprintln(out, ewkt.FormatWKT(c))
		case "geojson":
			b, err := geomconv.MarshalFeature(c, strconv.Itoa(i+1), map[string]interface{}{"srid": c.SRID})
			if err != nil {
				return fmt.Errorf("input %d: %w", i+1, err)
			}
			fmt.Fprintln(out, string(b))
		}
	}

	if format == "table" {
		renderTable(out, []string{"#", "TYPE", "MODEL", "SRID", "POINTS", "LINES", "POLYGONS", "MBR"}, data)
	}
	return nil
}

func summaryRow(n int, c *geometry.Collection) []string {
	return []string{
		strconv.Itoa(n),
		c.DeclaredType.String(),
		c.Model.String(),
		strconv.Itoa(c.SRID),
		strconv.Itoa(len(c.Points)),
		strconv.Itoa(len(c.Linestrings)),
		strconv.Itoa(len(c.Polygons)),
		fmt.Sprintf("%g %g, %g %g", c.MBR.MinX, c.MBR.MinY, c.MBR.MaxX, c.MBR.MaxY),
	}
}

func QueryHandler(cmd *cobra.Command, args []string) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := db.Query(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(result.Columns) == 0 {
		fmt.Fprintln(out, "OK")
		return nil
	}

	data := make([][]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				vals[i] = "NULL"
				continue
			}
			vals[i] = fmt.Sprintf("%v", v)
		}
		data = append(data, vals)
	}
	renderTable(out, result.Columns, data)
	return nil
}

func FunctionsHandler(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")

	var infos []*builtin.FunctionInfo
	if category == "" {
		infos = builtin.GetGlobalRegistry().List()
	} else {
		infos = builtin.GetGlobalRegistry().ListByCategory(builtin.FunctionCategory(category))
	}

	var data [][]string
	for _, info := range infos {
		data = append(data, []string{info.Name, strings.Join(info.Aliases, ", "), string(info.Category), info.Description})
	}
	renderTable(cmd.OutOrStdout(), []string{"NAME", "ALIASES", "CATEGORY", "DESCRIPTION"}, data)
	return nil
}

func ServeMCPHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.MCP.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.MCP.Port = port
	}

	level, err := api.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := api.NewDefaultLoggerWithOutput(level, cmd.ErrOrStderr())

	db, err := api.Open(cmd.Context(), cfg, logger.WithComponent("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	return mcpserver.NewServer(db, &cfg.MCP, logger.WithComponent("mcp")).Start()
}

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
