package server

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Sayiza/orapgsync-sub005/internal/sqltransform"
)

// translateResult is the §6 response shape: translation failure is a
// business outcome carried in the payload, never a protocol error, so
// every call returns mcp.NewToolResultText regardless of success.
type translateResult struct {
	Success      bool   `json:"success"`
	OracleSQL    string `json:"oracleSql"`
	PostgresSQL  string `json:"postgresSql,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func (s *Server) toolTranslateSQL() (mcp.Tool, mcpserver.ToolHandlerFunc) {
	return mcp.Tool{
		Name:        "translate_sql",
		Description: "Translates a single Oracle SQL statement into its PostgreSQL equivalent.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"oracle_sql": map[string]interface{}{
					"type":        "string",
					"description": "The Oracle SQL statement to translate",
				},
				"schema": map[string]interface{}{
					"type":        "string",
					"description": "Schema to qualify unqualified table references with (defaults to the server's configured schema)",
				},
			},
			Required: []string{"oracle_sql"},
		},
	}, s.handleTranslateSQL
}

func (s *Server) handleTranslateSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := getArgs(request.Params.Arguments)
	if !ok {
		return mcp.NewToolResultError(ErrInvalidArguments.Error()), nil
	}

	oracleSQL, ok := getStringArg(args, "oracle_sql")
	if !ok || oracleSQL == "" {
		return mcp.NewToolResultError(ErrOracleSQLRequired.Error()), nil
	}

	schema := s.schema
	if sc, ok := getStringArg(args, "schema"); ok && sc != "" {
		schema = sc
	}

	return translateResponse(s.doTranslate(oracleSQL, schema))
}

// doTranslate holds the business logic of translate_sql, separated from
// the MCP argument/response plumbing so it can be exercised directly.
func (s *Server) doTranslate(oracleSQL, schema string) translateResult {
	if err := NewStatementValidator(oracleSQL).Validate(); err != nil {
		return translateResult{OracleSQL: oracleSQL, ErrorMessage: err.Error()}
	}

	postgresSQL, err := sqltransform.TranslateSQL(oracleSQL, schema, s.snapshot)
	if err != nil {
		s.log.Infow("translate_sql failed", "error", err)
		return translateResult{OracleSQL: oracleSQL, ErrorMessage: err.Error()}
	}

	return translateResult{Success: true, OracleSQL: oracleSQL, PostgresSQL: postgresSQL}
}

func translateResponse(r translateResult) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}
