// Package factserver exposes the fact-checking backend and submission
// history as MCP tools.
package factserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/history"
)

// Deps are the services the tools call. History may be nil, in which case
// the history tools are not registered and checks are not recorded.
type Deps struct {
	API     backend.API
	History history.Store
}

// RegisterTools registers all tools and returns how many were added.
func RegisterTools(server *mcp.Server, d Deps) int {
	registerFactCheck(server, d)
	registerVideoInfo(server, d)
	registerExtractClaims(server, d)
	n := 3
	if d.History != nil {
		registerHistoryList(server, d)
		registerHistoryGet(server, d)
		n += 2
	}
	return n
}
