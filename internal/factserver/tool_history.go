package factserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_factcheck/internal/history"
	"github.com/anatolykoptev/go_factcheck/internal/toolutil"
)

func registerHistoryList(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fact_check_history",
		Description: "List recent video fact checks, newest first. Each item has the URL, thumbnail, claims and any error shown.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryListInput) (*mcp.CallToolResult, HistoryListOutput, error) {
		recs, err := d.History.List(ctx, input.Limit)
		if err != nil {
			return nil, HistoryListOutput{}, err
		}
		items := make([]toolutil.HistoryItem, 0, len(recs))
		for _, r := range recs {
			items = append(items, toolutil.ToHistoryItem(r))
		}
		return nil, HistoryListOutput{Items: items, Total: len(items)}, nil
	})
}

func registerHistoryGet(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "fact_check_get",
		Description: "Get one past fact check by ID. Get IDs from fact_check_history.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryGetInput) (*mcp.CallToolResult, toolutil.HistoryItem, error) {
		if input.ID <= 0 {
			return nil, toolutil.HistoryItem{}, errors.New("id is required")
		}
		r, err := d.History.Get(ctx, input.ID)
		if errors.Is(err, history.ErrNotFound) {
			return nil, toolutil.HistoryItem{}, fmt.Errorf("no fact check with id %d", input.ID)
		}
		if err != nil {
			return nil, toolutil.HistoryItem{}, err
		}
		return nil, toolutil.ToHistoryItem(r), nil
	})
}
