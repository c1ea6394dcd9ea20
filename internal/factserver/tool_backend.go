package factserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_factcheck/internal/toolutil"
)

func registerVideoInfo(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_info",
		Description: "Fetch video metadata (thumbnail URL, title) for a YouTube URL from the fact-checking backend.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input URLInput) (*mcp.CallToolResult, VideoInfoOutput, error) {
		url, err := toolutil.RequireURL(input.URL)
		if err != nil {
			return nil, VideoInfoOutput{}, err
		}
		info, err := d.API.VideoInfo(ctx, url)
		if err != nil {
			return nil, VideoInfoOutput{}, err
		}
		return nil, VideoInfoOutput{URL: url, ThumbnailURL: info.ThumbnailURL, Title: info.Title}, nil
	})
}

func registerExtractClaims(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_claims",
		Description: "Extract the factual claims made in a YouTube video. Returns the claims in order and the transcript when the backend provides it.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input URLInput) (*mcp.CallToolResult, ClaimsOutput, error) {
		url, err := toolutil.RequireURL(input.URL)
		if err != nil {
			return nil, ClaimsOutput{}, err
		}
		res, err := d.API.ExtractClaims(ctx, url)
		if err != nil {
			return nil, ClaimsOutput{}, err
		}
		claims := res.Claims
		if claims == nil {
			claims = []string{}
		}
		return nil, ClaimsOutput{URL: url, Claims: claims, Transcript: res.Transcript}, nil
	})
}
