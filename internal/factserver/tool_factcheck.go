package factserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_factcheck/internal/factcheck"
	"github.com/anatolykoptev/go_factcheck/internal/history"
	"github.com/anatolykoptev/go_factcheck/internal/toolutil"
)

func registerFactCheck(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_fact_check",
		Description: "Submit a YouTube video URL: fetches the video thumbnail, then the factual claims extracted from its content. Returns the thumbnail URL, the claims in order, and a markdown rendering. Backend failures are reported in the error field, not as tool errors.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input URLInput) (*mcp.CallToolResult, FactCheckOutput, error) {
		url, err := toolutil.RequireURL(input.URL)
		if err != nil {
			return nil, FactCheckOutput{}, err
		}

		var rec *idRecorder
		if d.History != nil {
			rec = &idRecorder{store: d.History}
		}
		st, err := toolutil.CheckVideo(ctx, d.API, recorderOrNil(rec), url)
		if err != nil {
			return nil, FactCheckOutput{}, fmt.Errorf("fact check: %w", err)
		}

		out := FactCheckOutput{
			URL:          st.URL,
			ThumbnailURL: st.Thumbnail(),
			Claims:       st.Claims,
			Error:        st.ErrorText(),
			Markdown:     factcheck.Render(st),
		}
		if rec != nil {
			out.HistoryID = rec.id
		}
		return nil, out, nil
	})
}

// idRecorder remembers the id of the record it saved.
type idRecorder struct {
	store history.Recorder
	id    int64
}

func (r *idRecorder) Save(ctx context.Context, rec history.Record) (int64, error) {
	id, err := r.store.Save(ctx, rec)
	if err == nil {
		r.id = id
	}
	return id, err
}

func recorderOrNil(r *idRecorder) history.Recorder {
	if r == nil {
		return nil
	}
	return r
}
