package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/foomo/mdclip/compose"
	"github.com/foomo/mdclip/locate"
	"github.com/foomo/mdclip/preview"
	"github.com/foomo/mdclip/service"
	"github.com/foomo/mdclip/service/vo"
)

const Version = "0.1.0"

type LocateRequest struct {
	HTML      string `json:"html"`      // The loaded document
	URL       string `json:"url"`       // The page address
	Selection string `json:"selection"` // Optional CSS selector whose first match is treated as selected
}

type ComposeRequest struct {
	Snapshot     vo.PageSnapshot `json:"snapshot"`
	UseSelection bool            `json:"useSelection"`
	IsExcerpt    *bool           `json:"isExcerpt"` // Defaults to UseSelection
}

type ComposeResponse struct {
	Markdown string `json:"markdown"`
}

type ClipRequest struct {
	LocateRequest
	FullPage bool     `json:"fullPage"`
	Tags     []string `json:"tags"`
	Save     bool     `json:"save"`
}

type ClipResponse struct {
	Clip *vo.Clip `json:"clip"`
	Path string   `json:"path,omitempty"` // Where the document was saved
}

type PreviewRequest struct {
	Markdown string `json:"markdown"`
}

type PreviewResponse struct {
	HTML string `json:"html"`
}

type TagsRequest struct {
	Add []string `json:"add"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

// NewServer creates a new MCP server exposing the clipping tools
func NewServer(serviceInstance service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Markdown Clipper MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	locateTool := mcp.NewTool("locate",
		mcp.WithDescription("Find the main article of an HTML document and return it sanitized together with title, author, date and selection"),
		mcp.WithString("html",
			mcp.Required(),
			mcp.Description("The full HTML of the loaded page"),
		),
		mcp.WithString("url",
			mcp.Description("The address of the page, used for the source line and to resolve image links"),
		),
		mcp.WithString("selection",
			mcp.Description("CSS selector of the element whose contents count as the user's selection (e.g., '#quote', 'article p')"),
		),
	)
	s.AddTool(locateTool, mcp.NewTypedToolHandler(locateHandler))

	composeTool := mcp.NewTool("compose",
		mcp.WithDescription("Convert a located page snapshot to a Markdown document"),
		mcp.WithObject("snapshot",
			mcp.Required(),
			mcp.Description("The snapshot returned by the locate tool"),
		),
		mcp.WithBoolean("useSelection",
			mcp.Description("Convert the selection instead of the article"),
		),
		mcp.WithBoolean("isExcerpt",
			mcp.Description("Mark the title as a selected excerpt, defaults to useSelection"),
		),
	)
	s.AddTool(composeTool, mcp.NewTypedToolHandler(composeHandler))

	previewTool := mcp.NewTool("preview",
		mcp.WithDescription("Render Markdown to HTML"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("The Markdown to render"),
		),
	)
	s.AddTool(previewTool, mcp.NewTypedToolHandler(previewHandler))

	// session tools need the service
	if serviceInstance != nil {
		clipTool := mcp.NewTool("clip",
			mcp.WithDescription("Locate and compose a page in one step, optionally saving it with tags"),
			mcp.WithString("html",
				mcp.Required(),
				mcp.Description("The full HTML of the loaded page"),
			),
			mcp.WithString("url",
				mcp.Description("The address of the page"),
			),
			mcp.WithString("selection",
				mcp.Description("CSS selector of the element whose contents count as the user's selection"),
			),
			mcp.WithBoolean("fullPage",
				mcp.Description("Keep the full page document current even with a selection"),
			),
			mcp.WithArray("tags",
				mcp.Description("Tags written to the frontmatter when saving"),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithBoolean("save",
				mcp.Description("Save the current document"),
			),
		)
		s.AddTool(clipTool, mcp.NewTypedToolHandler(getClipHandler(serviceInstance)))

		tagsTool := mcp.NewTool("tags",
			mcp.WithDescription("List the saved tags, optionally adding new ones"),
			mcp.WithArray("add",
				mcp.Description("Tags to remember"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		)
		s.AddTool(tagsTool, mcp.NewTypedToolHandler(getTagsHandler(serviceInstance)))
	}

	return s
}

func parsePage(args LocateRequest) (*locate.Page, error) {
	return locate.ParsePage(strings.NewReader(args.HTML), args.URL, args.Selection)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

func locateHandler(ctx context.Context, request mcp.CallToolRequest, args LocateRequest) (*mcp.CallToolResult, error) {
	if args.HTML == "" {
		return mcp.NewToolResultError("html is required"), nil
	}
	page, err := parsePage(args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse page: %v", err)), nil
	}
	return jsonResult(locate.Locate(page, locate.DefaultOptions()))
}

func composeHandler(ctx context.Context, request mcp.CallToolRequest, args ComposeRequest) (*mcp.CallToolResult, error) {
	if args.UseSelection && !args.Snapshot.HasSelection() {
		return mcp.NewToolResultError("snapshot has no selection"), nil
	}
	isExcerpt := args.UseSelection
	if args.IsExcerpt != nil {
		isExcerpt = *args.IsExcerpt
	}
	markdown, err := compose.Compose(args.Snapshot, args.UseSelection, isExcerpt)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compose: %v", err)), nil
	}
	return jsonResult(ComposeResponse{Markdown: string(markdown)})
}

func previewHandler(ctx context.Context, request mcp.CallToolRequest, args PreviewRequest) (*mcp.CallToolResult, error) {
	if args.Markdown == "" {
		return mcp.NewToolResultError("markdown is required"), nil
	}
	out, err := preview.Render(args.Markdown)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render: %v", err)), nil
	}
	return jsonResult(PreviewResponse{HTML: out})
}

func getClipHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args ClipRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args ClipRequest) (*mcp.CallToolResult, error) {
		if args.HTML == "" {
			return mcp.NewToolResultError("html is required"), nil
		}
		page, err := parsePage(args.LocateRequest)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse page: %v", err)), nil
		}
		clip, err := serviceInstance.Clip(ctx, page, service.ClipOptions{FullPage: args.FullPage})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to clip page: %v", err)), nil
		}
		response := ClipResponse{Clip: clip}
		if args.Save {
			path, err := serviceInstance.SaveSync(ctx, service.SaveOptions{
				Markdown: clip.Current,
				Title:    clip.Snapshot.Title,
				Tags:     args.Tags,
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to save: %v", err)), nil
			}
			response.Path = path
		}
		return jsonResult(response)
	}
}

func getTagsHandler(serviceInstance service.Service) func(ctx context.Context, request mcp.CallToolRequest, args TagsRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args TagsRequest) (*mcp.CallToolResult, error) {
		all, err := serviceInstance.AddTags(ctx, args.Add...)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update tags: %v", err)), nil
		}
		return jsonResult(TagsResponse{Tags: all})
	}
}
