package mcp

import "github.com/mark3labs/mcp-go/mcp"

// generateSiteTool defines the generate_site MCP tool.
var generateSiteTool = mcp.NewTool("generate_site",
	mcp.WithDescription("Generate a new single-page web app from a natural language prompt. Returns the site ID and URL; generation runs in the background."),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("Natural language description of the app to build"),
	),
	mcp.WithString("site_id",
		mcp.Description("Optional site ID (pv_ followed by 8 hex characters); one is minted when omitted"),
	),
)

// siteStatusTool defines the site_status MCP tool.
var siteStatusTool = mcp.NewTool("site_status",
	mcp.WithDescription("Check the generation status of a site. Status is one of processing, success, error or timeout."),
	mcp.WithString("site_id",
		mcp.Required(),
		mcp.Description("The site ID to check"),
	),
)

// listSitesTool defines the list_sites MCP tool.
var listSitesTool = mcp.NewTool("list_sites",
	mcp.WithDescription("List published sites with their names and URLs, newest first."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of sites to return (default 20)"),
	),
)

// getSiteHTMLTool defines the get_site_html MCP tool.
var getSiteHTMLTool = mcp.NewTool("get_site_html",
	mcp.WithDescription("Fetch the generated HTML of a site."),
	mcp.WithString("site_id",
		mcp.Required(),
		mcp.Description("The site ID to fetch"),
	),
)
