// Package mcp exposes the summarizer as Model Context Protocol tools.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/trustsum/pkg/engine"
)

// NewMCPServer registers the summarizer tools on a new MCP server.
func NewMCPServer(eng *engine.Engine, version string) *mcp.Server {
	service := NewService(eng)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "trustsum",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "summarize_text",
		Description: "Generate extractive summaries of a text by walking its bigram graph from the most trusted bigram. Optionally validates them against a reference with ROUGE.",
	}, service.SummarizeText)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "rank_bigrams",
		Description: "Rank the word bigrams of a text with TrustRank or Inverse PageRank.",
	}, service.RankBigrams)

	return s
}
