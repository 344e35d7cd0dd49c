package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/trustsum/pkg/dataset"
	"github.com/sanonone/trustsum/pkg/engine"
)

const defaultLimit = 10

// ErrUnknownAlgorithm is returned by RankBigrams for an unsupported algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

type Service struct {
	engine *engine.Engine
}

func NewService(eng *engine.Engine) *Service {
	return &Service{engine: eng}
}

// withOverrides applies the non-zero tool arguments to the engine parameters.
func (s *Service) withOverrides(args SummarizeTextArgs) (*engine.Engine, error) {
	p := s.engine.Options().Params
	if args.MaxSummarizeLength > 0 {
		p.MaxSummarizeLength = args.MaxSummarizeLength
	}
	if args.BiasAmount > 0 {
		p.TrustRankBiasAmount = args.BiasAmount
	}
	if args.FilterThreshold > 0 {
		p.TrustRankFilterThreshold = args.FilterThreshold
	}
	if p == s.engine.Options().Params {
		return s.engine, nil
	}
	return s.engine.WithParams(p)
}

// --- Tool Handlers ---

func (s *Service) SummarizeText(ctx context.Context, req *mcp.CallToolRequest, args SummarizeTextArgs) (*mcp.CallToolResult, SummarizeTextResult, error) {
	if args.Text == "" {
		return nil, SummarizeTextResult{}, errors.New("text is required")
	}
	eng, err := s.withOverrides(args)
	if err != nil {
		return nil, SummarizeTextResult{}, err
	}

	res, err := eng.Summarize(ctx, &dataset.Document{
		Name:      "mcp",
		Texts:     []string{args.Text},
		Reference: args.Reference,
	})
	if err != nil {
		return nil, SummarizeTextResult{}, err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	out := SummarizeTextResult{
		Root:      res.Root,
		Summaries: res.Summaries[:min(limit, len(res.Summaries))],
		Total:     len(res.Summaries),
	}
	if best, ok := res.Best(); ok {
		out.Best = &best
	}
	return nil, out, nil
}

func (s *Service) RankBigrams(ctx context.Context, req *mcp.CallToolRequest, args RankBigramsArgs) (*mcp.CallToolResult, RankBigramsResult, error) {
	if args.Text == "" {
		return nil, RankBigramsResult{}, errors.New("text is required")
	}
	switch args.Algorithm {
	case "":
		args.Algorithm = "trustrank"
	case "trustrank", "inverse_pagerank":
	default:
		return nil, RankBigramsResult{}, fmt.Errorf("%w %q", ErrUnknownAlgorithm, args.Algorithm)
	}

	ranking, err := s.engine.Rank(ctx, &dataset.Document{Name: "mcp", Texts: []string{args.Text}})
	if err != nil {
		return nil, RankBigramsResult{}, err
	}
	scores := ranking.Trust
	if args.Algorithm == "inverse_pagerank" {
		scores = ranking.Inverse
	}

	top := args.Top
	if top <= 0 {
		top = defaultLimit
	}
	return nil, RankBigramsResult{
		Algorithm:  args.Algorithm,
		Nodes:      ranking.Graph.NumNodes(),
		Edges:      ranking.Graph.NumEdges(),
		Seeds:      ranking.Seeds,
		Ranking:    scores.Top(top),
		Iterations: scores.Iterations,
		Converged:  scores.Converged,
	}, nil
}
