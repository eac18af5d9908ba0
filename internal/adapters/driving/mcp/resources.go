package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriScheme = "askdocs://"

	// IndexResourceURI exposes the published index snapshot's statistics.
	IndexResourceURI = uriScheme + "index"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         IndexResourceURI,
		Name:        "index",
		Description: "Status of the document index: readiness, document and chunk counts, embedding model",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

type indexInfo struct {
	Ready      bool   `json:"ready"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Documents  int    `json:"documents"`
	Chunks     int    `json:"chunks"`
	Skipped    int    `json:"skipped"`
	Dimensions int    `json:"dimensions"`
	Model      string `json:"model,omitempty"`
	BuiltAt    string `json:"built_at,omitempty"`
	Duration   string `json:"build_duration,omitempty"`
}

// handleIndexResource returns the statistics of the published snapshot.
func (s *Server) handleIndexResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	var info indexInfo
	if s.ports.Index != nil {
		stats := s.ports.Index.Stats()
		info = indexInfo{
			Ready:      stats.Ready,
			SnapshotID: stats.SnapshotID,
			Documents:  stats.Documents,
			Chunks:     stats.Chunks,
			Skipped:    stats.Skipped,
			Dimensions: stats.Dimensions,
			Model:      stats.Model,
		}
		if !stats.BuiltAt.IsZero() {
			info.BuiltAt = stats.BuiltAt.UTC().Format(time.RFC3339)
			info.Duration = stats.Duration.String()
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling index stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
