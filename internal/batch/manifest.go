package batch

import (
	"encoding/json"
	"os"

	"toon-mesh-renderer/internal/adjacency"
)

// Manifest is the summary written next to the rendered images.
type Manifest struct {
	Items    []Result         `json:"items"`
	Rendered int              `json:"rendered"`
	Failed   int              `json:"failed"`
	Topology adjacency.Report `json:"topology"` // totals over rendered items
}

// NewManifest summarises results.
func NewManifest(results []Result) Manifest {
	m := Manifest{Items: results}
	for _, r := range results {
		if !r.Success {
			m.Failed++
			continue
		}
		m.Rendered++
		m.Topology = m.Topology.Add(r.Topology)
	}
	return m
}

// WriteManifest writes manifest.json to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(results), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
