package codec

import (
	"fmt"
	"io"
	"time"

	"campusnet/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlFragment represents the YAML structure for graph data
type yamlFragment struct {
	Nodes     []yamlNode     `yaml:"nodes"`
	Edges     []yamlEdge     `yaml:"edges"`
	MST       []yamlEdge     `yaml:"mst,omitempty"`
	TotalCost *domain.Weight `yaml:"total_cost,omitempty"`
	Timestamp *time.Time     `yaml:"timestamp,omitempty"`
}

type yamlNode struct {
	ID   string   `yaml:"id"`
	Name string   `yaml:"name"`
	Lat  *float64 `yaml:"lat,omitempty"`
	Lng  *float64 `yaml:"lng,omitempty"`
}

type yamlEdge struct {
	ID     string         `yaml:"id,omitempty"`
	Source string         `yaml:"source"`
	Target string         `yaml:"target"`
	Weight *domain.Weight `yaml:"weight"`
}

func (ye yamlEdge) toDomain() (domain.Edge, error) {
	if ye.Weight == nil {
		return domain.Edge{}, fmt.Errorf("edge %s-%s: %w: missing", ye.Source, ye.Target, domain.ErrInvalidWeight)
	}
	return domain.Edge{
		ID:     ye.ID,
		Source: ye.Source,
		Target: ye.Target,
		Weight: *ye.Weight,
	}, nil
}

func edgeToYAML(edge domain.Edge) yamlEdge {
	w := edge.Weight
	return yamlEdge{
		ID:     edge.ID,
		Source: edge.Source,
		Target: edge.Target,
		Weight: &w,
	}
}

// Parse imports graph data from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.GraphFragment, error) {
	var yf yamlFragment
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w YAML: %w", ErrParse, err)
	}

	fragment := domain.NewGraphFragment()

	for _, yn := range yf.Nodes {
		fragment.AddNode(domain.Node{
			ID:   yn.ID,
			Name: yn.Name,
			Lat:  yn.Lat,
			Lng:  yn.Lng,
		})
	}

	for _, ye := range yf.Edges {
		edge, err := ye.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w YAML: %w", ErrParse, err)
		}
		fragment.AddEdge(edge)
	}
	fillEdgeIDs(fragment)

	return fragment, nil
}

// Export exports graph data to YAML
func (c *YAMLCodec) Export(fragment *domain.GraphFragment, w io.Writer) error {
	yf := yamlFragment{
		Nodes:     make([]yamlNode, 0, len(fragment.Nodes)),
		Edges:     make([]yamlEdge, 0, len(fragment.Edges)),
		TotalCost: fragment.TotalCost,
		Timestamp: fragment.Timestamp,
	}

	for _, node := range fragment.Nodes {
		yf.Nodes = append(yf.Nodes, yamlNode{
			ID:   node.ID,
			Name: node.Name,
			Lat:  node.Lat,
			Lng:  node.Lng,
		})
	}

	for _, edge := range fragment.Edges {
		yf.Edges = append(yf.Edges, edgeToYAML(edge))
	}

	for _, edge := range fragment.MST {
		yf.MST = append(yf.MST, edgeToYAML(edge))
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yf); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
