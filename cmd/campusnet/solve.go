package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"campusnet/internal/codec"
	"campusnet/internal/domain"
	"campusnet/internal/mst"
	"campusnet/internal/service"
)

var (
	solveFormat           string
	solveRequireConnected bool
)

var solveCmd = &cobra.Command{
	Use:   "solve PATTERN...",
	Short: "Compute the minimum spanning tree of graph files",
	Long: `Solve reads every JSON or YAML graph file matching the given patterns
and prints its minimum spanning tree. Patterns support ** for any number of
directories, e.g. "campuses/**/*.yaml".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := solveOptions{format: solveFormat, requireConnected: solveRequireConnected}
		return solveFiles(cmd.Context(), cmd.OutOrStdout(), args, opts)
	},
}

func init() {
	solveCmd.Flags().StringVarP(&solveFormat, "format", "f", "text", "Output format: text, json or yaml")
	solveCmd.Flags().BoolVar(&solveRequireConnected, "require-connected", false, "Fail when a graph is not fully connected")
}

type solveOptions struct {
	format           string
	requireConnected bool
}

// solveResult is one file's answer in json and yaml output
type solveResult struct {
	File                string        `json:"file" yaml:"file"`
	MinimumSpanningTree []domain.Edge `json:"minimumSpanningTree" yaml:"minimum_spanning_tree"`
	TotalCost           domain.Weight `json:"totalCost" yaml:"total_cost"`
	Spanning            bool          `json:"spanning" yaml:"spanning"`
	Components          int           `json:"components" yaml:"components"`
}

func newSolveResult(file string, resp *service.OptimizeResponse) solveResult {
	return solveResult{
		File:                file,
		MinimumSpanningTree: resp.MinimumSpanningTree,
		TotalCost:           resp.TotalCost,
		Spanning:            resp.Spanning,
		Components:          resp.Components,
	}
}

// solveFiles solves every file matched by patterns and writes one result per
// file. A failing file does not stop the others; all failures are returned.
func solveFiles(ctx context.Context, w io.Writer, patterns []string, opts solveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch opts.format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q, must be text, json or yaml", opts.format)
	}

	files, err := expandPatterns(patterns)
	if err != nil {
		return err
	}

	var mstOpts []mst.Option
	if opts.requireConnected {
		mstOpts = append(mstOpts, mst.WithRequireConnected())
	}
	optimizer := service.NewOptimizer(nil, "cli", mstOpts...)

	var errs *multierror.Error
	for _, file := range files {
		resp, err := solveFile(ctx, optimizer, file)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", file, err))
			continue
		}
		if err := writeResult(w, opts.format, newSolveResult(file, resp)); err != nil {
			return err
		}
	}
	return errs.ErrorOrNil()
}

// expandPatterns returns the sorted, de-duplicated graph files matching the
// patterns. A pattern that matches nothing is an error.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}

		found := 0
		for _, match := range matches {
			if _, err := codec.ForPath(match); err != nil {
				continue
			}
			found++
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
		if found == 0 {
			return nil, fmt.Errorf("no .json, .yaml or .yml files match %q", pattern)
		}
	}

	sort.Strings(files)
	return files, nil
}

func solveFile(ctx context.Context, optimizer *service.Optimizer, path string) (*service.OptimizeResponse, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fragment, err := c.Parse(f)
	if err != nil {
		return nil, err
	}
	return optimizer.Optimize(ctx, service.OptimizeRequest{Nodes: fragment.Nodes, Edges: fragment.Edges})
}

func writeResult(w io.Writer, format string, res solveResult) error {
	switch format {
	case "json":
		return json.NewEncoder(w).Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	}

	shape := "spanning tree"
	if !res.Spanning {
		shape = fmt.Sprintf("spanning forest, %d components", res.Components)
	}
	fmt.Fprintf(w, "%s: total cost %d (%d edges, %s)\n",
		filepath.ToSlash(res.File), res.TotalCost, len(res.MinimumSpanningTree), shape)
	for _, e := range res.MinimumSpanningTree {
		fmt.Fprintf(w, "  %-12s %s -> %s  %d\n", e.ID, e.Source, e.Target, e.Weight)
	}
	return nil
}
