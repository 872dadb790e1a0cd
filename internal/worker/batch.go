package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veridoc/internal/model"
)

// Analyzer defines the interface for running the verification gate over one
// document. Implemented by pipeline.Pipeline; declared here so the worker
// package stays free of pipeline imports.
type Analyzer interface {
	AnalyzeText(ctx context.Context, name, text string) (*model.VerifiedAnalysisResult, error)
}

// AnalyzeJob runs the gate over one document file
type AnalyzeJob struct {
	Path     string
	Analyzer Analyzer
}

// Execute executes the analyze job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &AnalyzeResult{
			Path:  j.Path,
			Error: fmt.Errorf("read document: %w", err),
		}
	}

	result, err := j.Analyzer.AnalyzeText(ctx, j.Path, string(data))
	if err != nil {
		return &AnalyzeResult{
			Path:  j.Path,
			Error: err,
		}
	}
	return &AnalyzeResult{
		Path:   j.Path,
		Result: result,
	}
}

// AnalyzeResult represents the result of an analyze job
type AnalyzeResult struct {
	Path   string
	Result *model.VerifiedAnalysisResult
	Error  error
}

// GetError returns the error from the analyze result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple documents concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessPaths analyzes multiple document files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	jobs := make([]Job, 0, len(paths))
	for _, path := range paths {
		jobs = append(jobs, &AnalyzeJob{
			Path:     path,
			Analyzer: b.analyzer,
		})
	}

	results := pool.Process(jobs)

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}

	return analyzeResults
}

// ProcessFile reads document paths from a list file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*AnalyzeResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads document paths from a file (one per line)
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Deduplicate paths
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
