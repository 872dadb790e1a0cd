package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/veridoc/internal/model"
)

// fakeAnalyzer returns a canned result, or an error for documents containing
// the word "bad".
type fakeAnalyzer struct{}

func (a *fakeAnalyzer) AnalyzeText(ctx context.Context, name, text string) (*model.VerifiedAnalysisResult, error) {
	if strings.Contains(text, "bad") {
		return nil, errors.New("analysis failed")
	}
	return &model.VerifiedAnalysisResult{
		Metadata: model.VerificationMetadata{Passes: 2},
	}, nil
}

func writeTempDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp doc: %v", err)
	}
	return path
}

func TestBatchProcessor_ProcessPaths(t *testing.T) {
	dir := t.TempDir()
	good := writeTempDoc(t, dir, "good.txt", "This agreement is made between the parties.")
	bad := writeTempDoc(t, dir, "bad.txt", "bad document")
	missing := filepath.Join(dir, "missing.txt")

	b := NewBatchProcessor(&fakeAnalyzer{}, 2)
	results := b.ProcessPaths(context.Background(), []string{good, bad, missing})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	byPath := make(map[string]*AnalyzeResult)
	for _, r := range results {
		byPath[r.Path] = r
	}

	if byPath[good].Error != nil {
		t.Errorf("good doc should succeed: %v", byPath[good].Error)
	}
	if byPath[good].Result == nil || byPath[good].Result.Metadata.Passes != 2 {
		t.Errorf("good doc missing result")
	}
	if byPath[bad].Error == nil {
		t.Errorf("bad doc should fail")
	}
	if byPath[missing].Error == nil {
		t.Errorf("missing doc should fail")
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	b := NewBatchProcessor(&fakeAnalyzer{}, 2)
	results := b.ProcessPaths(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	list := writeTempDoc(t, dir, "docs.txt", `
# contracts to gate
a.txt
b.txt

a.txt
`)

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	// Comments and blanks skipped, duplicates collapsed.
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d: %v", len(paths), paths)
	}
	if paths[0] != "a.txt" || paths[1] != "b.txt" {
		t.Errorf("unexpected paths: %v", paths)
	}
}

func TestReadPathsFromFile_Missing(t *testing.T) {
	if _, err := ReadPathsFromFile("/nonexistent/list.txt"); err == nil {
		t.Error("expected error for missing list file")
	}
}
