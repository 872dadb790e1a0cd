package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/veridoc/internal/analyze"
	"github.com/ppiankov/veridoc/internal/cache"
	"github.com/ppiankov/veridoc/internal/chunk"
	"github.com/ppiankov/veridoc/internal/compare"
	"github.com/ppiankov/veridoc/internal/coverage"
	"github.com/ppiankov/veridoc/internal/llm"
	"github.com/ppiankov/veridoc/internal/model"
	"github.com/ppiankov/veridoc/internal/resolve"
	"github.com/ppiankov/veridoc/internal/score"
	"github.com/ppiankov/veridoc/internal/verify"
	"github.com/ppiankov/veridoc/internal/worker"
)

// Pipeline orchestrates the complete verified-analysis run: chunk, run N
// independent passes, compare, verify, resolve conflicts, check coverage,
// assemble.
type Pipeline struct {
	fetcher    *Fetcher
	chunker    *chunk.Chunker
	analyzer   *analyze.Analyzer
	comparator *compare.Comparator
	verifier   *verify.Verifier
	resolver   *resolve.Resolver
	scorer     *score.Scorer
	checker    *coverage.Checker
	renderer   *Renderer
	config     *model.Config
	progress   *progressTracker
}

// NewPipeline creates a pipeline from configuration. The completion provider
// is built from cfg.LLM and wrapped with the reply cache and rate limiter
// when enabled.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize completion provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("no completion provider configured (set llm.provider)")
	}

	if cfg.Cache.Enabled {
		limiter := worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		provider = llm.NewCachedProvider(provider, layered, limiter, cfg.Cache.DiskTTL)
	}

	return NewPipelineWithProvider(cfg, provider), nil
}

// NewPipelineWithProvider creates a pipeline around an existing provider.
func NewPipelineWithProvider(cfg *model.Config, provider llm.Provider) *Pipeline {
	return &Pipeline{
		fetcher: NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.RespectRobots, cfg.LLM.HTTPProxy, cfg.LLM.HTTPSProxy, cfg.LLM.NoProxy),
		chunker:    chunk.NewChunker(cfg.Chunking.MaxTokens, cfg.Chunking.Overlap),
		analyzer:   analyze.NewAnalyzer(provider),
		comparator: compare.NewComparator(cfg.Compare),
		verifier:   verify.NewVerifier(provider),
		resolver:   resolve.NewResolver(provider),
		scorer:     score.NewScorer(cfg.Scoring),
		checker:    coverage.NewChecker(cfg.Coverage, provider),
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
		progress:   newProgressTracker(nil),
	}
}

// SetProgress installs a progress callback. Safe to leave unset.
func (p *Pipeline) SetProgress(fn ProgressFunc) {
	p.progress = newProgressTracker(fn)
}

// AnalyzeFile reads a document from disk and analyzes it.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*model.VerifiedAnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return p.AnalyzeText(ctx, filepath.Base(path), string(data))
}

// AnalyzeURL fetches a document over HTTP and analyzes its visible text.
func (p *Pipeline) AnalyzeURL(ctx context.Context, url string) (*model.VerifiedAnalysisResult, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	return p.AnalyzeText(ctx, fetched.Subject, fetched.Text)
}

// AnalyzeText runs the full verification pipeline over document text.
func (p *Pipeline) AnalyzeText(ctx context.Context, name, text string) (*model.VerifiedAnalysisResult, error) {
	start := time.Now()

	numPasses := p.clampPasses()
	chunks := p.chunker.Split(text)

	p.progress.report(progressPassesStart, fmt.Sprintf("analyzing %q in %d chunks, %d passes", name, len(chunks), numPasses))

	// Independent analysis passes.
	perPass := make([]model.AnalysisResult, numPasses)
	timestamps := make([]time.Time, 0, numPasses)
	var chunkErrs []*ChunkAnalysisError
	successes := 0

	for pass := 1; pass <= numPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		merged, ok, errs := p.runPass(ctx, chunks, pass)
		perPass[pass-1] = merged
		successes += ok
		chunkErrs = append(chunkErrs, errs...)
		timestamps = append(timestamps, time.Now().UTC())

		p.progress.report(interpolate(progressPassesStart, progressPassesEnd, pass, numPasses),
			fmt.Sprintf("pass %d/%d complete", pass, numPasses))
	}

	for _, ce := range chunkErrs {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", ce)
	}

	if successes == 0 {
		return nil, &TotalAnalysisFailure{Passes: numPasses, Chunks: len(chunks), Errors: chunkErrs}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Cross-pass comparison.
	comparison := p.comparator.Compare(perPass)
	p.progress.report(progressCompare, fmt.Sprintf("compared passes: %d consensus, %d flagged, %d conflicts",
		len(comparison.Consensus), len(comparison.Flagged), len(comparison.Conflicts)))

	// Verification of agreed and flagged findings against the source.
	verified := p.verifyGroups(ctx, comparison, numPasses, len(chunks), text)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Conflict resolution.
	p.progress.report(progressResolveStart, fmt.Sprintf("resolving %d conflicts", len(comparison.Conflicts)))
	resolutions := p.resolver.ResolveAll(ctx, comparison.Conflicts, text)
	resolvedCount := 0
	for _, res := range resolutions {
		if res.Resolved && res.Winner != nil {
			verified = append(verified, *res.Winner)
			resolvedCount++
		}
	}
	p.progress.report(progressResolveEnd, "conflicts resolved")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Coverage against the expected-category taxonomy.
	p.progress.report(progressCoverageStart, "checking coverage")
	coverageReport := p.checker.CheckCoverage(ctx, verified, text)
	p.progress.report(progressCoverageEnd, fmt.Sprintf("coverage %.1f%%", coverageReport.CoveragePercentage))

	result := p.assemble(perPass, verified, resolutions, coverageReport, assembleMeta{
		passes:         numPasses,
		timestamps:     timestamps,
		conflictsFound: len(comparison.Conflicts),
		resolved:       resolvedCount,
		chunks:         chunks,
		elapsed:        time.Since(start),
	})

	p.progress.report(progressDone, "complete")
	return result, nil
}

// clampPasses bounds the configured pass count to the configured limits.
func (p *Pipeline) clampPasses() int {
	cfg := p.config.Passes
	min, max := cfg.Min, cfg.Max
	if min < 2 {
		min = 2
	}
	if max < min {
		max = 5
	}

	count := cfg.Count
	if count < min {
		fmt.Fprintf(os.Stderr, "Warning: pass count %d below minimum, using %d\n", count, min)
		return min
	}
	if count > max {
		fmt.Fprintf(os.Stderr, "Warning: pass count %d above maximum, using %d\n", count, max)
		return max
	}
	return count
}

// chunkJob analyzes one chunk within one pass on the worker pool.
type chunkJob struct {
	ctx      context.Context
	analyzer *analyze.Analyzer
	chunk    model.DocumentChunk
	pass     int
}

type chunkJobResult struct {
	index  int
	result model.AnalysisResult
	err    error
}

func (r *chunkJobResult) GetError() error { return r.err }

func (j *chunkJob) Execute(_ context.Context) worker.Result {
	result, err := j.analyzer.AnalyzeChunk(j.ctx, j.chunk, j.pass)
	return &chunkJobResult{index: j.chunk.Index, result: result, err: err}
}

// runPass analyzes every chunk concurrently and merges the survivors. Failed
// chunks contribute an error and an empty slot; the pass itself never fails.
func (p *Pipeline) runPass(ctx context.Context, chunks []model.DocumentChunk, pass int) (model.AnalysisResult, int, []*ChunkAnalysisError) {
	pool := worker.NewPool(p.config.Concurrency.ChunkWorkers)
	pool.Start()

	// Job count scales with document size, so drain results while submitting.
	jobs := make([]worker.Job, 0, len(chunks))
	for _, c := range chunks {
		jobs = append(jobs, &chunkJob{ctx: ctx, analyzer: p.analyzer, chunk: c, pass: pass})
	}

	perChunk := make([]model.AnalysisResult, len(chunks))
	var errs []*ChunkAnalysisError
	ok := 0

	for _, res := range pool.Process(jobs) {
		cr := res.(*chunkJobResult)
		if cr.err != nil {
			errs = append(errs, &ChunkAnalysisError{Pass: pass, Chunk: cr.index, Err: cr.err})
			continue
		}
		perChunk[cr.index] = cr.result
		ok++
	}

	return p.chunker.Merge(perChunk, chunks), ok, errs
}

// verifyGroups verifies consensus and flagged groups against the source text
// and scores each into a VerifiedFinding.
func (p *Pipeline) verifyGroups(ctx context.Context, comparison compare.Comparison, numPasses, totalChunks int, text string) []model.VerifiedFinding {
	groups := make([]compare.Group, 0, len(comparison.Consensus)+len(comparison.Flagged))
	groups = append(groups, comparison.Consensus...)
	groups = append(groups, comparison.Flagged...)

	verified := make([]model.VerifiedFinding, 0, len(groups))
	for i, g := range groups {
		if ctx.Err() != nil {
			break
		}
		fv := p.verifier.VerifyFinding(ctx, g.Finding, text)
		hc := p.verifier.DetectHallucination(ctx, g.Finding, text)

		confidence := p.scorer.Confidence(len(g.Passes), numPasses, fv.IsVerified, hc.IsHallucinated)
		confidence = p.scorer.AdjustForChunkAgreement(confidence, len(g.Chunks), totalChunks)

		status := p.scorer.PresenceStatus(confidence, len(g.Passes), numPasses, false)

		verified = append(verified, model.VerifiedFinding{
			Finding:           g.Finding,
			Confidence:        confidence,
			Status:            status,
			PassesFound:       len(g.Passes),
			TotalPasses:       numPasses,
			Verified:          fv.IsVerified,
			SupportingExcerpt: fv.SupportingExcerpt,
			Hallucinated:      hc.IsHallucinated,
			SourceChunks:      g.Chunks,
		})

		p.progress.report(interpolate(progressVerifyStart, progressVerifyEnd, i+1, len(groups)),
			fmt.Sprintf("verified %d/%d findings", i+1, len(groups)))
	}

	return verified
}

type assembleMeta struct {
	passes         int
	timestamps     []time.Time
	conflictsFound int
	resolved       int
	chunks         []model.DocumentChunk
	elapsed        time.Duration
}

// assemble builds the final immutable result artifact.
func (p *Pipeline) assemble(perPass []model.AnalysisResult, verified []model.VerifiedFinding,
	resolutions []model.ConflictResolution, coverageReport model.CoverageReport, meta assembleMeta) *model.VerifiedAnalysisResult {

	result := &model.VerifiedAnalysisResult{
		BaseResult: perPass[0],
		Conflicts:  resolutions,
		Coverage:   coverageReport,
	}

	rawCount := 0
	for _, pr := range perPass {
		rawCount += len(pr.All())
	}

	hallucinations := 0
	confidenceSum := 0.0
	for _, vf := range verified {
		if vf.Hallucinated {
			hallucinations++
		}
		confidenceSum += vf.Confidence

		switch vf.Finding.Type {
		case model.FindingTypeClause:
			result.VerifiedClauses = append(result.VerifiedClauses, vf)
		case model.FindingTypeRisk:
			result.VerifiedRisks = append(result.VerifiedRisks, vf)
		case model.FindingTypeCompliance:
			result.VerifiedComplianceIssues = append(result.VerifiedComplianceIssues, vf)
		case model.FindingTypeRedlining:
			result.VerifiedRedlining = append(result.VerifiedRedlining, vf)
		}
	}

	avgConfidence := 0.0
	if len(verified) > 0 {
		avgConfidence = confidenceSum / float64(len(verified))
	}

	estTokens := 0
	for _, c := range meta.chunks {
		estTokens += c.EstTokens
	}

	result.Metadata = model.VerificationMetadata{
		Passes:                     meta.passes,
		PassTimestamps:             meta.timestamps,
		FindingsBeforeVerification: rawCount,
		FindingsAfterVerification:  len(verified),
		HallucinationsDetected:     hallucinations,
		ConflictsFound:             meta.conflictsFound,
		ConflictsResolved:          meta.resolved,
		AverageConfidence:          avgConfidence,
		Elapsed:                    meta.elapsed,
		Chunks:                     len(meta.chunks),
		EstTokens:                  estTokens,
	}

	return result
}

// RenderResult writes the result to the requested outputs and prints a
// summary.
func (p *Pipeline) RenderResult(result *model.VerifiedAnalysisResult, name, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, name, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(result, name)
	return nil
}
