package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/veridoc/internal/model"
	"github.com/ppiankov/veridoc/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON      string
	outMD        string
	timeout      time.Duration
	userAgent    string
	maxBytes     int64
	noCache      bool
	noFooter     bool
	noRobots     bool
	passes       int
	chunkTokens  int
	overlap      int
	workers      int
	noTargeted   bool
	covThreshold float64
	llmProvider  string
	llmModel     string
	httpProxy    string
	httpsProxy   string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file-or-url>",
	Short: "Analyze a document with multi-pass verification",
	Long: `Analyze runs the full verification pipeline over one document:
- Split the document into overlapping chunks
- Run multiple independent analysis passes
- Compare passes into consensus, flagged, and conflicting findings
- Verify each finding against the source text and detect hallucinations
- Arbitrate conflicts and check category coverage
- Report every finding with a confidence score and presence status

Example:
  veridoc analyze contract.txt
  veridoc analyze contract.txt --passes 5 --json result.json --md report.md
  veridoc analyze https://example.com/terms --llm-provider anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "result.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	analyzeCmd.Flags().IntVar(&passes, "passes", 3, "number of independent analysis passes (2-5)")
	analyzeCmd.Flags().IntVar(&chunkTokens, "chunk-tokens", 3000, "token budget per chunk")
	analyzeCmd.Flags().IntVar(&overlap, "overlap", 200, "character overlap between adjacent chunks")
	analyzeCmd.Flags().IntVar(&workers, "workers", 4, "parallel chunk analyses within a pass")
	analyzeCmd.Flags().BoolVar(&noTargeted, "no-targeted-search", false, "skip targeted searches for missing categories")
	analyzeCmd.Flags().Float64Var(&covThreshold, "coverage-threshold", 50, "coverage percentage below which the report is flagged")
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable completion-reply cache")

	// HTTP flags (URL input)
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "Veridoc/0.1 (+https://github.com/ppiankov/veridoc)", "HTTP User-Agent")
	analyzeCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	analyzeCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks when fetching URLs")
	analyzeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	analyzeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// buildConfig assembles runtime configuration from defaults and flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Passes.Count = passes
	cfg.Chunking.MaxTokens = chunkTokens
	cfg.Chunking.Overlap = overlap
	cfg.Concurrency.ChunkWorkers = workers
	cfg.Coverage.TargetedSearch = !noTargeted
	cfg.Coverage.Threshold = covThreshold
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.RespectRobots = !noRobots
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.LLM.HTTPProxy = httpProxy
	cfg.LLM.HTTPSProxy = httpsProxy

	if err := applyLLMEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLLMEnv fills in provider credentials from the environment.
func applyLLMEnv(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", input)
		fmt.Fprintf(os.Stderr, "Passes: %d\n", cfg.Passes.Count)
		fmt.Fprintf(os.Stderr, "Provider: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	p.SetProgress(func(percent int, stage string) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, stage)
	})

	var result *model.VerifiedAnalysisResult
	name := input
	if isURL(input) {
		result, err = p.AnalyzeURL(ctx, input)
	} else {
		result, err = p.AnalyzeFile(ctx, input)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := p.RenderResult(result, name, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
