package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docsift/internal/config"
	"github.com/dgallion1/docsift/internal/embed"
	"github.com/dgallion1/docsift/internal/outline"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/dgallion1/docsift/internal/recommend"
)

// collectionInput is the on-disk manifest for one collection directory.
type collectionInput struct {
	Documents []struct {
		Filename string `json:"filename"`
		Title    string `json:"title"`
	} `json:"documents"`
	Persona struct {
		Role string `json:"role"`
	} `json:"persona"`
	JobToBeDone struct {
		Task string `json:"task"`
	} `json:"job_to_be_done"`
}

func main() {
	var (
		inputRoot = flag.String("input", "", "root directory of collection directories (each with input.json)")
		outName   = flag.String("out", "output.json", "output filename written into each collection directory")
		topN      = flag.Int("top", 0, "sections to surface per collection (0 = configured default)")
		diversity = flag.Float64("diversity", -1, "diversity weight for section selection (negative = configured default)")
		dedup     = flag.Float64("dedup", 0, "near-duplicate similarity threshold (0 = configured default)")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if *inputRoot == "" {
		fmt.Fprintln(os.Stderr, "usage: docsift -input <dir> [-out output.json] [-top N] [-diversity W] [-dedup T]")
		os.Exit(2)
	}

	cfg := config.Load()
	if *topN > 0 {
		cfg.TopN = *topN
	}
	if *diversity >= 0 {
		cfg.Diversity = *diversity
	}
	if *dedup > 0 {
		cfg.DedupThreshold = *dedup
	}

	embedClient := embed.NewClient(cfg.EmbedURL, cfg.EmbedAPIKey, cfg.EmbedModel)
	defer embedClient.Close()
	embedder := embed.NewCachedEmbedder(embedClient, embed.NewMemoryCache())

	var reranker embed.Reranker
	if cfg.RerankURL != "" {
		rc := embed.NewRerankClient(cfg.RerankURL, cfg.RerankAPIKey)
		defer rc.Close()
		reranker = rc
	}

	ranker := rank.NewRanker(embedder, reranker, log)
	ranker.TopN = cfg.TopN
	ranker.Diversity = cfg.Diversity

	processor := pipeline.NewProcessor(embedder, ranker, recommend.NewLibrary(), cfg.DedupThreshold, log)

	entries, err := os.ReadDir(*inputRoot)
	if err != nil {
		log.Error("cannot read input root", "path", *inputRoot, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	failed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(*inputRoot, e.Name())
		if err := processCollection(ctx, processor, dir, e.Name(), *outName, log); err != nil {
			log.Error("collection failed", "collection", e.Name(), "error", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func processCollection(ctx context.Context, processor *pipeline.Processor, dir, name, outName string, log *slog.Logger) error {
	manifest, err := os.ReadFile(filepath.Join(dir, "input.json"))
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var input collectionInput
	if err := json.Unmarshal(manifest, &input); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	col := pipeline.Collection{
		Name:    name,
		Persona: input.Persona.Role,
		Job:     input.JobToBeDone.Task,
	}
	for _, d := range input.Documents {
		data, err := readDocument(dir, d.Filename)
		if err != nil {
			log.Warn("skipping missing document", "collection", name, "document", d.Filename, "error", err)
			continue
		}
		col.Documents = append(col.Documents, pipeline.Document{Name: d.Filename, Data: data})
	}

	result, err := processor.Process(ctx, col, nil)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, outName), out, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	log.Info("collection processed", "collection", name, "sections", len(result.ExtractedSections))
	return nil
}

// readDocument looks for a manifest entry next to the manifest itself and
// in the conventional per-format subdirectories.
func readDocument(dir, filename string) ([]byte, error) {
	if !outline.IsSupportedExtension(filename) {
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	candidates := []string{
		filepath.Join(dir, filename),
		filepath.Join(dir, "PDFs", filename),
		filepath.Join(dir, "docs", filename),
	}
	var lastErr error
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
