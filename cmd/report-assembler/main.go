// Command report-assembler merges pre-rendered claim reports with their
// attachment sources, per a JSON manifest. Independent jobs run in
// parallel; within one job attachments are always merged sequentially to
// keep page order deterministic.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/claimworks/reportflow/internal/assembly"
	"github.com/claimworks/reportflow/internal/fetch"
	"github.com/claimworks/reportflow/internal/gcp"
	"github.com/claimworks/reportflow/internal/models"
	"github.com/claimworks/reportflow/internal/report"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	manifestPath := flag.String("manifest", "", "path to the assembly manifest (JSON)")
	outDir := flag.String("out", "out", "directory for merged PDFs")
	flag.Parse()

	if *manifestPath == "" {
		slog.Error("The -manifest flag must be set.")
		os.Exit(1)
	}

	if err := run(context.Background(), *manifestPath, *outDir); err != nil {
		slog.Error("Assembly batch failed.", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, manifestPath, outDir string) error {
	manifestData, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	var manifest models.Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}
	if len(manifest.Jobs) == 0 {
		return fmt.Errorf("manifest contains no jobs")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// The storage client is optional: without it gs:// references are
	// skipped per-attachment rather than failing the batch.
	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		slog.Warn("Proceeding without Cloud Storage; gs:// attachments will be skipped.", "error", err)
		storageClient = nil
	}
	fetcher := fetch.NewClient(storageClient, fetch.Config{})
	asm := assembly.NewAssembler(fetcher)

	concurrency, err := strconv.Atoi(gcp.GetEnv("ASSEMBLER_CONCURRENCY", "4"))
	if err != nil || concurrency < 1 {
		concurrency = 4
	}

	results := make([]models.AssemblyResult, len(manifest.Jobs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, job := range manifest.Jobs {
		eg.Go(func() error {
			result, err := assembleJob(gctx, asm, fetcher, job, outDir)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.Prefix, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func assembleJob(ctx context.Context, asm *assembly.Assembler, fetcher *fetch.Client, job models.AssemblyJob, outDir string) (models.AssemblyResult, error) {
	logCtx := slog.With("prefix", job.Prefix, "phase", job.Phase)
	logCtx.Info("Assembling report.")

	sources, err := resolveSources(ctx, fetcher, job.Sources, logCtx)
	if err != nil {
		return models.AssemblyResult{}, err
	}

	var out *models.GeneratedFile
	var mergeReport *models.MergeReport

	if job.Kind != "" {
		kind, err := report.ParseKind(job.Kind)
		if err != nil {
			return models.AssemblyResult{}, err
		}
		out, err = report.Generate(ctx, asm, kind, report.Request{
			Prefix:    job.Prefix,
			ClaimType: job.ClaimType,
			Phase:     job.Phase,
			Sources:   sources,
		})
		if err != nil {
			return models.AssemblyResult{}, err
		}
	} else {
		reportBlob, err := os.ReadFile(job.ReportPath)
		if err != nil {
			return models.AssemblyResult{}, fmt.Errorf("reading report %s: %w", job.ReportPath, err)
		}
		merged, mr, err := asm.GenerateFinalPDF(ctx, reportBlob, sources)
		if err != nil {
			return models.AssemblyResult{}, err
		}
		mergeReport = mr
		name := assembly.BuildReportFilename(job.Prefix, job.ClaimType, job.Phase, asm.Now())
		out = asm.WrapFile(name, merged)
	}

	// Write through a temp file so a failed job never leaves a truncated
	// report behind.
	outPath := filepath.Join(outDir, out.Name)
	tmp, err := os.CreateTemp(outDir, "assembly-*.pdf")
	if err != nil {
		return models.AssemblyResult{}, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out.Data); err != nil {
		tmp.Close()
		return models.AssemblyResult{}, fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return models.AssemblyResult{}, fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return models.AssemblyResult{}, fmt.Errorf("renaming into place: %w", err)
	}

	result := models.AssemblyResult{Output: outPath}
	if pages, err := api.PageCount(bytes.NewReader(out.Data), nil); err == nil {
		result.Pages = pages
	}
	if mergeReport != nil {
		result.PagesAdded = mergeReport.PagesAdded
		result.Skipped = mergeReport.SkippedCount()
	}
	logCtx.Info("Report written.", "output", outPath, "pages", result.Pages)
	return result, nil
}

// resolveSources maps manifest sources to attachment references. gs://
// prefixes ending in "/" expand to the objects beneath them; entries
// without a scheme are read from the local filesystem.
func resolveSources(ctx context.Context, fetcher *fetch.Client, sources []models.ManifestSource, log *slog.Logger) ([]models.AttachmentSource, error) {
	resolved := make([]models.AttachmentSource, 0, len(sources))
	for _, src := range sources {
		out := models.AttachmentSource{Identifier: src.Identifier}
		for _, entry := range src.Attachments {
			switch {
			case strings.HasPrefix(entry, "gs://") && strings.HasSuffix(entry, "/"):
				urls, err := fetcher.ListPrefix(ctx, entry)
				if err != nil {
					return nil, fmt.Errorf("expanding prefix %s: %w", entry, err)
				}
				for _, u := range urls {
					out.Attachments = append(out.Attachments, models.AttachmentRef{Kind: models.RefURL, URL: u})
				}
			case strings.Contains(entry, "://"):
				out.Attachments = append(out.Attachments, models.AttachmentRef{Kind: models.RefURL, URL: entry})
			default:
				ref, err := localFileRef(entry)
				if err != nil {
					// Recorded as a skip in the merge report instead of
					// failing the job.
					log.Warn("Could not read local attachment.", "path", entry, "error", err)
				}
				out.Attachments = append(out.Attachments, ref)
			}
		}
		resolved = append(resolved, out)
	}
	return resolved, nil
}

func localFileRef(path string) (models.AttachmentRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.AttachmentRef{Kind: models.RefFile}, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	return models.AttachmentRef{
		Kind: models.RefFile,
		File: &models.BinaryFile{
			Name:     filepath.Base(path),
			MimeType: mimeType,
			Data:     data,
		},
	}, nil
}
