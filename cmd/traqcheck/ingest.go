package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"traqcheck/candidate-onboarding/internal/config"
	"traqcheck/candidate-onboarding/internal/models"
	"traqcheck/candidate-onboarding/internal/repositories"
	"traqcheck/candidate-onboarding/internal/services"
)

type ingestEntry struct {
	File   string                  `yaml:"file"`
	ID     string                  `yaml:"id,omitempty"`
	Status models.ExtractionStatus `yaml:"status,omitempty"`
	Error  string                  `yaml:"error,omitempty"`
}

type ingestReport struct {
	Directory string        `yaml:"directory"`
	Total     int           `yaml:"total"`
	Completed int           `yaml:"completed"`
	Failed    int           `yaml:"failed"`
	Entries   []ingestEntry `yaml:"entries"`
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Upload every PDF and DOCX resume in a directory and extract it synchronously",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		cfg := config.Load()
		repo, err := config.InitRepository(cfg, logger)
		if err != nil {
			return err
		}

		store := services.NewLocalDocumentStore(cfg.Storage.UploadPath)
		if err := store.EnsureUploadDir(); err != nil {
			return err
		}

		ingester := newIngester(repo, store, cfg.Storage.MaxResumeSize, cfg.Extraction.MinTextLength, cfg.Worker.ExtractionTimeout, logger)
		return ingester.run(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

type ingester struct {
	repo      repositories.CandidateRepository
	service   services.CandidateService
	processor services.ExtractionProcessor
	logger    *zap.Logger
}

func newIngester(
	repo repositories.CandidateRepository,
	store services.DocumentStore,
	maxResumeBytes int64,
	minTextLength int,
	timeout time.Duration,
	logger *zap.Logger,
) *ingester {
	return &ingester{
		repo:      repo,
		service:   services.NewCandidateService(repo, store, nil, maxResumeBytes, logger),
		processor: services.NewExtractionProcessor(repo, store, services.NewFieldExtractor(minTextLength), timeout, logger),
		logger:    logger,
	}
}

func resumeFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pdf", ".docx":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (i *ingester) run(ctx context.Context, w io.Writer, dir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := resumeFiles(dir)
	if err != nil {
		return err
	}

	report := ingestReport{Directory: dir, Entries: []ingestEntry{}}
	for _, path := range files {
		entry := i.ingestFile(ctx, path)
		switch entry.Status {
		case models.StatusCompleted:
			report.Completed++
		case models.StatusFailed:
			report.Failed++
		}
		report.Entries = append(report.Entries, entry)
	}
	report.Total = len(report.Entries)

	i.logger.Info("ingest finished",
		zap.String("directory", dir),
		zap.Int("total", report.Total),
		zap.Int("completed", report.Completed),
		zap.Int("failed", report.Failed),
	)
	return render(w, report)
}

func (i *ingester) ingestFile(ctx context.Context, path string) ingestEntry {
	entry := ingestEntry{File: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	candidate, err := i.service.Upload(ctx, services.Upload{Filename: path, Data: data})
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.ID = candidate.ID.String()

	// The outcome is read back from the candidate below.
	if err := i.processor.Process(ctx, candidate.ID); err != nil {
		i.logger.Warn("resume extraction failed",
			zap.String("file", entry.File),
			zap.String("candidate_id", entry.ID),
			zap.Error(err),
		)
	}

	stored, err := i.repo.FindByID(ctx, candidate.ID)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.Status = stored.ExtractionStatus
	if stored.ExtractionError != nil {
		entry.Error = *stored.ExtractionError
	}
	return entry
}
