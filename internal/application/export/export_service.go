// Package export packages projects as RO-Crate archives and describes
// them with FAIR signposting links.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/experiment"
	"github.com/qbic/datamanager/internal/domain/project"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/qbic/datamanager/internal/infrastructure/printing"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ArchiveContentType is the media type of exported archives
const ArchiveContentType = "application/zip"

var (
	ErrProjectNotFound = shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found")
	ErrExportFailed    = shared.NewDomainError("EXPORT_FAILED", "Project could not be exported")
)

// ProjectFinder loads the exported project
type ProjectFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
}

// ExperimentLister lists the experiments of a project
type ExperimentLister interface {
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]experiment.Experiment, error)
}

// Metrics records export durations
type Metrics interface {
	ExportFinished(ctx context.Context, d time.Duration, err error)
}

// Options controls what an export contains
type Options struct {
	// IncludePDF adds project-summary.pdf, requires a renderer
	IncludePDF bool
	// StoreArchives keeps a copy of every archive in object storage
	StoreArchives bool
}

// Archive is a finished RO-Crate zip
type Archive struct {
	FileName   string
	Data       []byte
	StorageKey string
	Project    ResearchProject
	CreatedAt  time.Time
}

// Service builds RO-Crate exports
type Service struct {
	projects    ProjectFinder
	experiments ExperimentLister
	overviews   project.OverviewLookup
	storage     shared.ObjectStorage
	renderer    printing.PDFRenderer
	templates   *printing.TemplateEngine
	metrics     Metrics
	options     Options
	baseURL     string
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new export Service. storage, renderer and metrics
// may be nil; PDF summaries and archive storage are then skipped.
func NewService(
	projects ProjectFinder,
	experiments ExperimentLister,
	overviews project.OverviewLookup,
	storage shared.ObjectStorage,
	renderer printing.PDFRenderer,
	metrics Metrics,
	options Options,
	baseURL string,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:    projects,
		experiments: experiments,
		overviews:   overviews,
		storage:     storage,
		renderer:    renderer,
		templates:   printing.NewTemplateEngine(),
		metrics:     metrics,
		options:     options,
		baseURL:     baseURL,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportProject builds the RO-Crate archive of a project
func (s *Service) ExportProject(ctx context.Context, projectID uuid.UUID) (archive *Archive, err error) {
	start := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ExportFinished(ctx, time.Since(start), err)
		}
	}()

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	experiments, err := s.experiments.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	var overview *project.Overview
	if s.overviews != nil {
		rows, err := s.overviews.Query(ctx, []uuid.UUID{projectID}, shared.DefaultFilter())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		if len(rows) > 0 {
			overview = &rows[0]
		}
	}
	rp := NewResearchProject(p, experiments, overview)

	summary, err := yaml.Marshal(rp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	files := []crateFile{{name: SummaryYAMLFileName, mimeType: mimeYAML, content: summary}}
	if s.options.IncludePDF && s.renderer != nil {
		pdf, err := s.renderSummary(ctx, rp, start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		files = append(files, crateFile{name: SummaryPDFFileName, mimeType: mimePDF, content: pdf})
	}

	metadata, err := buildMetadata(rp, files, start)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	data, err := writeZip(append([]crateFile{{name: MetadataFileName, content: metadata}}, files...))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	archive = &Archive{
		FileName:  fmt.Sprintf("%s-ro-crate-%s.zip", rp.Identifier, start.UTC().Format("20060102T150405")),
		Data:      data,
		Project:   rp,
		CreatedAt: start,
	}
	if s.options.StoreArchives && s.storage != nil {
		key := fmt.Sprintf("exports/%s/%s.zip", rp.Identifier, start.UTC().Format("20060102T150405Z"))
		if err := s.storage.Upload(ctx, key, data, ArchiveContentType); err != nil {
			// the caller still gets the archive
			s.logger.Warn("Failed to store export archive", zap.String("key", key), zap.Error(err))
		} else {
			archive.StorageKey = key
		}
	}

	s.logger.Info("Project exported",
		zap.String("project_code", rp.Identifier),
		zap.Int("size", len(data)),
		zap.Int("files", len(files)+1))
	return archive, nil
}

func (s *Service) renderSummary(ctx context.Context, rp ResearchProject, exported time.Time) ([]byte, error) {
	html, err := s.templates.RenderString("project-summary", summaryTemplate, map[string]any{
		"Project":  rp,
		"Exported": exported,
	})
	if err != nil {
		return nil, err
	}
	result, err := s.renderer.Render(ctx, &printing.RenderRequest{HTML: html, Title: rp.Identifier + " project summary"})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}

func writeZip(files []crateFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(f.content); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
