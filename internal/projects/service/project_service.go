package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/realestate-cinematic/cinematic-backend/internal/logging"
	"github.com/realestate-cinematic/cinematic-backend/internal/metrics"
	"github.com/realestate-cinematic/cinematic-backend/internal/projects/domain"
	"github.com/realestate-cinematic/cinematic-backend/internal/projects/repository"
)

// DefaultPublicBaseURL prefixes fabricated output references.
const DefaultPublicBaseURL = "https://files.example.com"

// Options configures a ProjectService.
type Options struct {
	// PublicBaseURL is the host serving rendered videos.
	PublicBaseURL string
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// ProjectService handles project lifecycle rules on top of the repository.
// It holds no locks; concurrent updates rely on the store's single-document atomicity.
type ProjectService struct {
	repo    *repository.ProjectRepository
	baseURL string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewProjectService creates a new project service
func NewProjectService(repo *repository.ProjectRepository, opts Options) *ProjectService {
	base := strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/")
	if base == "" {
		base = DefaultPublicBaseURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		repo:    repo,
		baseURL: base,
		logger:  logger.Named("projects"),
		metrics: opts.Metrics,
	}
}

// Create stores a new draft project and returns it as persisted.
func (s *ProjectService) Create(ctx context.Context, in domain.CreateProjectInput) (p *domain.Project, err error) {
	defer s.observe(ctx, "create", &err)

	// titles are stored verbatim; only blank ones are rejected
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id, err := s.repo.Insert(ctx, in)
	if err != nil {
		return nil, err
	}

	// read back so the caller sees exactly what the store kept
	p, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	logging.For(ctx, s.logger).Info("project created", zap.String("project_id", p.ID))
	return p, nil
}

// Get loads one project.
func (s *ProjectService) Get(ctx context.Context, rawID string) (p *domain.Project, err error) {
	defer s.observe(ctx, "get", &err)

	id, err := s.repo.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// List returns at most limit projects. An empty store yields an empty slice.
func (s *ProjectService) List(ctx context.Context, limit int) (items []domain.Project, err error) {
	defer s.observe(ctx, "list", &err)

	items, err = s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Project{}
	}
	return items, nil
}

// Update merges the non-nil fields of patch into the project. Scenes, when
// present, replace the stored sequence as a whole.
func (s *ProjectService) Update(ctx context.Context, rawID string, patch domain.ProjectPatch) (p *domain.Project, err error) {
	defer s.observe(ctx, "update", &err)

	id, err := s.repo.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if patch.Status != nil {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !current.Status.CanTransitionTo(*patch.Status) {
			// allowed, but it moves the project against the lifecycle
			logging.For(ctx, s.logger).Warn("status overwritten outside lifecycle",
				zap.String("project_id", current.ID),
				zap.String("from", string(current.Status)),
				zap.String("to", string(*patch.Status)),
			)
		}
	}

	p, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	logging.For(ctx, s.logger).Info("project updated", zap.String("project_id", p.ID))
	return p, nil
}

// Render simulates a render: it derives the output reference from the id and
// marks the project ready in a single write. Repeated renders are idempotent.
func (s *ProjectService) Render(ctx context.Context, rawID string) (res *domain.RenderResult, err error) {
	defer s.observe(ctx, "render", &err)

	id, err := s.repo.ParseID(rawID)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	outputURL := s.OutputURL(current.ID)
	p, err := s.repo.MarkRendered(ctx, id, outputURL)
	if err != nil {
		return nil, err
	}

	logging.For(ctx, s.logger).Info("project rendered",
		zap.String("project_id", p.ID),
		zap.String("output_url", outputURL),
	)
	return &domain.RenderResult{
		Status:    domain.RenderAcceptedLabel,
		Message:   domain.RenderMessage,
		ProjectID: p.ID,
		OutputURL: outputURL,
	}, nil
}

// OutputURL is the fabricated video reference of a project id.
func (s *ProjectService) OutputURL(projectID string) string {
	return s.baseURL + "/videos/" + projectID + ".mp4"
}

func (s *ProjectService) observe(ctx context.Context, op string, errp *error) {
	outcome := Outcome(*errp)
	s.metrics.ObserveOperation(op, outcome)

	if outcome == "error" || outcome == "store_unavailable" {
		logging.For(ctx, s.logger).Error("project operation failed",
			zap.String("operation", op),
			zap.Error(*errp),
		)
	}
}

// Outcome classifies an error returned by the service.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, domain.ErrProjectNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	}
	return "error"
}
