package http

import (
	"github.com/realestate-cinematic/cinematic-backend/internal/projects/domain"
	"github.com/realestate-cinematic/cinematic-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc *service.ProjectService
}

func New(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Scenes      []domain.Scene `json:"scenes"`
	Music       *string        `json:"music"`
}

// updateReq uses pointers so omitted and null fields both decode to nil and
// are left untouched.
type updateReq struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Scenes      *[]domain.Scene `json:"scenes"`
	Music       *string         `json:"music"`
	Status      *string         `json:"status"`
	OutputURL   *string         `json:"output_url"`
}

func (r updateReq) patch() domain.ProjectPatch {
	p := domain.ProjectPatch{
		Title:       r.Title,
		Description: r.Description,
		Scenes:      r.Scenes,
		Music:       r.Music,
		OutputURL:   r.OutputURL,
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		p.Status = &s
	}
	return p
}

type renderReq struct {
	ProjectID string `json:"project_id"`
}
