package domain

import "time"

// CollectionName is the document collection holding video projects.
const CollectionName = "videoproject"

// Project is a video generation job for one listing. Scenes are kept in
// playback order.
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Scenes      []Scene    `json:"scenes"`
	Music       *string    `json:"music"`
	Status      Status     `json:"status"`
	OutputURL   *string    `json:"output_url"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// CreateProjectInput carries the client-settable fields of a new project.
type CreateProjectInput struct {
	Title       string
	Description *string
	Scenes      []Scene
	Music       *string
}

// ProjectPatch lists the fields to overwrite. A nil field is left untouched,
// so a field cannot be cleared through a patch.
type ProjectPatch struct {
	Title       *string
	Description *string
	Scenes      *[]Scene
	Music       *string
	Status      *Status
	OutputURL   *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Scenes == nil &&
		p.Music == nil &&
		p.Status == nil &&
		p.OutputURL == nil
}

// RenderResult acknowledges a render request.
type RenderResult struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
	OutputURL string `json:"output_url"`
}

const (
	// RenderAcceptedLabel is reported by the render acknowledgment even though
	// the stored status is already ready.
	RenderAcceptedLabel = "queued"
	RenderMessage       = "Render started. This is a simulation."
)

// SchemaManifest describes the client-visible project fields.
type SchemaManifest struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// ProjectSchema is served to tooling that discovers collections by name.
var ProjectSchema = SchemaManifest{
	Title: "VideoProject",
	Fields: []string{
		"title",
		"description",
		"scenes",
		"music",
		"status",
		"output_url",
	},
}
