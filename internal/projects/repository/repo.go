package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/realestate-cinematic/cinematic-backend/internal/projects/domain"
	"github.com/realestate-cinematic/cinematic-backend/internal/storage/docstore"
)

// Document field names for a project.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldScenes      = "scenes"
	fieldMusic       = "music"
	fieldStatus      = "status"
	fieldOutputURL   = "output_url"
)

// ErrCorruptDocument marks a stored document that no longer decodes into a project.
var ErrCorruptDocument = errors.New("corrupt project document")

// ProjectRepository maps projects to documents in the videoproject collection.
type ProjectRepository struct {
	store docstore.Store
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(store docstore.Store) *ProjectRepository {
	return &ProjectRepository{store: store}
}

// ParseID validates an external project id. Callers must parse before any
// store access so malformed ids never reach the store.
func (r *ProjectRepository) ParseID(raw string) (docstore.ObjectID, error) {
	id, err := docstore.ParseObjectID(raw)
	if err != nil {
		return docstore.NilObjectID, fmt.Errorf("%w: %q", domain.ErrInvalidID, raw)
	}
	return id, nil
}

// Insert stores a new draft project and returns its id.
func (r *ProjectRepository) Insert(ctx context.Context, in domain.CreateProjectInput) (docstore.ObjectID, error) {
	scenes := in.Scenes
	if scenes == nil {
		scenes = []domain.Scene{}
	}

	fields, err := encodeFields([]fieldEntry{
		{fieldTitle, in.Title, true},
		{fieldDescription, in.Description, in.Description != nil},
		{fieldScenes, scenes, true},
		{fieldMusic, in.Music, in.Music != nil},
		{fieldStatus, domain.StatusDraft, true},
	})
	if err != nil {
		return docstore.NilObjectID, err
	}

	id, err := r.store.Insert(ctx, domain.CollectionName, fields)
	if err != nil {
		return docstore.NilObjectID, mapStoreErr(err)
	}
	return id, nil
}

// FindByID loads a project.
func (r *ProjectRepository) FindByID(ctx context.Context, id docstore.ObjectID) (*domain.Project, error) {
	doc, err := r.store.FindByID(ctx, domain.CollectionName, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return decodeProject(doc)
}

// List returns up to limit projects in store order.
func (r *ProjectRepository) List(ctx context.Context, limit int) ([]domain.Project, error) {
	docs, err := r.store.List(ctx, domain.CollectionName, limit)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	out := make([]domain.Project, 0, len(docs))
	for i := range docs {
		p, err := decodeProject(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Update overwrites the fields present in patch and returns the stored result.
func (r *ProjectRepository) Update(ctx context.Context, id docstore.ObjectID, patch domain.ProjectPatch) (*domain.Project, error) {
	fields, err := encodeFields([]fieldEntry{
		{fieldTitle, patch.Title, patch.Title != nil},
		{fieldDescription, patch.Description, patch.Description != nil},
		{fieldScenes, patch.Scenes, patch.Scenes != nil},
		{fieldMusic, patch.Music, patch.Music != nil},
		{fieldStatus, patch.Status, patch.Status != nil},
		{fieldOutputURL, patch.OutputURL, patch.OutputURL != nil},
	})
	if err != nil {
		return nil, err
	}

	doc, err := r.store.UpdateFields(ctx, domain.CollectionName, id, fields)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return decodeProject(doc)
}

// MarkRendered sets status ready and the output url in one write.
func (r *ProjectRepository) MarkRendered(ctx context.Context, id docstore.ObjectID, outputURL string) (*domain.Project, error) {
	ready := domain.StatusReady
	return r.Update(ctx, id, domain.ProjectPatch{
		Status:    &ready,
		OutputURL: &outputURL,
	})
}

func decodeProject(doc *docstore.Document) (*domain.Project, error) {
	p := domain.Project{
		ID:     doc.ID.Hex(),
		Scenes: []domain.Scene{},
		Status: domain.StatusDraft,
	}

	ok, err := doc.Fields.Get(fieldTitle, &p.Title)
	if err != nil {
		return nil, corrupt(doc.ID, err)
	}
	if !ok {
		return nil, corrupt(doc.ID, fmt.Errorf("missing %s", fieldTitle))
	}

	targets := []struct {
		name string
		dst  any
	}{
		{fieldScenes, &p.Scenes},
		{fieldStatus, &p.Status},
	}
	for _, t := range targets {
		if _, err := doc.Fields.Get(t.name, t.dst); err != nil {
			return nil, corrupt(doc.ID, err)
		}
	}
	if p.Scenes == nil {
		p.Scenes = []domain.Scene{}
	}
	if !p.Status.Valid() {
		return nil, corrupt(doc.ID, fmt.Errorf("unknown status %q", p.Status))
	}

	if p.Description, err = optionalString(doc.Fields, fieldDescription); err != nil {
		return nil, corrupt(doc.ID, err)
	}
	if p.Music, err = optionalString(doc.Fields, fieldMusic); err != nil {
		return nil, corrupt(doc.ID, err)
	}
	if p.OutputURL, err = optionalString(doc.Fields, fieldOutputURL); err != nil {
		return nil, corrupt(doc.ID, err)
	}
	if p.CreatedAt, err = optionalTime(doc.Fields, docstore.FieldCreatedAt); err != nil {
		return nil, corrupt(doc.ID, err)
	}
	if p.UpdatedAt, err = optionalTime(doc.Fields, docstore.FieldUpdatedAt); err != nil {
		return nil, corrupt(doc.ID, err)
	}

	return &p, nil
}

func optionalString(f docstore.Fields, name string) (*string, error) {
	var v string
	ok, err := f.Get(name, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func optionalTime(f docstore.Fields, name string) (*time.Time, error) {
	var v time.Time
	ok, err := f.Get(name, &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

type fieldEntry struct {
	name    string
	value   any
	present bool
}

func encodeFields(entries []fieldEntry) (docstore.Fields, error) {
	fields := make(docstore.Fields, len(entries))
	for _, e := range entries {
		if !e.present {
			continue
		}
		if err := fields.Set(e.name, e.value); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func corrupt(id docstore.ObjectID, err error) error {
	return fmt.Errorf("%w %s: %v", ErrCorruptDocument, id.Hex(), err)
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return domain.ErrProjectNotFound
	case errors.Is(err, docstore.ErrUnavailable):
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}
