package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/folio-dev/folio/internal/domain"
	"github.com/folio-dev/folio/internal/domain/event"
	domainproject "github.com/folio-dev/folio/internal/domain/project"
	"github.com/folio-dev/folio/internal/metrics"
	portblob "github.com/folio-dev/folio/internal/port/blob"
	portbus "github.com/folio-dev/folio/internal/port/eventbus"
	portproject "github.com/folio-dev/folio/internal/port/project"
)

const (
	msgNameRequired = "Project name is required and cannot be empty."
	msgNameTooLong  = "Project name must be 100 characters or less."
	msgURLTooLong   = "Project URL must be 255 characters or less."
)

// Upload is an image supplied with a create or update request.
type Upload struct {
	Filename string
	Body     io.Reader
}

type CreateInput struct {
	Name        string
	Description *string
	ProjectURL  *string
}

// Service is the only writer that touches both the blob store and the
// repository, and so the only holder of the row/blob consistency rule:
// a stored image_filename always names a present blob.
type Service struct {
	repo   portproject.Repository
	blobs  portblob.Store
	bus    portbus.EventBus
	logger *slog.Logger
}

func NewService(repo portproject.Repository, blobs portblob.Store, bus portbus.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, blobs: blobs, bus: bus, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]domainproject.Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domainproject.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, actor string, in CreateInput, upload *Upload) (domainproject.Project, error) {
	candidate := domainproject.New(in.Name, in.Description, in.ProjectURL)

	errs := validateFields(candidate)
	newBlob := s.storeUpload(ctx, upload, errs)

	if verr := domain.ValidationFromOzzo(errs); verr != nil {
		s.compensate(ctx, newBlob)
		s.logger.InfoContext(ctx, "project create rejected", "actor", actor, "fields", verr.Fields)
		return domainproject.Project{}, verr
	}
	if newBlob != "" {
		candidate.ImageFilename = &newBlob
	}

	created, err := s.repo.Create(ctx, candidate)
	if err != nil {
		s.compensate(ctx, newBlob)
		s.logger.ErrorContext(ctx, "project create failed", "actor", actor, "error", err)
		return domainproject.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.logger.InfoContext(ctx, "project created", "actor", actor, "id", created.ID, "image", newBlob)
	s.publish(ctx, event.TypeProjectCreated, created.ID)
	return created, nil
}

// Update applies patch semantics: omitted fields keep their stored values and
// the image is only replaced when a new upload is supplied. The previous blob
// is removed only after the row commit succeeds.
func (s *Service) Update(ctx context.Context, actor string, id int64, patch domainproject.Patch, upload *Upload) (domainproject.Project, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("update project: %w", err)
	}

	next := patch.Apply(current)
	errs := validateFields(next)
	newBlob := s.storeUpload(ctx, upload, errs)

	if verr := domain.ValidationFromOzzo(errs); verr != nil {
		s.compensate(ctx, newBlob)
		s.logger.InfoContext(ctx, "project update rejected", "actor", actor, "id", id, "fields", verr.Fields)
		return domainproject.Project{}, verr
	}

	var oldBlob string
	if newBlob != "" {
		if current.HasImage() {
			oldBlob = *current.ImageFilename
		}
		next.ImageFilename = &newBlob
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		s.compensate(ctx, newBlob)
		s.logger.ErrorContext(ctx, "project update failed", "actor", actor, "id", id, "error", err)
		return domainproject.Project{}, fmt.Errorf("update project: %w", err)
	}

	if oldBlob != "" {
		// The row no longer references oldBlob; a failure here leaves an
		// orphan for the sweeper, never a dangling reference.
		if err := s.blobs.Remove(ctx, oldBlob); err != nil {
			s.logger.WarnContext(ctx, "previous project image not removed", "id", id, "image", oldBlob, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "project updated", "actor", actor, "id", id, "image_replaced", newBlob != "")
	s.publish(ctx, event.TypeProjectUpdated, id)
	return updated, nil
}

// Delete removes the row, then the image the removed row referenced. A failed
// image removal is logged and left for the sweeper.
func (s *Service) Delete(ctx context.Context, actor string, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete project: %w", err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "project delete failed", "actor", actor, "id", id, "error", err)
		return fmt.Errorf("delete project: %w", err)
	}

	if deleted.HasImage() {
		if err := s.blobs.Remove(ctx, *deleted.ImageFilename); err != nil {
			s.logger.WarnContext(ctx, "deleted project image not removed", "id", id, "image", *deleted.ImageFilename, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "project deleted", "actor", actor, "id", id)
	s.publish(ctx, event.TypeProjectDeleted, id)
	return nil
}

func validateFields(p domainproject.Project) validation.Errors {
	var url string
	if p.ProjectURL != nil {
		url = *p.ProjectURL
	}
	return validation.Errors{
		"name": validation.Validate(p.Name,
			validation.Required.Error(msgNameRequired),
			validation.RuneLength(0, domainproject.MaxNameLength).Error(msgNameTooLong),
		),
		"project_url": validation.Validate(url,
			validation.RuneLength(0, domainproject.MaxURLLength).Error(msgURLTooLong),
		),
	}
}

// storeUpload writes the upload if its extension is acceptable and records
// any problem under the "image" key. It returns the new blob id or "".
func (s *Service) storeUpload(ctx context.Context, upload *Upload, errs validation.Errors) string {
	if upload == nil || upload.Filename == "" {
		return ""
	}
	if !domainproject.AllowedExtension(upload.Filename) {
		errs["image"] = errors.New("File type not allowed. Allowed: " + strings.Join(domainproject.AllowedExtensions(), ", "))
		return ""
	}
	id, err := s.blobs.Store(ctx, upload.Body, upload.Filename)
	if err != nil {
		s.logger.WarnContext(ctx, "image store failed", "filename", upload.Filename, "error", err)
		errs["image"] = fmt.Errorf("Could not store image: %v", err)
		return ""
	}
	return id
}

// compensate removes a blob written for an operation that did not commit.
func (s *Service) compensate(ctx context.Context, blobID string) {
	if blobID == "" {
		return
	}
	err := s.blobs.Remove(context.WithoutCancel(ctx), blobID)
	metrics.ObserveCompensation(err)
	if err != nil {
		s.logger.ErrorContext(ctx, "compensating image removal failed, blob orphaned", "image", blobID, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, t event.Type, id int64) {
	if err := s.bus.Publish(ctx, event.New(t, id)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "type", t, "id", id, "error", err)
	}
}
