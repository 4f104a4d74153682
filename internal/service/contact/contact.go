package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/folio-dev/folio/internal/domain"
	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
	"github.com/folio-dev/folio/internal/domain/event"
	portcontact "github.com/folio-dev/folio/internal/port/contact"
	portbus "github.com/folio-dev/folio/internal/port/eventbus"
	portnotifier "github.com/folio-dev/folio/internal/port/notifier"
)

const notifyTimeout = 15 * time.Second

type Input struct {
	Name    string
	Email   string
	Phone   *string
	Message string
}

type Service struct {
	repo     portcontact.Repository
	bus      portbus.EventBus
	notifier portnotifier.ContactNotifier
	logger   *slog.Logger

	// inflight tracks notification goroutines so shutdown can drain them.
	inflight sync.WaitGroup
}

func NewService(repo portcontact.Repository, bus portbus.EventBus, notifier portnotifier.ContactNotifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, notifier: notifier, logger: logger}
}

func validateInput(s domaincontact.Submission) error {
	var phone string
	if s.Phone != nil {
		phone = *s.Phone
	}
	errs := validation.Errors{
		"name": validation.Validate(s.Name,
			validation.Required.Error("Name is required."),
			validation.RuneLength(0, domaincontact.MaxNameLength).Error("Name must be 100 characters or less."),
		),
		"email": validation.Validate(s.Email,
			validation.Required.Error("Email is required."),
			validation.RuneLength(0, domaincontact.MaxEmailLength).Error("Email must be 120 characters or less."),
		),
		"phone": validation.Validate(phone,
			validation.RuneLength(0, domaincontact.MaxPhoneLength).Error("Phone must be 50 characters or less."),
		),
		"message": validation.Validate(s.Message,
			validation.Required.Error("Message is required."),
		),
	}
	if s.Email != "" {
		errs["email_format"] = validation.Validate(s.Email, validation.By(func(any) error {
			if !strings.Contains(s.Email, "@") {
				return errors.New("Invalid email format.")
			}
			return nil
		}))
	}
	if verr := domain.ValidationFromOzzo(errs); verr != nil {
		return verr
	}
	return nil
}

// Submit persists a contact-form entry and then notifies the operator in the
// background. Notification never delays or undoes the write.
func (s *Service) Submit(ctx context.Context, in Input) (domaincontact.Submission, error) {
	candidate := domaincontact.New(in.Name, in.Email, in.Phone, in.Message)
	if err := validateInput(candidate); err != nil {
		return domaincontact.Submission{}, err
	}

	created, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return domaincontact.Submission{}, fmt.Errorf("submit contact form: %w", err)
	}
	s.logger.InfoContext(ctx, "contact submission stored", "id", created.ID)

	if err := s.bus.Publish(ctx, event.New(event.TypeContactSubmitted, created.ID)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish event", "type", event.TypeContactSubmitted, "id", created.ID, "error", err)
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyContact(nctx, created); err != nil {
			s.logger.WarnContext(nctx, "contact notification failed", "id", created.ID, "error", err)
			return
		}
		s.logger.InfoContext(nctx, "contact notification sent", "id", created.ID)
	}()

	return created, nil
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() { s.inflight.Wait() }

// List returns one page of submissions, newest first. Out-of-range arguments
// fall back to the defaults.
func (s *Service) List(ctx context.Context, page, perPage int) (domaincontact.Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = domaincontact.DefaultPerPage
	}
	if perPage > domaincontact.MaxPerPage {
		perPage = domaincontact.MaxPerPage
	}

	subs, total, err := s.repo.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return domaincontact.Page{}, fmt.Errorf("list contact submissions: %w", err)
	}
	return domaincontact.NewPage(subs, total, page, perPage), nil
}

func (s *Service) Get(ctx context.Context, id int64) (domaincontact.Submission, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domaincontact.Submission{}, fmt.Errorf("get contact submission: %w", err)
	}
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, actor string, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact submission: %w", err)
	}
	s.logger.InfoContext(ctx, "contact submission deleted", "actor", actor, "id", id)
	return nil
}

// Ping records a generic form-data post. Nothing is persisted.
func (s *Service) Ping(ctx context.Context, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	s.logger.InfoContext(ctx, "form data received", "fields", keys)
}
