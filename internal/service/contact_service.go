package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mcnijman/go-emailaddress"
	"go.uber.org/zap"

	"contact-book/internal/domain"
	"contact-book/internal/repository"
)

const (
	maxNameLength           = 50
	maxPhoneLength          = 20
	maxAdditionalInfoLength = 250

	DefaultListLimit     = 10
	upcomingBirthdayDays = 7
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrValidation      = errors.New("validation error")
)

// ValidationError describe el primer campo que no cumple las restricciones.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ContactInput son los campos que el cliente puede enviar al crear un contacto.
type ContactInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Birthday       *domain.Date
	AdditionalInfo *string
}

// ContactService aplica las reglas de la libreta siempre acotadas al usuario llamante.
type ContactService struct {
	logger   *zap.Logger
	contacts repository.ContactRepository
	now      func() time.Time
}

func NewContactService(logger *zap.Logger, contacts repository.ContactRepository) *ContactService {
	return &ContactService{
		logger:   logger,
		contacts: contacts,
		now:      time.Now,
	}
}

func (s *ContactService) Create(ctx context.Context, ownerID string, input ContactInput) (domain.Contact, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateContactPatch(domain.ContactPatch{
		FirstName:      domain.Some(input.FirstName),
		LastName:       domain.Some(input.LastName),
		Email:          domain.Some(input.Email),
		Phone:          domain.Some(input.Phone),
		AdditionalInfo: domain.Optional[string]{Set: true, Value: input.AdditionalInfo},
	}); err != nil {
		return domain.Contact{}, err
	}

	contact := domain.Contact{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		Phone:          input.Phone,
		Birthday:       input.Birthday,
		AdditionalInfo: input.AdditionalInfo,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return domain.Contact{}, err
	}
	if s.logger != nil {
		s.logger.Debug("contact created", zap.String("owner_id", ownerID), zap.String("contact_id", contact.ID))
	}
	return contact, nil
}

// List devuelve una ventana [offset, offset+limit) en orden de insercion.
func (s *ContactService) List(ctx context.Context, ownerID string, offset, limit int) ([]domain.Contact, error) {
	if offset < 0 {
		return nil, &ValidationError{Field: "skip", Message: "must be greater than or equal to 0"}
	}
	if limit < 0 {
		return nil, &ValidationError{Field: "limit", Message: "must be greater than or equal to 0"}
	}
	return s.contacts.List(ctx, ownerID, offset, limit)
}

// GetByID no distingue entre contacto inexistente y contacto ajeno.
func (s *ContactService) GetByID(ctx context.Context, ownerID, id string) (domain.Contact, error) {
	contactID, ok := canonicalContactID(id)
	if !ok {
		return domain.Contact{}, ErrContactNotFound
	}
	contact, err := s.contacts.GetByID(ctx, ownerID, contactID)
	return contact, mapContactErr(err)
}

// Update cambia solo los campos presentes en el patch.
func (s *ContactService) Update(ctx context.Context, ownerID, id string, patch domain.ContactPatch) (domain.Contact, error) {
	contactID, ok := canonicalContactID(id)
	if !ok {
		return domain.Contact{}, ErrContactNotFound
	}
	if patch.Email.Value != nil {
		patch.Email = domain.Some(strings.TrimSpace(*patch.Email.Value))
	}
	if err := validateContactPatch(patch); err != nil {
		return domain.Contact{}, err
	}
	contact, err := s.contacts.Update(ctx, ownerID, contactID, patch)
	return contact, mapContactErr(err)
}

func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	contactID, ok := canonicalContactID(id)
	if !ok {
		return ErrContactNotFound
	}
	return mapContactErr(s.contacts.Delete(ctx, ownerID, contactID))
}

// Search asume que la frontera HTTP ya rechazo consultas vacias.
func (s *ContactService) Search(ctx context.Context, ownerID, query string) ([]domain.Contact, error) {
	return s.contacts.Search(ctx, ownerID, query)
}

// UpcomingBirthdays devuelve los contactos cuyo cumpleaños (mes/dia) cae en
// [hoy, hoy+7], cruzando el fin de año si hace falta.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, ownerID string) ([]domain.Contact, error) {
	candidates, err := s.contacts.ListWithBirthday(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	today := domain.DateOf(s.now().UTC())
	upcoming := make([]domain.Contact, 0, len(candidates))
	for _, c := range candidates {
		if c.Birthday != nil && birthdayInWindow(*c.Birthday, today, upcomingBirthdayDays) {
			upcoming = append(upcoming, c)
		}
	}
	return upcoming, nil
}

// birthdayInWindow ignora el año de nacimiento. Un 29/02 cae el 01/03 en años no bisiestos.
func birthdayInWindow(birthday, today domain.Date, days int) bool {
	end := today.AddDate(0, 0, days)
	for _, year := range []int{today.Year(), today.Year() + 1} {
		next := time.Date(year, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
		if !next.Before(today.Time) && !next.After(end) {
			return true
		}
	}
	return false
}

func validateContactPatch(p domain.ContactPatch) error {
	required := []struct {
		field string
		value domain.Optional[string]
		max   int
	}{
		{"first_name", p.FirstName, maxNameLength},
		{"last_name", p.LastName, maxNameLength},
		{"email", p.Email, 0},
		{"phone", p.Phone, maxPhoneLength},
	}
	for _, r := range required {
		if !r.value.Set {
			continue
		}
		if r.value.Value == nil {
			return &ValidationError{Field: r.field, Message: "may not be null"}
		}
		if r.field == "email" {
			if !ValidEmail(*r.value.Value) {
				return &ValidationError{Field: "email", Message: "value is not a valid email address"}
			}
			continue
		}
		if err := requireBounded(r.field, *r.value.Value, r.max); err != nil {
			return err
		}
	}
	if v := p.AdditionalInfo.Value; v != nil && utf8.RuneCountInString(*v) > maxAdditionalInfoLength {
		return &ValidationError{Field: "additional_info", Message: fmt.Sprintf("must be at most %d characters", maxAdditionalInfoLength)}
	}
	return nil
}

func requireBounded(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "field required"}
	}
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)}
	}
	return nil
}

// ValidEmail es el unico chequeo de formato de email, para usuarios y contactos.
// Ignora espacios alrededor; quien guarda el valor debe recortarlo.
func ValidEmail(email string) bool {
	_, err := emailaddress.Parse(strings.TrimSpace(email))
	return err == nil
}

// canonicalContactID acepta cualquier forma que entienda uuid.Parse y devuelve
// la forma canonica que espera Postgres.
func canonicalContactID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

func mapContactErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrContactNotFound
	}
	return err
}
