package contacts

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"acolhimento/internal/domain"
	"acolhimento/internal/ports"
)

var (
	ErrNotFound       = errString("contact not found")
	ErrDuplicatePhone = errString("contact with this phone number already exists")
	ErrMissingFields  = errString("name, phone and reason are required")
	ErrExtraction     = errString("extraction failed; provide explicit fields")
)

type errString string

func (e errString) Error() string { return string(e) }

// Service implements contact intake on top of the repository and the
// extraction engine: explicit fields or free text, phone uniqueness, CRUD.
type Service struct {
	repo      ports.ContactRepository
	extractor ports.Extractor
	exportMax int
	log       *zap.Logger
}

func New(repo ports.ContactRepository, extractor ports.Extractor, exportMax int, log *zap.Logger) *Service {
	if exportMax <= 0 {
		exportMax = 10000
	}
	return &Service{repo: repo, extractor: extractor, exportMax: exportMax, log: log}
}

// CreateInput carries either explicit fields or free text for extraction.
// FreeText is used only when Name is not provided.
type CreateInput struct {
	Name        string
	Phone       string
	Email       string
	Reason      string
	ContactDate string
	FreeText    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Contact, error) {
	var c domain.Contact

	if in.FreeText != "" && in.Name == "" {
		rec, err := s.extractor.Extract(ctx, in.FreeText)
		if err != nil {
			return c, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		if rec.Name == nil || rec.Phone == nil || rec.Reason == nil {
			return c, ErrMissingFields
		}
		c = domain.Contact{
			Name:        *rec.Name,
			Phone:       *rec.Phone,
			Email:       rec.Email,
			Reason:      *rec.Reason,
			ContactDate: rec.ContactDate,
			ExtraData:   candidateMap(rec),
		}
	} else {
		if in.Name == "" || in.Phone == "" || in.Reason == "" {
			return c, ErrMissingFields
		}
		c = domain.Contact{
			Name:   in.Name,
			Phone:  domain.NormalizePhone(in.Phone),
			Reason: in.Reason,
		}
		if in.Email != "" {
			c.Email = &in.Email
		}
		if in.ContactDate != "" {
			c.ContactDate = &in.ContactDate
		}
	}

	if _, found, err := s.repo.GetByPhone(ctx, c.Phone); err != nil {
		return domain.Contact{}, err
	} else if found {
		return domain.Contact{}, ErrDuplicatePhone
	}

	c.SyncStatus = domain.SyncPending
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return domain.Contact{}, err
	}
	s.log.Info("contact_created", zap.Int64("id", created.ID), zap.Bool("from_free_text", in.FreeText != "" && in.Name == ""))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Contact, error) {
	c, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if !found {
		return c, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, f ports.ContactFilter) ([]domain.Contact, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// UpdateInput applies only the fields that are set.
type UpdateInput struct {
	Name        *string
	Phone       *string
	Email       *string
	Reason      *string
	ContactDate *string
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (domain.Contact, error) {
	c, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if !found {
		return c, ErrNotFound
	}

	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Phone != nil {
		phone := domain.NormalizePhone(*in.Phone)
		if phone != c.Phone {
			if other, dup, err := s.repo.GetByPhone(ctx, phone); err != nil {
				return domain.Contact{}, err
			} else if dup && other.ID != id {
				return domain.Contact{}, ErrDuplicatePhone
			}
		}
		c.Phone = phone
	}
	if in.Email != nil {
		c.Email = in.Email
	}
	if in.Reason != nil {
		c.Reason = *in.Reason
	}
	if in.ContactDate != nil {
		c.ContactDate = in.ContactDate
	}

	updated, ok, err := s.repo.Update(ctx, c)
	if err != nil {
		return domain.Contact{}, err
	}
	if !ok {
		return domain.Contact{}, ErrNotFound
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// candidateMap preserves the raw extraction result, nulls included, for the
// contact's extra_data column.
func candidateMap(rec domain.CandidateRecord) map[string]any {
	m := map[string]any{
		"name": nil, "phone": nil, "email": nil, "reason": nil, "contact_date": nil,
	}
	if rec.Name != nil {
		m["name"] = *rec.Name
	}
	if rec.Phone != nil {
		m["phone"] = *rec.Phone
	}
	if rec.Email != nil {
		m["email"] = *rec.Email
	}
	if rec.Reason != nil {
		m["reason"] = *rec.Reason
	}
	if rec.ContactDate != nil {
		m["contact_date"] = *rec.ContactDate
	}
	return m
}
