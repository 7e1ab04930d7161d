package template

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/chapa-studio/chapa/core"
)

var (
	// errors
	ErrNotFound = errors.New("template not found")
)

type (
	Repository interface {
		CreateTemplate(ctx context.Context, tpl Template) (Template, error)
		GetTemplateByID(ctx context.Context, id string) (Template, error)
		// FilterTemplates applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Template.Name.
		FilterTemplates(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Template, error)
		UpdateTemplate(ctx context.Context, tpl Template) (Template, error)
		DeleteTemplatesByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) Create(ctx context.Context, ownerID string, nt NewTemplate) (Template, error) {
	now := time.Now().UTC()
	tpl := Template{
		OwnerID:   ownerID,
		Name:      nt.Name,
		Kind:      nt.Kind,
		SourceURL: nt.SourceURL,
		Document:  NewDocument(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTemplate(ctx, tpl)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Template, error) {
	return svc.repo.GetTemplateByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Template, error) {
	return svc.repo.FilterTemplates(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, orig Template, ut UpdateTemplate) (Template, error) {
	tpl := orig
	tpl.Name = ut.Name
	tpl.SourceURL = ut.SourceURL
	tpl.UpdatedAt = time.Now().UTC()

	if len(ut.Document) > 0 {
		doc, err := DecodeDocument(ut.Document)
		if err != nil {
			return Template{}, core.NewValidationError(err, core.FieldError{Field: "document", Error: err.Error()})
		}
		tpl.Document = doc
	}
	return svc.repo.UpdateTemplate(ctx, tpl)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteTemplatesByID(ctx, ids...)
}

// Duplicate stores a deep copy of the template under a new ID for the given
// owner. The document is cloned, so later edits to either copy are isolated.
func (svc *Service) Duplicate(ctx context.Context, id, ownerID string) (Template, error) {
	orig, err := svc.repo.GetTemplateByID(ctx, id)
	if err != nil {
		return Template{}, err
	}
	now := time.Now().UTC()
	cp := Template{
		OwnerID:   ownerID,
		Name:      orig.Name + " (copy)",
		Kind:      orig.Kind,
		SourceURL: orig.SourceURL,
		Document:  orig.Document.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTemplate(ctx, cp)
}

// Share notifies recipients by email that a template has been shared with
// them. Delivery is fire-and-forget; failures are handled by the mail
// service and never surface to the caller.
func (svc *Service) Share(ctx context.Context, tpl Template, sharedBy string, emails []string) {
	if len(emails) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(emails))
	for _, email := range emails {
		to = append(to, mail.Address{Address: core.CleanString(email, true /* lower */)})
	}
	link := fmt.Sprintf("%s/templates/%s", svc.conf.FrontendBaseURL, tpl.ID)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("%s shared the template %q with you", sharedBy, tpl.Name),
		TextContent: fmt.Sprintf(
			"%s shared the branding template %q with you.\n\nOpen it here: %s\n", sharedBy, tpl.Name, link),
	})
}
