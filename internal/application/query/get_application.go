package query

import (
	"context"
	"errors"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET APPLICATION QUERY
// Full application detail including the audit trail. Students see their own
// applications, companies see applications to their postings, admins see all.
// ══════════════════════════════════════════════════════════════════════════════

// GetApplicationQuery contains the detail parameters.
type GetApplicationQuery struct {
	// ApplicationID - the application to load.
	ApplicationID shared.ApplicationID

	// ActorUserID and ActorType identify who asks.
	ActorUserID shared.UserID
	ActorType   shared.ActorType
}

// Validate checks the query parameters.
func (q *GetApplicationQuery) Validate() error {
	if !q.ApplicationID.IsValid() {
		return errors.New("application_id is required")
	}
	if !q.ActorType.IsValid() {
		return errors.New("actor_type is required")
	}
	if q.ActorType != shared.ActorSystem && !q.ActorUserID.IsValid() {
		return errors.New("actor_user_id is required")
	}
	return nil
}

// AnswerDTO is one screening question answer in the detail view.
type AnswerDTO struct {
	QuestionID      string   `json:"question_id"`
	QuestionType    string   `json:"question_type"`
	AnswerText      string   `json:"answer_text,omitempty"`
	SelectedOptions []string `json:"selected_options,omitempty"`
	FileURL         string   `json:"file_url,omitempty"`
	FileName        string   `json:"file_name,omitempty"`
}

// StatusChangeDTO is one audit trail entry in the detail view.
type StatusChangeDTO struct {
	Status        string    `json:"status"`
	ChangedBy     string    `json:"changed_by"`
	ChangedByType string    `json:"changed_by_type"`
	ChangedAt     time.Time `json:"changed_at"`
	Notes         string    `json:"notes"`
}

// ApplicationDetailDTO is the full application detail.
type ApplicationDetailDTO struct {
	ApplicationID string            `json:"application_id"`
	InternshipID  string            `json:"internship_id"`
	StudentID     string            `json:"student_id"`
	ResumeURL     string            `json:"resume_url"`
	CoverLetter   string            `json:"cover_letter,omitempty"`
	Answers       []AnswerDTO       `json:"answers"`
	Status        string            `json:"status"`
	StatusHistory []StatusChangeDTO `json:"status_history"`
	Notes         string            `json:"notes,omitempty"`
	AppliedAt     time.Time         `json:"applied_at"`
}

// GetApplicationResult contains the detail.
type GetApplicationResult struct {
	Application ApplicationDetailDTO `json:"application"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// GetApplicationHandler handles the query.
type GetApplicationHandler struct {
	applications application.Repository
	internships  internship.Repository
	students     student.Directory
	companies    company.Directory
}

// NewGetApplicationHandler creates a new handler.
func NewGetApplicationHandler(
	applications application.Repository,
	internships internship.Repository,
	students student.Directory,
	companies company.Directory,
) *GetApplicationHandler {
	return &GetApplicationHandler{
		applications: applications,
		internships:  internships,
		students:     students,
		companies:    companies,
	}
}

// Handle executes the detail query.
func (h *GetApplicationHandler) Handle(ctx context.Context, query GetApplicationQuery) (*GetApplicationResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetApplication", shared.ErrValidation, err.Error(), err)
	}

	app, err := h.applications.GetByID(ctx, query.ApplicationID)
	if err != nil {
		return nil, err
	}

	if err := h.authorize(ctx, app, query); err != nil {
		return nil, err
	}

	answers := make([]AnswerDTO, len(app.Answers))
	for i, a := range app.Answers {
		answers[i] = AnswerDTO{
			QuestionID:      a.QuestionID,
			QuestionType:    a.QuestionType.String(),
			AnswerText:      a.AnswerText,
			SelectedOptions: a.SelectedOptions,
			FileURL:         a.FileURL,
			FileName:        a.FileName,
		}
	}

	history := make([]StatusChangeDTO, len(app.StatusHistory))
	for i, c := range app.StatusHistory {
		history[i] = StatusChangeDTO{
			Status:        c.Status.String(),
			ChangedBy:     c.ChangedBy.String(),
			ChangedByType: c.ChangedByType.String(),
			ChangedAt:     c.ChangedAt,
			Notes:         c.Notes,
		}
	}

	return &GetApplicationResult{
		Application: ApplicationDetailDTO{
			ApplicationID: app.ID.String(),
			InternshipID:  app.InternshipID.String(),
			StudentID:     app.StudentID.String(),
			ResumeURL:     app.Resume.FileURL,
			CoverLetter:   app.CoverLetter,
			Answers:       answers,
			Status:        app.Status.String(),
			StatusHistory: history,
			Notes:         app.Notes,
			AppliedAt:     app.AppliedAt,
		},
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// authorize checks the actor may see the application.
func (h *GetApplicationHandler) authorize(ctx context.Context, app *application.Application, query GetApplicationQuery) error {
	switch query.ActorType {
	case shared.ActorAdmin, shared.ActorSystem:
		return nil

	case shared.ActorStudent:
		applicant, err := h.students.GetByUserID(ctx, query.ActorUserID)
		if err != nil {
			return err
		}
		if !app.BelongsTo(applicant.ID) {
			return shared.ErrNotApplicationOwner
		}
		return nil

	case shared.ActorCompany:
		actingCompany, err := h.companies.GetByUserID(ctx, query.ActorUserID)
		if err != nil {
			return err
		}
		posting, err := h.internships.GetByID(ctx, app.InternshipID)
		if err != nil {
			return err
		}
		if !posting.OwnedBy(actingCompany.ID) {
			return shared.ErrNotInternshipOwner
		}
		return nil

	default:
		return shared.ErrUnauthorized
	}
}
