package query

import (
	"context"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

const (
	appID         = "11111111-1111-1111-1111-111111111111"
	internshipID  = "22222222-2222-2222-2222-222222222222"
	studentID     = "33333333-3333-3333-3333-333333333333"
	studentUserID = "44444444-4444-4444-4444-444444444444"
	companyUserID = "55555555-5555-5555-5555-555555555555"
	companyID     = "66666666-6666-6666-6666-666666666666"
	adminUserID   = "77777777-7777-7777-7777-777777777777"
)

// Stub repositories for the query handler tests. Queries only read, so the
// stubs return canned rows and record the arguments they were called with.

type stubApplicationRepo struct {
	app          *application.Application
	studentViews []application.StudentView
	companyViews []application.CompanyView
	stats        application.CompanyStats

	gotFilter     application.CompanyFilter
	gotPagination shared.Pagination
}

func (r *stubApplicationRepo) Create(ctx context.Context, app *application.Application) error {
	return nil
}

func (r *stubApplicationRepo) GetByID(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	if r.app == nil || r.app.ID != id {
		return nil, shared.ErrApplicationNotFound
	}
	return r.app.Clone(), nil
}

func (r *stubApplicationRepo) GetByInternshipAndStudent(ctx context.Context, internshipID shared.InternshipID, studentID shared.StudentID) (*application.Application, error) {
	return nil, shared.ErrApplicationNotFound
}

func (r *stubApplicationRepo) Update(ctx context.Context, app *application.Application) error {
	return nil
}

func (r *stubApplicationRepo) Delete(ctx context.Context, id shared.ApplicationID) error {
	return nil
}

func (r *stubApplicationRepo) ListByStudent(ctx context.Context, studentID shared.StudentID, p shared.Pagination) ([]application.StudentView, int, error) {
	r.gotPagination = p
	return r.studentViews, len(r.studentViews), nil
}

func (r *stubApplicationRepo) ListByCompany(ctx context.Context, companyID shared.CompanyID, filter application.CompanyFilter, p shared.Pagination) ([]application.CompanyView, int, error) {
	r.gotFilter = filter
	r.gotPagination = p
	return r.companyViews, len(r.companyViews), nil
}

func (r *stubApplicationRepo) ListByInternship(ctx context.Context, internshipID shared.InternshipID, p shared.Pagination) ([]application.CompanyView, int, error) {
	r.gotPagination = p
	return r.companyViews, len(r.companyViews), nil
}

func (r *stubApplicationRepo) StatsByCompany(ctx context.Context, companyID shared.CompanyID) (application.CompanyStats, error) {
	return r.stats, nil
}

type stubInternshipRepo struct {
	posting *internship.Internship
}

func (r *stubInternshipRepo) GetByID(ctx context.Context, id shared.InternshipID) (*internship.Internship, error) {
	if r.posting == nil || r.posting.ID != id {
		return nil, shared.ErrInternshipNotFound
	}
	return r.posting, nil
}

func (r *stubInternshipRepo) Save(ctx context.Context, in *internship.Internship) error {
	return nil
}

func (r *stubInternshipRepo) UpdateReview(ctx context.Context, in *internship.Internship) error {
	return nil
}

func (r *stubInternshipRepo) IncrementApplications(ctx context.Context, id shared.InternshipID) error {
	return nil
}

func (r *stubInternshipRepo) ListByCompany(ctx context.Context, companyID shared.CompanyID) ([]*internship.Internship, error) {
	return nil, nil
}

type stubStudentDirectory struct {
	student *student.Student
}

func (d *stubStudentDirectory) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	if d.student == nil || d.student.ID != id {
		return nil, shared.ErrStudentNotFound
	}
	return d.student, nil
}

func (d *stubStudentDirectory) GetByUserID(ctx context.Context, userID shared.UserID) (*student.Student, error) {
	if d.student == nil || d.student.UserID != userID {
		return nil, shared.ErrStudentNotFound
	}
	return d.student, nil
}

func (d *stubStudentDirectory) Save(ctx context.Context, s *student.Student) error {
	return nil
}

func (d *stubStudentDirectory) ListWithAnySkill(ctx context.Context, skills shared.SkillSet) ([]*student.Student, error) {
	return nil, nil
}

type stubCompanyDirectory struct {
	company *company.Company
}

func (d *stubCompanyDirectory) GetByID(ctx context.Context, id shared.CompanyID) (*company.Company, error) {
	if d.company == nil || d.company.ID != id {
		return nil, shared.ErrCompanyNotFound
	}
	return d.company, nil
}

func (d *stubCompanyDirectory) GetByUserID(ctx context.Context, userID shared.UserID) (*company.Company, error) {
	if d.company == nil || d.company.UserID != userID {
		return nil, shared.ErrCompanyNotFound
	}
	return d.company, nil
}

func (d *stubCompanyDirectory) Save(ctx context.Context, c *company.Company) error {
	return nil
}

func (d *stubCompanyDirectory) UpdateVerification(ctx context.Context, c *company.Company) error {
	return nil
}

type stubNotificationRepo struct {
	notifications []*notification.Notification
	unread        int

	gotPagination shared.Pagination
}

func (r *stubNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	return nil
}

func (r *stubNotificationRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	return nil
}

func (r *stubNotificationRepo) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	return nil, shared.ErrNotificationNotFound
}

func (r *stubNotificationRepo) ListByUser(ctx context.Context, userID shared.UserID, p shared.Pagination) ([]*notification.Notification, int, error) {
	r.gotPagination = p
	return r.notifications, len(r.notifications), nil
}

func (r *stubNotificationRepo) MarkRead(ctx context.Context, id notification.NotificationID, userID shared.UserID) error {
	return nil
}

func (r *stubNotificationRepo) MarkAllRead(ctx context.Context, userID shared.UserID) (int, error) {
	return 0, nil
}

func (r *stubNotificationRepo) UnreadCount(ctx context.Context, userID shared.UserID) (int, error) {
	return r.unread, nil
}

func studentViewRow(n int) application.StudentView {
	return application.StudentView{
		ApplicationID:   shared.ApplicationID("11111111-1111-1111-1111-11111111111" + string(rune('0'+n))),
		InternshipID:    internshipID,
		InternshipTitle: "Backend Intern",
		CompanyName:     "Acme",
		Status:          application.StatusApplied,
		AppliedAt:       time.Now().UTC(),
	}
}

func companyViewRow(n int) application.CompanyView {
	return application.CompanyView{
		ApplicationID:   shared.ApplicationID("11111111-1111-1111-1111-11111111111" + string(rune('0'+n))),
		InternshipID:    internshipID,
		InternshipTitle: "Backend Intern",
		StudentID:       studentID,
		StudentName:     "Aliya Nur",
		Status:          application.StatusUnderReview,
		AppliedAt:       time.Now().UTC(),
	}
}
