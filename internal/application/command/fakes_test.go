package command

import (
	"context"
	"sync"

	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
)

// In-memory fakes backing the command handler tests. They mimic the
// documented repository contracts: the unique pair index, the optimistic
// version check, and not-found errors.

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[shared.ApplicationID]*application.Application

	failCreate error
	failUpdate error
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[shared.ApplicationID]*application.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.apps {
		if existing.InternshipID == app.InternshipID && existing.StudentID == app.StudentID {
			return shared.ErrAlreadyApplied
		}
	}
	r.apps[app.ID] = app.Clone()
	return nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id shared.ApplicationID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, shared.ErrApplicationNotFound
	}
	return app.Clone(), nil
}

func (r *fakeApplicationRepo) GetByInternshipAndStudent(ctx context.Context, internshipID shared.InternshipID, studentID shared.StudentID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.InternshipID == internshipID && app.StudentID == studentID {
			return app.Clone(), nil
		}
	}
	return nil, shared.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) Update(ctx context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	stored, ok := r.apps[app.ID]
	if !ok {
		return shared.ErrApplicationNotFound
	}
	if stored.Version != app.Version {
		return shared.ErrConcurrentModification
	}
	app.Version++
	r.apps[app.ID] = app.Clone()
	return nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, id shared.ApplicationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return shared.ErrApplicationNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeApplicationRepo) ListByStudent(ctx context.Context, studentID shared.StudentID, p shared.Pagination) ([]application.StudentView, int, error) {
	return nil, 0, nil
}

func (r *fakeApplicationRepo) ListByCompany(ctx context.Context, companyID shared.CompanyID, filter application.CompanyFilter, p shared.Pagination) ([]application.CompanyView, int, error) {
	return nil, 0, nil
}

func (r *fakeApplicationRepo) ListByInternship(ctx context.Context, internshipID shared.InternshipID, p shared.Pagination) ([]application.CompanyView, int, error) {
	return nil, 0, nil
}

func (r *fakeApplicationRepo) StatsByCompany(ctx context.Context, companyID shared.CompanyID) (application.CompanyStats, error) {
	return application.CompanyStats{}, nil
}

func (r *fakeApplicationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apps)
}

type fakeInternshipRepo struct {
	mu       sync.Mutex
	postings map[shared.InternshipID]*internship.Internship
}

func newFakeInternshipRepo() *fakeInternshipRepo {
	return &fakeInternshipRepo{postings: make(map[shared.InternshipID]*internship.Internship)}
}

func (r *fakeInternshipRepo) add(in *internship.Internship) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.postings[in.ID] = in
}

func (r *fakeInternshipRepo) GetByID(ctx context.Context, id shared.InternshipID) (*internship.Internship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.postings[id]
	if !ok {
		return nil, shared.ErrInternshipNotFound
	}
	return in.Clone(), nil
}

func (r *fakeInternshipRepo) Save(ctx context.Context, in *internship.Internship) error {
	r.add(in.Clone())
	return nil
}

func (r *fakeInternshipRepo) UpdateReview(ctx context.Context, in *internship.Internship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.postings[in.ID]; !ok {
		return shared.ErrInternshipNotFound
	}
	r.postings[in.ID] = in.Clone()
	return nil
}

func (r *fakeInternshipRepo) IncrementApplications(ctx context.Context, id shared.InternshipID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	in, ok := r.postings[id]
	if !ok {
		return shared.ErrInternshipNotFound
	}
	in.ApplicationsCount++
	return nil
}

func (r *fakeInternshipRepo) ListByCompany(ctx context.Context, companyID shared.CompanyID) ([]*internship.Internship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*internship.Internship
	for _, in := range r.postings {
		if in.CompanyID == companyID {
			out = append(out, in.Clone())
		}
	}
	return out, nil
}

type fakeStudentDirectory struct {
	students map[shared.StudentID]*student.Student
}

func newFakeStudentDirectory(students ...*student.Student) *fakeStudentDirectory {
	d := &fakeStudentDirectory{students: make(map[shared.StudentID]*student.Student)}
	for _, s := range students {
		d.students[s.ID] = s
	}
	return d
}

func (d *fakeStudentDirectory) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	s, ok := d.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s, nil
}

func (d *fakeStudentDirectory) GetByUserID(ctx context.Context, userID shared.UserID) (*student.Student, error) {
	for _, s := range d.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (d *fakeStudentDirectory) Save(ctx context.Context, s *student.Student) error {
	d.students[s.ID] = s
	return nil
}

func (d *fakeStudentDirectory) ListWithAnySkill(ctx context.Context, skills shared.SkillSet) ([]*student.Student, error) {
	var out []*student.Student
	for _, s := range d.students {
		if s.HasAnySkill(skills) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeCompanyDirectory struct {
	companies map[shared.CompanyID]*company.Company
}

func newFakeCompanyDirectory(companies ...*company.Company) *fakeCompanyDirectory {
	d := &fakeCompanyDirectory{companies: make(map[shared.CompanyID]*company.Company)}
	for _, c := range companies {
		d.companies[c.ID] = c
	}
	return d
}

func (d *fakeCompanyDirectory) GetByID(ctx context.Context, id shared.CompanyID) (*company.Company, error) {
	c, ok := d.companies[id]
	if !ok {
		return nil, shared.ErrCompanyNotFound
	}
	return c, nil
}

func (d *fakeCompanyDirectory) GetByUserID(ctx context.Context, userID shared.UserID) (*company.Company, error) {
	for _, c := range d.companies {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, shared.ErrCompanyNotFound
}

func (d *fakeCompanyDirectory) Save(ctx context.Context, c *company.Company) error {
	d.companies[c.ID] = c
	return nil
}

func (d *fakeCompanyDirectory) UpdateVerification(ctx context.Context, c *company.Company) error {
	if _, ok := d.companies[c.ID]; !ok {
		return shared.ErrCompanyNotFound
	}
	d.companies[c.ID] = c
	return nil
}

type fakeNotificationRepo struct {
	notifications map[notification.NotificationID]*notification.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[notification.NotificationID]*notification.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	r.notifications[n.ID] = n
	return nil
}

func (r *fakeNotificationRepo) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	for _, n := range ns {
		r.notifications[n.ID] = n
	}
	return nil
}

func (r *fakeNotificationRepo) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, shared.ErrNotificationNotFound
	}
	return n, nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID shared.UserID, p shared.Pagination) ([]*notification.Notification, int, error) {
	var out []*notification.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id notification.NotificationID, userID shared.UserID) error {
	n, ok := r.notifications[id]
	if !ok || !n.BelongsTo(userID) {
		return shared.ErrNotificationNotFound
	}
	n.MarkRead()
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID shared.UserID) (int, error) {
	updated := 0
	for _, n := range r.notifications {
		if n.BelongsTo(userID) && !n.IsRead {
			n.MarkRead()
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) UnreadCount(ctx context.Context, userID shared.UserID) (int, error) {
	count := 0
	for _, n := range r.notifications {
		if n.BelongsTo(userID) && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// capturePublisher records published events for assertions. When fail is set
// every Publish call returns it without recording the event.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
	fail   error
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) published() []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.Event(nil), p.events...)
}
