package eventhandler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

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

// inboxRecorder collects notification writes. The skill-match fan-out runs on
// its own goroutine, so every method is safe for concurrent use and the tests
// poll with Eventually.
type inboxRecorder struct {
	mu      sync.Mutex
	inbox   []*notification.Notification
	failAll error
}

func (r *inboxRecorder) Create(ctx context.Context, n *notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.inbox = append(r.inbox, n)
	return nil
}

func (r *inboxRecorder) CreateBatch(ctx context.Context, ns []*notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return r.failAll
	}
	r.inbox = append(r.inbox, ns...)
	return nil
}

func (r *inboxRecorder) GetByID(ctx context.Context, id notification.NotificationID) (*notification.Notification, error) {
	return nil, shared.ErrNotificationNotFound
}

func (r *inboxRecorder) ListByUser(ctx context.Context, userID shared.UserID, p shared.Pagination) ([]*notification.Notification, int, error) {
	return nil, 0, nil
}

func (r *inboxRecorder) MarkRead(ctx context.Context, id notification.NotificationID, userID shared.UserID) error {
	return nil
}

func (r *inboxRecorder) MarkAllRead(ctx context.Context, userID shared.UserID) (int, error) {
	return 0, nil
}

func (r *inboxRecorder) UnreadCount(ctx context.Context, userID shared.UserID) (int, error) {
	return 0, nil
}

func (r *inboxRecorder) all() []*notification.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*notification.Notification(nil), r.inbox...)
}

func (r *inboxRecorder) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inbox)
}

type postingStore struct {
	mu       sync.Mutex
	postings map[shared.InternshipID]*internship.Internship
}

func newPostingStore(postings ...*internship.Internship) *postingStore {
	s := &postingStore{postings: make(map[shared.InternshipID]*internship.Internship)}
	for _, p := range postings {
		s.postings[p.ID] = p
	}
	return s
}

func (s *postingStore) GetByID(ctx context.Context, id shared.InternshipID) (*internship.Internship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postings[id]
	if !ok {
		return nil, shared.ErrInternshipNotFound
	}
	return p, nil
}

func (s *postingStore) Save(ctx context.Context, in *internship.Internship) error { return nil }

func (s *postingStore) UpdateReview(ctx context.Context, in *internship.Internship) error {
	return nil
}

func (s *postingStore) IncrementApplications(ctx context.Context, id shared.InternshipID) error {
	return nil
}

func (s *postingStore) ListByCompany(ctx context.Context, companyID shared.CompanyID) ([]*internship.Internship, error) {
	return nil, nil
}

type studentStore struct {
	students []*student.Student
}

func (s *studentStore) GetByID(ctx context.Context, id shared.StudentID) (*student.Student, error) {
	for _, st := range s.students {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (s *studentStore) GetByUserID(ctx context.Context, userID shared.UserID) (*student.Student, error) {
	for _, st := range s.students {
		if st.UserID == userID {
			return st, nil
		}
	}
	return nil, shared.ErrStudentNotFound
}

func (s *studentStore) Save(ctx context.Context, st *student.Student) error { return nil }

func (s *studentStore) ListWithAnySkill(ctx context.Context, skills shared.SkillSet) ([]*student.Student, error) {
	var out []*student.Student
	for _, st := range s.students {
		if st.HasAnySkill(skills) {
			out = append(out, st)
		}
	}
	return out, nil
}

type companyStore struct {
	companies []*company.Company
}

func (s *companyStore) GetByID(ctx context.Context, id shared.CompanyID) (*company.Company, error) {
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrCompanyNotFound
}

func (s *companyStore) GetByUserID(ctx context.Context, userID shared.UserID) (*company.Company, error) {
	for _, c := range s.companies {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, shared.ErrCompanyNotFound
}

func (s *companyStore) Save(ctx context.Context, c *company.Company) error { return nil }

func (s *companyStore) UpdateVerification(ctx context.Context, c *company.Company) error {
	return nil
}

func testPosting(t *testing.T, skills ...string) *internship.Internship {
	t.Helper()
	posting, err := internship.NewInternship(internship.NewInternshipParams{
		ID:                  shared.InternshipID(internshipID),
		CompanyID:           shared.CompanyID(companyID),
		CreatedBy:           shared.UserID(companyUserID),
		Title:               "Backend Intern",
		ApplicationDeadline: time.Now().UTC().Add(7 * 24 * time.Hour),
		SkillsRequired:      shared.SkillSet(skills),
	})
	require.NoError(t, err)
	return posting
}

func testStudent(t *testing.T, id shared.StudentID, userID shared.UserID, skills ...string) *student.Student {
	t.Helper()
	st, err := student.NewStudent(student.NewStudentParams{
		ID:        id,
		UserID:    userID,
		FirstName: "Aliya",
		LastName:  "Nur",
		Skills:    shared.SkillSet(skills),
	})
	require.NoError(t, err)
	return st
}

func testCompany(t *testing.T) *company.Company {
	t.Helper()
	c, err := company.NewCompany(company.NewCompanyParams{
		ID:     shared.CompanyID(companyID),
		UserID: shared.UserID(companyUserID),
		Name:   "Acme",
	})
	require.NoError(t, err)
	return c
}
