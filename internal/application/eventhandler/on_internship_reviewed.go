package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/internhub/internhub-backend/internal/domain/company"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
	"github.com/internhub/internhub-backend/internal/domain/student"
	"github.com/internhub/internhub-backend/pkg/retry"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON INTERNSHIP REVIEWED HANDLER
// Tells the poster about the review decision, and on approval fans a
// skill-match notification out to every student whose skills overlap the
// posting's requirements. The fan-out runs detached so a slow batch never
// blocks the event loop.
// ═══════════════════════════════════════════════════════════════════════════

// OnInternshipReviewedHandler handles the internship.reviewed event.
type OnInternshipReviewedHandler struct {
	internships   internship.Repository
	students      student.Directory
	companies     company.Directory
	notifications notification.Repository

	logger *slog.Logger
	config InternshipReviewedConfig
}

// InternshipReviewedConfig contains the handler configuration.
type InternshipReviewedConfig struct {
	// SkillMatchEnabled toggles the fan-out to matching students.
	SkillMatchEnabled bool

	// FanOutTimeout bounds the detached fan-out, matching and batch insert
	// included.
	FanOutTimeout time.Duration

	// MaxRecipients caps how many students one approval may notify.
	// Zero means no cap.
	MaxRecipients int
}

// DefaultInternshipReviewedConfig returns the default configuration.
func DefaultInternshipReviewedConfig() InternshipReviewedConfig {
	return InternshipReviewedConfig{
		SkillMatchEnabled: true,
		FanOutTimeout:     30 * time.Second,
		MaxRecipients:     0,
	}
}

// NewOnInternshipReviewedHandler creates a new handler.
func NewOnInternshipReviewedHandler(
	internships internship.Repository,
	students student.Directory,
	companies company.Directory,
	notifications notification.Repository,
	logger *slog.Logger,
	config InternshipReviewedConfig,
) *OnInternshipReviewedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnInternshipReviewedHandler{
		internships:   internships,
		students:      students,
		companies:     companies,
		notifications: notifications,
		logger:        logger.With("handler", "on_internship_reviewed"),
		config:        config,
	}
}

// Handle processes the internship reviewed event.
func (h *OnInternshipReviewedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	reviewed, ok := event.(shared.InternshipReviewedEvent)
	if !ok {
		h.logger.Warn("received non-InternshipReviewedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing internship reviewed event",
		"internship_id", reviewed.InternshipID,
		"approved", reviewed.Approved,
	)

	// 1. Tell the poster about the decision.
	if err := h.notifyPoster(ctx, reviewed); err != nil {
		h.logger.Error("failed to notify poster",
			"internship_id", reviewed.InternshipID,
			"error", err,
		)
	}

	// 2. On approval, fan out to students with matching skills.
	if reviewed.Approved && h.config.SkillMatchEnabled {
		go h.fanOutSkillMatches(reviewed)
	}

	return nil
}

// notifyPoster sends the approval/rejection notification to the posting's
// creator.
func (h *OnInternshipReviewedHandler) notifyPoster(ctx context.Context, reviewed shared.InternshipReviewedEvent) error {
	notif, err := notification.ForInternshipApproval(
		notification.NotificationID(uuid.NewString()),
		shared.UserID(reviewed.CreatedBy),
		shared.InternshipID(reviewed.InternshipID),
		reviewed.Title,
		reviewed.Approved,
		reviewed.Reason,
	)
	if err != nil {
		return fmt.Errorf("build notification: %w", err)
	}
	if err := h.notifications.Create(ctx, notif); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// fanOutSkillMatches notifies every student whose skills intersect the
// posting's requirements. Runs detached from the event loop; all failures
// are logged, never propagated.
func (h *OnInternshipReviewedHandler) fanOutSkillMatches(reviewed shared.InternshipReviewedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.FanOutTimeout)
	defer cancel()

	posting, err := h.internships.GetByID(ctx, shared.InternshipID(reviewed.InternshipID))
	if err != nil {
		h.logger.Error("skill match fan-out: failed to get internship",
			"internship_id", reviewed.InternshipID,
			"error", err,
		)
		return
	}
	if len(posting.SkillsRequired) == 0 {
		h.logger.Debug("skill match fan-out: posting requires no skills",
			"internship_id", reviewed.InternshipID,
		)
		return
	}

	companyName := ""
	if owner, err := h.companies.GetByID(ctx, shared.CompanyID(reviewed.CompanyID)); err == nil {
		companyName = owner.Name
	} else {
		h.logger.Warn("skill match fan-out: failed to get company",
			"company_id", reviewed.CompanyID,
			"error", err,
		)
	}

	matches, err := h.students.ListWithAnySkill(ctx, posting.SkillsRequired)
	if err != nil {
		h.logger.Error("skill match fan-out: failed to list matching students",
			"internship_id", reviewed.InternshipID,
			"error", err,
		)
		return
	}
	if h.config.MaxRecipients > 0 && len(matches) > h.config.MaxRecipients {
		matches = matches[:h.config.MaxRecipients]
	}
	if len(matches) == 0 {
		h.logger.Info("skill match fan-out: no matching students",
			"internship_id", reviewed.InternshipID,
		)
		return
	}

	batch := make([]*notification.Notification, 0, len(matches))
	for _, matched := range matches {
		notif, err := notification.ForSkillMatch(
			notification.NotificationID(uuid.NewString()),
			matched.UserID,
			posting.ID,
			posting.Title,
			companyName,
			posting.SkillsRequired,
		)
		if err != nil {
			h.logger.Error("skill match fan-out: failed to build notification",
				"student_id", matched.ID,
				"error", err,
			)
			continue
		}
		batch = append(batch, notif)
	}
	if len(batch) == 0 {
		return
	}

	// The batch insert is the only write; retry it with backoff.
	retrier := retry.FanOutRetrier()
	err = retrier.Do(ctx, func(ctx context.Context) error {
		if err := h.notifications.CreateBatch(ctx, batch); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	if err != nil {
		h.logger.Error("skill match fan-out: failed to create notifications",
			"internship_id", reviewed.InternshipID,
			"recipients", len(batch),
			"error", err,
		)
		return
	}

	h.logger.Info("skill match fan-out complete",
		"internship_id", reviewed.InternshipID,
		"recipients", len(batch),
	)
}

// EventType returns the event type this handler processes.
func (h *OnInternshipReviewedHandler) EventType() shared.EventType {
	return shared.EventInternshipReviewed
}
