// Package notification contains the in-app notification model. Notifications
// are created by event handlers reacting to application, internship and
// company events, and read back through the inbox queries. Delivery
// transports (email, push) are out of scope; rows in storage are the product.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// NotificationID represents a unique notification identifier.
type NotificationID string

// IsValid checks that the ID is not empty.
func (id NotificationID) IsValid() bool {
	return len(id) > 0
}

// String returns the string representation.
func (id NotificationID) String() string {
	return string(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION TYPE
// ══════════════════════════════════════════════════════════════════════════════

// Type classifies a notification. The values are stored as-is.
type Type string

const (
	// TypeApplicationStatusUpdate - a student's application changed status.
	TypeApplicationStatusUpdate Type = "Application_Status_Update"

	// TypeNewApplication - a company's posting received an application.
	TypeNewApplication Type = "New_Application"

	// TypeInternshipApproval - an admin approved or rejected a posting.
	TypeInternshipApproval Type = "Internship_Approval"

	// TypeCompanyVerification - an admin verified or rejected a company.
	TypeCompanyVerification Type = "Company_Verification"

	// TypeSkillMatch - an approved posting matches the student's skills.
	TypeSkillMatch Type = "Skill_Match"

	// TypeSystem - operational announcement.
	TypeSystem Type = "System"

	// TypePromotional - marketing message.
	TypePromotional Type = "Promotional"
)

// IsValid checks that the notification type is a known value.
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationStatusUpdate,
		TypeNewApplication,
		TypeInternshipApproval,
		TypeCompanyVerification,
		TypeSkillMatch,
		TypeSystem,
		TypePromotional:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Type) String() string { return string(t) }

// RelatedEntityType names the kind of entity a notification points at.
type RelatedEntityType string

const (
	RelatedApplication RelatedEntityType = "Application"
	RelatedInternship  RelatedEntityType = "Internship"
	RelatedCompany     RelatedEntityType = "Company"
	RelatedNone        RelatedEntityType = "None"
)

// IsValid checks that the related entity type is a known value.
func (r RelatedEntityType) IsValid() bool {
	switch r {
	case RelatedApplication, RelatedInternship, RelatedCompany, RelatedNone:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: NOTIFICATION
// ══════════════════════════════════════════════════════════════════════════════

// Notification is one inbox entry for one user.
type Notification struct {
	// ID - unique notification identifier (UUID in string form).
	ID NotificationID

	// UserID - recipient account.
	UserID shared.UserID

	// Title - short headline shown in the inbox list.
	Title string

	// Message - full text.
	Message string

	// Type - notification classification.
	Type Type

	// RelatedEntityType and RelatedEntityID point at the entity the
	// notification is about, so clients can deep-link.
	RelatedEntityType RelatedEntityType
	RelatedEntityID   string

	// Metadata - typed payload whose shape is fixed by Type.
	Metadata Metadata

	// IsRead - whether the recipient opened the notification.
	IsRead bool

	// ReadAt - when it was opened, zero while unread.
	ReadAt time.Time

	// CreatedAt - creation time.
	CreatedAt time.Time
}

// NewNotificationParams holds the fields needed to create a notification.
type NewNotificationParams struct {
	ID                NotificationID
	UserID            shared.UserID
	Title             string
	Message           string
	Type              Type
	RelatedEntityType RelatedEntityType
	RelatedEntityID   string
	Metadata          Metadata
}

// NewNotification creates an unread notification with validation. The
// metadata, when present, must belong to the declared type.
func NewNotification(params NewNotificationParams) (*Notification, error) {
	if !params.ID.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidID, "invalid notification ID")
	}
	if !params.UserID.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidID, "invalid recipient user ID")
	}
	if !params.Type.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidInput,
			fmt.Sprintf("unknown notification type %q", params.Type))
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrEmptyValue, "title is required")
	}
	message := strings.TrimSpace(params.Message)
	if message == "" {
		return nil, shared.NewDomainError("notification", "New", shared.ErrEmptyValue, "message is required")
	}

	related := params.RelatedEntityType
	if related == "" {
		related = RelatedNone
	}
	if !related.IsValid() {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidInput,
			fmt.Sprintf("unknown related entity type %q", params.RelatedEntityType))
	}

	if params.Metadata != nil && params.Metadata.NotificationType() != params.Type {
		return nil, shared.NewDomainError("notification", "New", shared.ErrInvalidInput,
			fmt.Sprintf("metadata for %q attached to a %q notification",
				params.Metadata.NotificationType(), params.Type))
	}

	return &Notification{
		ID:                params.ID,
		UserID:            params.UserID,
		Title:             title,
		Message:           message,
		Type:              params.Type,
		RelatedEntityType: related,
		RelatedEntityID:   params.RelatedEntityID,
		Metadata:          params.Metadata,
		IsRead:            false,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// MarkRead marks the notification as opened. Marking twice is a no-op.
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = time.Now().UTC()
}

// BelongsTo reports whether the notification is addressed to the account.
func (n *Notification) BelongsTo(userID shared.UserID) bool {
	return n.UserID == userID
}

// String returns a compact representation for logging.
func (n *Notification) String() string {
	return fmt.Sprintf("Notification{ID: %s, User: %s, Type: %s, Read: %t}", n.ID, n.UserID, n.Type, n.IsRead)
}
