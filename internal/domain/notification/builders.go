package notification

import (
	"fmt"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// Builders assemble notifications with the standard titles and messages for
// each type, so every event handler produces identical wording.

// statusMessages maps a new application status to the message shown to the
// student. Statuses not in the table fall back to a generic line.
var statusMessages = map[string]string{
	"Under Review":        "Your application is under review",
	"Shortlisted":         "Congratulations! Your application has been shortlisted",
	"Interview Scheduled": "Interview has been scheduled for your application",
	"Rejected":            "Your application has been rejected",
	"Offer Extended":      "Congratulations! Offer has been extended",
	"Accepted":            "You have accepted the offer",
	"Withdrawn":           "You have withdrawn your application",
}

// StatusMessage returns the inbox message for a transition into the given
// status.
func StatusMessage(newStatus string) string {
	if msg, ok := statusMessages[newStatus]; ok {
		return msg
	}
	return fmt.Sprintf("Your application status has been updated to %s.", newStatus)
}

// ForStatusUpdate builds the notification sent to a student whose application
// changed status.
func ForStatusUpdate(id NotificationID, userID shared.UserID, applicationID shared.ApplicationID, internshipTitle, oldStatus, newStatus, notes string) (*Notification, error) {
	return NewNotification(NewNotificationParams{
		ID:                id,
		UserID:            userID,
		Title:             fmt.Sprintf("Application Status Updated: %s", newStatus),
		Message:           StatusMessage(newStatus),
		Type:              TypeApplicationStatusUpdate,
		RelatedEntityType: RelatedApplication,
		RelatedEntityID:   applicationID.String(),
		Metadata: StatusUpdateMetadata{
			OldStatus:       oldStatus,
			NewStatus:       newStatus,
			Notes:           notes,
			InternshipTitle: internshipTitle,
		},
	})
}

// ForNewApplication builds the notification sent to the posting's creator
// when a student applies.
func ForNewApplication(id NotificationID, userID shared.UserID, applicationID shared.ApplicationID, internshipTitle, studentName string) (*Notification, error) {
	if studentName == "" {
		studentName = "A student"
	}
	return NewNotification(NewNotificationParams{
		ID:                id,
		UserID:            userID,
		Title:             "New Application Received",
		Message:           fmt.Sprintf("A student has applied for your internship %q.", internshipTitle),
		Type:              TypeNewApplication,
		RelatedEntityType: RelatedApplication,
		RelatedEntityID:   applicationID.String(),
		Metadata: NewApplicationMetadata{
			InternshipTitle: internshipTitle,
			StudentName:     studentName,
		},
	})
}

// ForInternshipApproval builds the notification sent to the posting's creator
// after an admin review.
func ForInternshipApproval(id NotificationID, userID shared.UserID, internshipID shared.InternshipID, title string, approved bool, reason string) (*Notification, error) {
	var notifTitle, message string
	if approved {
		notifTitle = "Internship Approved"
		message = fmt.Sprintf("Your internship %q has been approved and is now live.", title)
	} else {
		notifTitle = "Internship Rejected"
		message = fmt.Sprintf("Your internship %q was rejected. %s", title, reason)
	}
	return NewNotification(NewNotificationParams{
		ID:                id,
		UserID:            userID,
		Title:             notifTitle,
		Message:           message,
		Type:              TypeInternshipApproval,
		RelatedEntityType: RelatedInternship,
		RelatedEntityID:   internshipID.String(),
		Metadata: InternshipApprovalMetadata{
			IsApproved: approved,
			Reason:     reason,
		},
	})
}

// ForCompanyVerification builds the notification sent to a company's account
// after an admin verification decision.
func ForCompanyVerification(id NotificationID, userID shared.UserID, companyID shared.CompanyID, verified bool, reason string) (*Notification, error) {
	var title, message string
	if verified {
		title = "Company Verified Successfully"
		message = "Your company has been verified and you can now post internships."
	} else {
		title = "Company Verification Rejected"
		message = fmt.Sprintf("Your company verification was rejected. %s", reason)
	}
	return NewNotification(NewNotificationParams{
		ID:                id,
		UserID:            userID,
		Title:             title,
		Message:           message,
		Type:              TypeCompanyVerification,
		RelatedEntityType: RelatedCompany,
		RelatedEntityID:   companyID.String(),
		Metadata: CompanyVerificationMetadata{
			IsVerified: verified,
			Reason:     reason,
		},
	})
}

// ForSkillMatch builds the notification sent to a student whose skills match
// a newly approved posting.
func ForSkillMatch(id NotificationID, userID shared.UserID, internshipID shared.InternshipID, title, companyName string, skills shared.SkillSet) (*Notification, error) {
	return NewNotification(NewNotificationParams{
		ID:                id,
		UserID:            userID,
		Title:             "New Internship Matching Your Skills",
		Message:           fmt.Sprintf("A new internship %q requires skills that match your profile.", title),
		Type:              TypeSkillMatch,
		RelatedEntityType: RelatedInternship,
		RelatedEntityID:   internshipID.String(),
		Metadata: SkillMatchMetadata{
			Skills:  skills,
			Company: companyName,
		},
	})
}
