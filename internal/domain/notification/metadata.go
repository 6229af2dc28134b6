package notification

import (
	"encoding/json"
	"fmt"

	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// Metadata is the typed payload of a notification. Each notification type
// has one metadata shape; the union replaces the free-form map the inbox
// used to carry, so consumers no longer probe for keys.
type Metadata interface {
	// NotificationType names the notification type this payload belongs to.
	NotificationType() Type
}

// StatusUpdateMetadata accompanies Application_Status_Update notifications.
type StatusUpdateMetadata struct {
	OldStatus       string `json:"old_status"`
	NewStatus       string `json:"new_status"`
	Notes           string `json:"notes,omitempty"`
	InternshipTitle string `json:"internship_title"`
}

// NotificationType implements Metadata.
func (StatusUpdateMetadata) NotificationType() Type { return TypeApplicationStatusUpdate }

// NewApplicationMetadata accompanies New_Application notifications.
type NewApplicationMetadata struct {
	InternshipTitle string `json:"internship_title"`
	StudentName     string `json:"student_name"`
}

// NotificationType implements Metadata.
func (NewApplicationMetadata) NotificationType() Type { return TypeNewApplication }

// InternshipApprovalMetadata accompanies Internship_Approval notifications.
type InternshipApprovalMetadata struct {
	IsApproved bool   `json:"is_approved"`
	Reason     string `json:"reason,omitempty"`
}

// NotificationType implements Metadata.
func (InternshipApprovalMetadata) NotificationType() Type { return TypeInternshipApproval }

// CompanyVerificationMetadata accompanies Company_Verification notifications.
type CompanyVerificationMetadata struct {
	IsVerified bool   `json:"is_verified"`
	Reason     string `json:"reason,omitempty"`
}

// NotificationType implements Metadata.
func (CompanyVerificationMetadata) NotificationType() Type { return TypeCompanyVerification }

// SkillMatchMetadata accompanies Skill_Match notifications.
type SkillMatchMetadata struct {
	Skills  shared.SkillSet `json:"skills"`
	Company string          `json:"company"`
}

// NotificationType implements Metadata.
func (SkillMatchMetadata) NotificationType() Type { return TypeSkillMatch }

// SystemMetadata accompanies System and Promotional notifications.
type SystemMetadata struct {
	Campaign string `json:"campaign,omitempty"`
}

// NotificationType implements Metadata.
func (SystemMetadata) NotificationType() Type { return TypeSystem }

// EncodeMetadata serializes a metadata payload for storage. A nil payload
// encodes as nil.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, shared.WrapError("notification", "EncodeMetadata", shared.ErrInvalidFormat,
			"cannot serialize metadata", err)
	}
	return data, nil
}

// DecodeMetadata deserializes a stored payload into the shape fixed by the
// notification type. Empty payloads decode as nil.
func DecodeMetadata(t Type, data []byte) (Metadata, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var (
		m   Metadata
		err error
	)
	switch t {
	case TypeApplicationStatusUpdate:
		var v StatusUpdateMetadata
		err = json.Unmarshal(data, &v)
		m = v
	case TypeNewApplication:
		var v NewApplicationMetadata
		err = json.Unmarshal(data, &v)
		m = v
	case TypeInternshipApproval:
		var v InternshipApprovalMetadata
		err = json.Unmarshal(data, &v)
		m = v
	case TypeCompanyVerification:
		var v CompanyVerificationMetadata
		err = json.Unmarshal(data, &v)
		m = v
	case TypeSkillMatch:
		var v SkillMatchMetadata
		err = json.Unmarshal(data, &v)
		m = v
	case TypeSystem, TypePromotional:
		var v SystemMetadata
		err = json.Unmarshal(data, &v)
		m = v
	default:
		return nil, shared.NewDomainError("notification", "DecodeMetadata", shared.ErrInvalidInput,
			fmt.Sprintf("unknown notification type %q", t))
	}
	if err != nil {
		return nil, shared.WrapError("notification", "DecodeMetadata", shared.ErrInvalidFormat,
			fmt.Sprintf("cannot deserialize %s metadata", t), err)
	}
	return m, nil
}
