// internal/workers/communication/send-notification/models.go
package sendnotification

import "studyabroad-workers/internal/models"

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	NotificationType string                 `json:"notificationType"`
	SessionID        string                 `json:"sessionId,omitempty"`
	UniversityID     string                 `json:"universityId,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeRecommendationReady = models.NotificationRecommendationReady
	TypePredictionReady     = models.NotificationPredictionReady
	TypeCostReportReady     = models.NotificationCostReportReady
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
