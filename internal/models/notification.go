// internal/models/notification.go
package models

// Notification types emitted by the recommendation workflows.
const (
	NotificationRecommendationReady = "recommendation_ready"
	NotificationPredictionReady     = "prediction_ready"
	NotificationCostReportReady     = "cost_report_ready"
)

type Notification struct {
	NotificationID string `json:"notificationId"`
	RecipientID    string `json:"recipientId"`
	Type           string `json:"type"`
	Channel        string `json:"channel"` // email or sms
	Status         string `json:"status"`
	SentAt         string `json:"sentAt"`
}
