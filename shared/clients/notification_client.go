package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"approvalflow-backend/shared/config"
)

// NotificationClient handles communication with the notification service.
// All sends are best effort: a push failure never fails the workflow
// transaction that triggered it.
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNotificationClient creates a new notification client
func NewNotificationClient() *NotificationClient {
	cfg := config.GetConfig()
	return &NotificationClient{
		baseURL: cfg.NotificationServiceURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ApprovalEventMessage is the websocket payload pushed to a user.
type ApprovalEventMessage struct {
	Type        string `json:"type"` // "approval_assigned", "approval_decided"
	RequestID   string `json:"request_id"`
	RequestType string `json:"request_type"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	Timestamp   string `json:"timestamp"`
}

// SendMessageRequest is the envelope posted to the notification service.
type SendMessageRequest struct {
	UserID  string                `json:"user_id"`
	Message *ApprovalEventMessage `json:"message"`
}

// NotifyAssignment tells a checker a pending request landed in their queue.
func (nc *NotificationClient) NotifyAssignment(checkerID, requestID, requestType, title string) error {
	return nc.send(checkerID, &ApprovalEventMessage{
		Type:        "approval_assigned",
		RequestID:   requestID,
		RequestType: requestType,
		Title:       title,
		Status:      "PENDING",
		Message:     fmt.Sprintf("New approval request assigned to you: %s", title),
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

// NotifyDecision tells a maker their request was approved or rejected.
func (nc *NotificationClient) NotifyDecision(makerID, requestID, requestType, title, status, remarks string) error {
	return nc.send(makerID, &ApprovalEventMessage{
		Type:        "approval_decided",
		RequestID:   requestID,
		RequestType: requestType,
		Title:       title,
		Status:      status,
		Message:     fmt.Sprintf("Your request '%s' was %s. %s", title, status, remarks),
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}

func (nc *NotificationClient) send(userID string, message *ApprovalEventMessage) error {
	payload := SendMessageRequest{
		UserID:  userID,
		Message: message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %v", err)
	}

	resp, err := nc.httpClient.Post(
		fmt.Sprintf("%s/ws/send", nc.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to send notification: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification service returned status: %d", resp.StatusCode)
	}

	return nil
}
