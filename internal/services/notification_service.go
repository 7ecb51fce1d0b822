// internal/services/notification_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	NotificationApplication = "application"
	NotificationInterview   = "interview"
	NotificationAssignment  = "assignment"
	NotificationTask        = "task"
	NotificationSubmission  = "submission"
)

// Notifier delivers best-effort notices after a state change has committed.
// Delivery failures never undo the change.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type Notification struct {
	UserID  uuid.UUID              `json:"user_id"`
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// NotificationService logs every notice and, when a Redis client is
// configured, publishes it on the recipient's channel.
type NotificationService struct {
	redis  *redis.Client
	logger *logrus.Logger
}

func NewNotificationService(client *redis.Client, logger *logrus.Logger) *NotificationService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotificationService{
		redis:  client,
		logger: logger,
	}
}

func NotificationChannel(userID uuid.UUID) string {
	return fmt.Sprintf("placement:notifications:%s", userID)
}

func (s *NotificationService) Notify(ctx context.Context, n Notification) {
	if n.UserID == uuid.Nil {
		return
	}

	entry := s.logger.WithFields(logrus.Fields{
		"user_id": n.UserID,
		"type":    n.Type,
		"title":   n.Title,
	})
	entry.Info(n.Message)

	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		entry.WithError(err).Warn("Failed to encode notification")
		return
	}
	if err := s.redis.Publish(ctx, NotificationChannel(n.UserID), payload).Err(); err != nil {
		entry.WithError(err).Warn("Failed to publish notification")
	}
}

// Notification builders

func applicationSubmittedNotice(hodID, applicationID uuid.UUID, studentName string) Notification {
	return Notification{
		UserID:  hodID,
		Type:    NotificationApplication,
		Title:   "New application",
		Message: fmt.Sprintf("%s submitted an application", studentName),
		Data:    map[string]interface{}{"application_id": applicationID},
	}
}

func applicationStatusNotice(studentID, applicationID uuid.UUID, text string) Notification {
	return Notification{
		UserID:  studentID,
		Type:    NotificationApplication,
		Title:   "Application updated",
		Message: text,
		Data:    map[string]interface{}{"application_id": applicationID},
	}
}

func interviewNotice(studentID, interviewID uuid.UUID, text string) Notification {
	return Notification{
		UserID:  studentID,
		Type:    NotificationInterview,
		Title:   "Interview",
		Message: text,
		Data:    map[string]interface{}{"interview_id": interviewID},
	}
}

func assignmentNotice(userID, assignmentID uuid.UUID, text string) Notification {
	return Notification{
		UserID:  userID,
		Type:    NotificationAssignment,
		Title:   "Project assignment",
		Message: text,
		Data:    map[string]interface{}{"assignment_id": assignmentID},
	}
}

func taskNotice(userID, assignmentID, taskID uuid.UUID, kind, text string) Notification {
	return Notification{
		UserID:  userID,
		Type:    kind,
		Title:   "Task update",
		Message: text,
		Data: map[string]interface{}{
			"assignment_id": assignmentID,
			"task_id":       taskID,
		},
	}
}

// noopNotifier drops every notice.
type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) {}
