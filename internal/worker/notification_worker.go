package worker

import (
	"github.com/spec-kit/helpdesk/internal/notification"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *notification.Service) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
