package worker

import (
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartSessionSync keeps signed-in session copies in step with account
// changes.
func StartSessionSync(sessions *service.SessionManager, dispatcher events.Dispatcher) {
	if sessions == nil {
		return
	}
	sessions.RegisterHandlers(dispatcher)
}
