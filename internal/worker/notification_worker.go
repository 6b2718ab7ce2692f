package worker

import (
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/service"
)

// StartEventWorkers subscribes the notification and report-cache handlers to ledger events.
func StartEventWorkers(dispatcher events.Dispatcher, notifications *service.NotificationService, reports *service.ReportService) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if reports != nil {
		reports.RegisterHandlers(dispatcher)
	}
}
