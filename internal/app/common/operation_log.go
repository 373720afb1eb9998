package common

import (
	"context"
	"time"

	"optitech/internal/domain/model"
	"optitech/internal/infra/logging"
)

const (
	ActionSetStartupType = "set_startup_type"
	ActionSkip           = "skip"
)

// LogServiceItem records the outcome of one service in the operation log.
func LogServiceItem(ctx context.Context, logger logging.Logger, planID, command, action string, dryRun bool, item model.ServiceItem) error {
	entry := model.OperationLogEntry{
		Timestamp: time.Now().UTC(),
		PlanID:    planID,
		Command:   command,
		Action:    action,
		Service:   item.Service,
		From:      item.Current,
		To:        item.Target,
		Risk:      item.Risk,
		Result:    item.Result,
		Error:     item.Error,
		DryRun:    dryRun,
	}
	if entry.Action == "" {
		entry.Action = ActionSkip
	}
	if entry.Result == "" {
		entry.Result = model.ResultSkipped
	}
	return logger.Log(ctx, entry)
}
