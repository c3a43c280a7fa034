// Package alert reports faults that need operator attention, as opposed to
// expected pipeline outcomes like a duplicate upload.
package alert

import "github.com/obelow/aria/internal/logger"

// Reporter receives system faults. Expected outcomes (cancelled uploads,
// duplicate files) never go through here.
type Reporter interface {
	Report(err error, fields map[string]any)
}

// LogReporter writes alerts to the structured log at error level.
type LogReporter struct {
	log *logger.Logger
}

func NewLogReporter(log *logger.Logger) *LogReporter {
	return &LogReporter{log: log.WithComponent("alert")}
}

func (r *LogReporter) Report(err error, fields map[string]any) {
	args := make([]any, 0, len(fields)*2+2)
	args = append(args, "error", err)
	for k, v := range fields {
		args = append(args, k, v)
	}
	r.log.Error("alert", args...)
}
