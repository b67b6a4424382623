package ports

import (
	"context"
	"flight-price-service/internal/domain"
)

// Delivers the report for a completed sweep. Failures never affect the sweep.
type ReportSender interface {
	SendReport(ctx context.Context, result *domain.SweepResult) error
	SendFailure(ctx context.Context, subject, message string) error
}
