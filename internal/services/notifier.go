package services

import (
	"context"

	"go.uber.org/zap"

	"traqcheck/candidate-onboarding/internal/logger"
	"traqcheck/candidate-onboarding/internal/models"
)

// Notifier delivers a composed request. Delivery is best effort and never fails the
// workflow that triggered it.
type Notifier interface {
	Notify(ctx context.Context, candidate *models.Candidate, request *models.DocumentRequest)
}

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier records requests in the log instead of sending them.
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, candidate *models.Candidate, request *models.DocumentRequest) {
	recipient := ""
	switch request.Channel {
	case models.ChannelEmail:
		recipient = valueOr(candidate.Email, "")
	case models.ChannelSMS:
		recipient = valueOr(candidate.Phone, "")
	}
	logger.ForCandidate(n.logger, candidate.ID).Info("document request ready for delivery",
		zap.String("request_id", request.ID.String()),
		zap.String("channel", string(request.Channel)),
		zap.String("recipient", recipient),
		zap.String("preview", logger.Preview(request.RequestMessage, 80)),
	)
}
