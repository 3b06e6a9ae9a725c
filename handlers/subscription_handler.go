package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/newsletter/internal/observability"
	"github.com/upb/newsletter/middleware"
	"github.com/upb/newsletter/models"
	"github.com/upb/newsletter/repositories"
	"github.com/upb/newsletter/utils"
	"go.uber.org/zap"
)

// SubscribeForm is the url-encoded body of POST /subscriptions. Both keys
// must be present; empty values are accepted.
type SubscribeForm struct {
	Email *string `validate:"required"`
	Name  *string `validate:"required"`
}

// SubscriptionHandler handles subscription HTTP requests
type SubscriptionHandler struct {
	subscriptions repositories.SubscriptionRepository
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler. metrics may be nil.
func NewSubscriptionHandler(subscriptions repositories.SubscriptionRepository, metrics *observability.Metrics, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		metrics:       metrics,
		logger:        logger,
	}
}

// HandleSubscribe handles POST /subscriptions
func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	form, err := decodeSubscribeForm(r)
	if err != nil {
		observability.LoggerFromContextOr(r.Context(), h.logger).Warn("rejected subscription form", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid subscription form", utils.FieldDetails(err))
		return
	}

	utils.WriteEmpty(w, h.Subscribe(r.Context(), *form.Email, *form.Name))
}

// Subscribe stores one subscriber and returns the status to answer with.
// Every entry logged while it runs, including the repository's, carries the
// request's correlation id. The id set by RequestTracing is reused; a fresh
// one is generated when ctx has none.
func (h *SubscriptionHandler) Subscribe(ctx context.Context, email, name string) int {
	requestID := middleware.GetRequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx = observability.WithLogger(ctx, observability.LoggerFromContextOr(ctx, h.logger))
	ctx, span := observability.StartSpan(ctx, "Adding a new subscriber.",
		zap.String("request_id", requestID),
		zap.String("subscriber_email", email),
		zap.String("subscriber_name", name),
	)
	defer span.End()

	logger := span.Logger()
	logger.Info("adding new subscriber details")

	sub := models.NewSubscription(email, name)
	if err := h.save(ctx, sub); err != nil {
		logger.Error("failed to execute query", zap.Error(err))
		span.RecordError(err)
		h.metrics.RecordSubscription(observability.OutcomeFailed)
		return http.StatusInternalServerError
	}

	logger.Info("new subscriber details have been saved", zap.String("subscription_id", sub.ID.String()))
	h.metrics.RecordSubscription(observability.OutcomeCreated)
	return http.StatusOK
}

func (h *SubscriptionHandler) save(ctx context.Context, sub *models.Subscription) error {
	ctx, span := observability.StartSpan(ctx, "Saving new subscriber details in the database")
	defer span.End()

	err := h.subscriptions.Insert(ctx, sub)
	span.RecordError(err)
	return err
}

func decodeSubscribeForm(r *http.Request) (*SubscribeForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	form := &SubscribeForm{
		Email: utils.FormValue(r.PostForm, "email"),
		Name:  utils.FormValue(r.PostForm, "name"),
	}
	if err := utils.ValidateStruct(form); err != nil {
		return nil, err
	}
	return form, nil
}
