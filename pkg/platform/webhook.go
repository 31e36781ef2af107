package platform

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/trademate/supportdesk/pkg/advice"
	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/debug"
	"github.com/trademate/supportdesk/pkg/observability"
	"github.com/trademate/supportdesk/pkg/storage"
)

const (
	hubModeSubscribe = "subscribe"
	signaturePrefix  = "sha256="
	webhookAck       = "WhatsApp message processed successfully"
)

// VerifyWebhook answers the WhatsApp subscription handshake. It returns the
// challenge as an integer when mode is "subscribe" and token matches the
// partner's verify token, which defaults to the partner ID followed by
// Config.VerifyTokenSuffix.
func (s *Service) VerifyWebhook(ctx context.Context, partnerID, mode, token, challenge string) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "platform.VerifyWebhook", partnerAttr(partnerID))
	defer span.End()

	if !api.ValidatePartnerID(partnerID) {
		return 0, api.NewForbiddenError("Webhook verification failed")
	}

	expected := partnerID + s.cfg.VerifyTokenSuffix
	p, err := s.store.GetPartner(ctx, partnerID)
	switch {
	case err == nil:
		if p.WhatsApp != nil && p.WhatsApp.VerifyToken != "" {
			expected = p.WhatsApp.VerifyToken
		}
	case !errors.Is(err, storage.ErrNotFound):
		observability.RecordError(span, err)
		return 0, fmt.Errorf("loading partner: %w", err)
	}

	if mode != hubModeSubscribe || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		slog.Warn("webhook verification failed", "partner_id", partnerID, "mode", mode)
		return 0, api.NewForbiddenError("Webhook verification failed")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(challenge), 10, 64)
	if err != nil {
		return 0, api.NewInvalidRequestError("hub.challenge", "hub.challenge must be an integer")
	}

	slog.Info("whatsapp webhook verified", "partner_id", partnerID)
	return n, nil
}

// HandleWebhook processes a WhatsApp notification for a partner. When the
// partner has a webhook secret, signature must be the "sha256=<hex>" HMAC
// of payload. Each text message is answered as a support request on the
// whatsapp channel.
func (s *Service) HandleWebhook(ctx context.Context, partnerID string, payload []byte, signature string) (*api.WebhookResult, error) {
	ctx, span := observability.StartSpan(ctx, "platform.HandleWebhook", partnerAttr(partnerID))
	defer span.End()

	if !api.ValidatePartnerID(partnerID) {
		return nil, api.NewInvalidRequestError("partner_id", "malformed partner_id")
	}

	p, err := s.store.GetPartner(ctx, partnerID)
	switch {
	case err == nil:
		if p.WhatsApp != nil && p.WhatsApp.WebhookSecret != "" {
			if !ValidSignature(payload, signature, p.WhatsApp.WebhookSecret) {
				slog.Warn("webhook signature mismatch", "partner_id", partnerID)
				return nil, api.NewForbiddenError("invalid webhook signature")
			}
		}
	case !errors.Is(err, storage.ErrNotFound):
		observability.RecordError(span, err)
		return nil, fmt.Errorf("loading partner: %w", err)
	}

	debug.Trace("webhook", "payload", "partner_id", partnerID, "body", string(payload))

	var wh api.WhatsAppWebhook
	if err := json.Unmarshal(payload, &wh); err != nil {
		return nil, api.NewInvalidRequestError("", fmt.Sprintf("invalid webhook payload: %v", err))
	}
	if wh.Entry == nil {
		return nil, api.NewInvalidRequestError("entry", "entry is required")
	}

	result := &api.WebhookResult{
		Status:            api.StatusSuccess,
		PartnerID:         partnerID,
		MessagesProcessed: len(wh.Entry),
		Replies:           []api.WebhookReply{},
		Response:          webhookAck,
	}

	for _, entry := range wh.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				observability.WebhookMessagesTotal.WithLabelValues(msg.Type).Inc()

				if msg.Type != "text" || msg.Text == nil || strings.TrimSpace(msg.Text.Body) == "" {
					debug.Log("webhook", "skipping non-text message", "partner_id", partnerID, "type", msg.Type)
					continue
				}

				in, err := s.ProcessSupportRequest(ctx, &api.SupportRequest{
					PartnerID:  partnerID,
					CustomerID: msg.From,
					QueryText:  msg.Text.Body,
					Language:   string(advice.DetectLanguage(msg.Text.Body)),
					Channel:    api.ChannelWhatsApp,
					Context:    map[string]any{"whatsapp_message_id": msg.ID},
				})
				if err != nil {
					// Reported per message; the rest of the batch still runs.
					observability.RecordError(span, err)
					slog.Warn("webhook message not processed",
						"partner_id", partnerID,
						"message_id", msg.ID,
						"error", err,
					)
					result.Replies = append(result.Replies, api.WebhookReply{
						MessageID: msg.ID,
						To:        msg.From,
						Error:     replyError(err),
					})
					continue
				}

				result.Replies = append(result.Replies, api.WebhookReply{
					MessageID:     msg.ID,
					To:            msg.From,
					InteractionID: in.ID,
					Intent:        in.Intent,
					Text:          in.ResponseText,
				})
			}
		}
	}

	span.SetAttributes(attribute.Int("trademate.replies", len(result.Replies)))
	slog.Info("whatsapp webhook received",
		"partner_id", partnerID,
		"entries", len(wh.Entry),
		"replies", len(result.Replies),
	)

	return result, nil
}

// replyError hides internal failures from the webhook caller.
func replyError(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "message could not be processed"
}

// Sign returns the "sha256=<hex>" HMAC signature of payload.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature reports whether signature is the HMAC of payload under secret.
func ValidSignature(payload []byte, signature, secret string) bool {
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(Sign(payload, secret)))
}
