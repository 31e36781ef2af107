// Package api defines the wire types for the TradeMate support platform.
//
// It contains the JSON request and response shapes for every HTTP endpoint,
// the partner and interaction records shared by the platform and storage
// layers, structured error types, ID generation, and request validation.
//
// The package performs no I/O and depends only on the standard library.
//
// Core types:
//   - [OnboardPartnerRequest] and [Partner]: partner onboarding and records
//   - [SupportRequest] and [Interaction]: customer support processing
//   - [AnalyticsReport] and [Dashboard]: mocked reporting payloads
//   - [WhatsAppWebhook]: inbound WhatsApp Cloud API notifications
//   - [APIError]: structured error with type, code, param, and message
package api
