// Package platform implements the TradeMate partner and support operations:
// onboarding, support request processing, market analysis, analytics,
// dashboards, WhatsApp webhook handling, and the ROI summary.
//
// A [Service] is backed by a [storage.Store] and is safe for concurrent use.
// Validation failures are returned as *api.APIError; storage failures are
// wrapped errors that the transport layer maps to server errors.
package platform
