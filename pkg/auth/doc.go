// Package auth authenticates callers of the TradeMate HTTP API.
//
// Authenticators vote Yes, No or Abstain on a request's credentials and an
// AuthChain asks them in order until one decides. The chain's default
// decision applies when every authenticator abstains.
//
// Authentication runs as HTTP middleware. A successful vote puts the
// caller's Identity into the request context and, for partner callers, the
// partner ID as the storage tenant, which scopes every partner-facing
// operation to that partner.
package auth
