// Package alert provides the business boundary for Beacon's compliance alert
// engine. It defines the domain model (Alert, Candidate, Links), the Store
// interface (persistence with atomic dedup), and the Service (lifecycle
// transitions, idempotent insertion, auto-resolution).
package alert
