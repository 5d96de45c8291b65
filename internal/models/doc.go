// Package models defines the core domain models for tripdesk.
//
// # Models
//
//   - User: registered account; owns chat sessions
//   - Session: one conversation with the travel assistant
//   - Message: a single chat turn within a session
//   - Expense: a shared trip cost recorded against a session
//   - Flight: a flight ticket extracted from an assistant reply
//   - Money: an amount with a currency code
//
// Participants on an expense are plain name strings rather than user IDs:
// the people splitting a trip cost are usually not all account holders.
//
// # Design Principles
//
//  1. ID strings instead of pointers for relationships, to avoid circular
//     references between aggregates.
//  2. Timestamps are Unix seconds for persisted records; flight departure
//     and arrival times are ISO-8601 strings because they arrive from the
//     assistant as text and may be absent or approximate.
//  3. Models carry JSON tags and are serialized directly by the HTTP layer.
package models
