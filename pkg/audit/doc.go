// Package audit provides audit logging for console operations.
//
// Security-relevant operations are written as RFC5424 syslog records to
// stdout and, when AUDIT_DATABASE_URL is set, persisted to the
// audit_messages table.
//
// # Event Types
//
//   - AuthenticateEvent: login and bearer token attempts
//   - CheckEvent: permission checks on console pages
//   - GrantEvent: create, update and delete of group/module grants
//   - AccountEvent: CLI user and seed operations
//
// # Usage
//
//	audit.Log(audit.GrantEvent{
//	    Username:  "admin",
//	    Operation: audit.GrantCreate,
//	    Group:     "Ops",
//	    Module:    "Billing",
//	    Success:   true,
//	})
package audit
