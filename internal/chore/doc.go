// Package chore defines the core types of the chores system.
//
// A Definition is a recurring obligation loaded from configuration. Each
// scheduled instance of a definition is an Occurrence, identified by the
// natural key (Title, Expected).
//
// # Status
//
// Only three states are ever persisted: assigned, completed, and missed
// (Status). The status a client sees is an EffectiveStatus computed by
// Resolve from the stored status, the occurrence's deadlines, and the
// current time:
//
//	assigned ──(now >= overdue)──▶ overdue ──(now >= expiration)──▶ missed
//	    │                             │
//	    └──────────(complete)─────────┴──▶ completed
//
// completed and missed are terminal. Overdue is never stored; missed is
// derived at read time and later made durable by a sweep.
//
// # Errors
//
// All domain failures are *Error values carrying an ErrorCode. Match them
// with errors.Is against the sentinel values (ErrNotFound, ErrConflict, ...)
// or the IsXxx helpers.
package chore
