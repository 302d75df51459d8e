// Package engine drives the chore lifecycle.
//
// The engine owns three write paths into the store:
//
//   - Recurrence: Ensure and Tick create the next assigned occurrence of a
//     chore when its previous one has reached a terminal state.
//   - Completion: Complete moves an assigned occurrence to completed.
//   - Sweep: Sweep moves assigned occurrences past their expiration to
//     missed.
//
// Every write is a single conditional statement (or a short transaction)
// in the store. The engine never holds a lock of its own: concurrent
// ticks, sweeps and completions are arbitrated by the store's conditional
// updates and its unique indexes. At most one assigned occurrence exists
// per chore at any time, and terminal occurrences are never rewritten.
//
// Scheduler runs Tick and Sweep periodically until its context is
// cancelled. Each tick is tagged with a UUIDv7 tick ID in the logs.
package engine
