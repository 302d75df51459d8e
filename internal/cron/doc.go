// Package cron parses 5-field cron expressions and computes the next
// matching instant after a reference time.
//
// Supported syntax:
//
//	minute        0-59
//	hour          0-23
//	day of month  1-31
//	month         1-12 or JAN-DEC
//	day of week   0-7 or SUN-SAT (0 and 7 are Sunday)
//
// Each field accepts a wildcard (*), single values, ranges (1-5), lists
// (1,3,5) and steps (*/15, 1-30/5, 10/20). The macros @yearly,
// @annually, @monthly, @weekly, @daily, @midnight and @hourly expand to
// their usual 5-field equivalents.
//
// When both day-of-month and day-of-week are restricted a day matches if
// either field matches. When only one is restricted, that one decides.
//
// # Evaluation
//
// Schedule.Next is a pure function of (schedule, reference time). It holds
// no state between calls, evaluates in UTC, and gives up after an 8 year
// search horizon with an error matching ErrUnsatisfiable. The horizon is
// long enough for rules such as "0 0 29 2 *" that skip a leap year at a
// century boundary.
package cron
