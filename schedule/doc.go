// Package schedule implements the recurring-deadline engine: calendar
// arithmetic with month-end clamping, bounded occurrence generation under
// the three end policies, series identity resolution with fingerprint
// fallback, rolling extension of auto series to the end-of-next-year
// horizon, scoped series editing, and duplicate collapse.
//
// Every function in this package is a pure transformation over an
// in-memory occurrence list: no I/O, no clock access (callers pass now
// and horizon explicitly), and no mutation of inputs. Results are
// deterministic for identical inputs, which is what makes the rolling
// extension idempotent and everything independently testable. Degenerate
// input is handled by defensive clamping rather than errors; the only
// failure-adjacent signal is a Truncated flag when a generation loop hits
// its safety cap.
package schedule
