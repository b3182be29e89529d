// Package merge reconciles two independently evolved ritual collections.
//
// Rituals is a pure function: no I/O, no clock, no randomness. Given the same
// inputs it always returns the same output, and it never drops a participant,
// question or entry present on either side.
//
// Per-ritual rules when both sides share an id:
//   - title, scale, frequency, createdAt: local wins
//   - participants: union by id, local first, unseen incoming appended
//   - questions: union by id, then stable sort by Order ascending
//   - entries: union by id (local copy kept on collision), then stable sort
//     by CreatedAt ascending
//   - updatedAt: the later of the two
//
// Result order: incoming rituals (merged or new) in incoming order, followed by
// local-only rituals in local order.
package merge
