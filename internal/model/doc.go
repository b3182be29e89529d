// Package model defines the ritual aggregate and its nested entities.
//
// A Ritual owns its Participants, Questions and Entries by composition; nothing
// is shared across rituals, so deleting a ritual cannot orphan anything.
//
// Key constraints:
//   - Scale is one of 5, 10, 20, 100
//   - Frequency is one of daily, weekly, monthly
//   - At most one Response per (question, participant) pair per Entry
//   - Response values are passed through unchanged; range checks happen
//     when an answer is captured, never on load, merge or import
//   - JSON field names match the transfer file (camelCase)
//
// This package imports nothing internal.
package model
