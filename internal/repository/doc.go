// Package repository owns the authoritative in-memory ritual collection and
// keeps it in step with durable storage.
//
// Every mutation is handed to a single writer goroutine through a FIFO
// queue, so no operation ever reads a snapshot while another one is
// writing. Mutations persist first and update memory second: if the Store
// rejects a write, the collection is left exactly as it was, the failure is
// recorded in State.Err, and the error is returned to the caller.
//
// After every mutation that changes the collection, rituals are sorted by
// UpdatedAt descending (stable) so the most recently active one comes first.
//
// Reads (Snapshot, GetRitualByID, Subscribe) return deep copies and never
// block behind the writer for longer than a state swap.
package repository
