// Package reservations decides whether a visit request is admitted and moves
// admitted reservations through their status lifecycle while keeping book
// copy counters consistent.
//
// Admission and every status change run in a single database transaction.
// The book row is locked for the duration where the dialect supports
// SELECT ... FOR UPDATE; on SQLite the immediate transaction lock serializes
// writers instead. A partial unique index on (book_id, desired_date, slot) for
// pending and validated reservations backs the slot-conflict check.
//
// Notifications are emitted through a Notifier after the transaction commits.
// Their outcome never affects the reservation.
package reservations
