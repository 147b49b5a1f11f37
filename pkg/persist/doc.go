// Package persist keeps a store's document in sync with its backing file.
//
// An Engine caches the document after the first load and moves between
// three states:
//
//	Uninitialized --load--> Loaded <--schedule/fire/cancel--> PendingWrite
//
// Without a write delay every save writes the whole document synchronously.
// With a delay, each save cancels the pending write and schedules a new
// one, so a burst of mutations ends in a single write. The scheduled write
// encodes the live document when it fires, not a snapshot.
//
// Reading while a write is pending cancels that write and uses the cached
// document; memory is always more current than disk. The document still
// counts as unsaved, so the next mutation or an explicit Flush writes it.
//
// Failures of a delayed write cannot reach the caller. They are logged and
// dropped; callers needing durability use no delay or call Flush.
package persist
