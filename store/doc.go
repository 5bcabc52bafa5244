// Package store implements a JSON-file-backed credential store that several
// processes can share.
//
// The whole store lives in one JSON object keyed by credential id. Each Store
// keeps an in-memory copy and re-reads the file whenever its modification time
// differs from the one it last observed. Reads hold a shared advisory lock and
// writes hold an exclusive one (flock on unix, LockFileEx on windows), each
// only for the duration of a single load or save.
//
// Consistency is deliberately weak:
//   - the mtime is the only coherence signal, so two writes landing in the
//     same filesystem timestamp tick can go unnoticed by a reader;
//   - add/update/delete reload, mutate in memory and rewrite the whole file,
//     so a write made by another process between the reload and the save is
//     lost (last writer wins);
//   - a crash in the middle of a save can leave a truncated file, which every
//     reader then treats as corrupt and as empty.
//
// A file that cannot be read or parsed never fails a read: the store logs a
// warning and serves an empty set until the next successful load.
package store
