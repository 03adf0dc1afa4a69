// Package domain contains the entities repokit manages and the errors its
// application layer reports.
//
// # Entities
//
//   - [Note]: an immutable note, compared by value
//   - [NoteModel]: the wire form of a Note exchanged with the notes service
//
// Domain entities have no dependencies on transport or storage. The
// conversions between Note and NoteModel are the only place the two meet.
package domain
