// Package repository orchestrates a remote and a local data source behind
// a single Result-returning API.
//
// A Repository is built from a Config naming a Strategy and the sources it
// needs:
//
//	repo, err := repository.New(repository.Config[Note, NoteModel]{
//		Strategy: repository.RemoteWithLocalCache,
//		Remote:   api,
//		Local:    cache,
//		ToModel:  ToModel,
//	}, repository.WithLogger(logger))
//
// Writes always go to the remote source first. Local writes that follow a
// successful remote call are best effort: they are awaited, but a failure
// is only logged and reported to the Observer.
package repository
