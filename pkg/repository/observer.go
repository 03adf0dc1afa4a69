package repository

import "time"

// Operation names a repository operation in logs and observer callbacks.
type Operation string

const (
	OpGetAll       Operation = "get_all"
	OpGetByID      Operation = "get_by_id"
	OpCreate       Operation = "create"
	OpUpdate       Operation = "update"
	OpDelete       Operation = "delete"
	OpSearch       Operation = "search"
	OpGetPaginated Operation = "get_paginated"
)

// Source identifies the data source that produced an operation's outcome.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceNone   Source = "none"
)

// Observer receives notifications about repository activity. It is the
// only channel through which best-effort cache failures are reported
// besides the logger.
type Observer interface {
	// OnOutcome is called once per operation. err is nil on success.
	OnOutcome(op Operation, strategy Strategy, source Source, err error, duration time.Duration)

	// OnCacheHit is called when a read is served from the local source.
	OnCacheHit(op Operation)

	// OnCacheMiss is called when a local read falls through to the remote
	// source. err is nil for a plain miss.
	OnCacheMiss(op Operation, err error)

	// OnMirrorFailure is called when a best-effort local write fails.
	OnMirrorFailure(op Operation, err error)
}

// NoopObserver ignores every notification.
type NoopObserver struct{}

func (NoopObserver) OnOutcome(Operation, Strategy, Source, error, time.Duration) {}
func (NoopObserver) OnCacheHit(Operation)                                        {}
func (NoopObserver) OnCacheMiss(Operation, error)                                {}
func (NoopObserver) OnMirrorFailure(Operation, error)                            {}
