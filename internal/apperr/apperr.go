// Package apperr defines the closed set of error kinds that cross the wire
// between the core and its callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a closed taxonomy of error categories, grouped the same way they
// are grouped for propagation purposes: auth/authorization, not-found,
// validation, infrastructure, and transport.
type Kind string

const (
	KindNotAuthenticated Kind = "NotAuthenticated"
	KindNotAMember       Kind = "NotAMember"
	KindBanned           Kind = "Banned"
	KindMuted            Kind = "Muted"
	KindMissingHubPerm   Kind = "MissingHubPermission"
	KindMissingChanPerm  Kind = "MissingChannelPermission"

	KindHubNotFound     Kind = "HubNotFound"
	KindChannelNotFound Kind = "ChannelNotFound"
	KindMessageNotFound Kind = "MessageNotFound"
	KindUserNotFound    Kind = "UserNotFound"
	KindMemberNotFound  Kind = "MemberNotFound"

	KindInvalidName Kind = "InvalidName"
	KindInvalidText Kind = "InvalidText"
	KindTooBig      Kind = "TooBig"

	KindDataError  Kind = "DataError"
	KindIndexError Kind = "IndexError"

	KindInternal          Kind = "Internal"
	KindMessageSendFailed Kind = "MessageSendFailed"
)

// DataOp and IndexOp name the infrastructure sub-operation that failed,
// carried inside a DataError/IndexError so callers and logs can tell them
// apart without parsing strings.
type DataOp string

const (
	DataRead        DataOp = "read"
	DataWrite       DataOp = "write"
	DataSerialize   DataOp = "serialize"
	DataDeserialize DataOp = "deserialize"
	DataDirectory   DataOp = "directory"
	DataDelete      DataOp = "delete"
)

type IndexOp string

const (
	IndexOpen   IndexOp = "open"
	IndexReader IndexOp = "reader"
	IndexWriter IndexOp = "writer"
	IndexParse  IndexOp = "parse"
	IndexSearch IndexOp = "search"
	IndexCommit IndexOp = "commit"
	IndexReload IndexOp = "reload"
	IndexGet    IndexOp = "get"
)

// Error is the wire-visible error shape. Permission is set only for
// MissingHubPermission/MissingChannelPermission. Op is set only for
// DataError/IndexError.
type Error struct {
	Kind       Kind
	Permission string
	Op         string
	cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Permission != "":
		return fmt.Sprintf("%s(%s)", e.Kind, e.Permission)
	case e.Op != "":
		return fmt.Sprintf("%s(%s)", e.Kind, e.Op)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports equality by Kind, so callers can write errors.Is(err,
// apperr.New(apperr.KindMuted)) without needing the Permission/Op detail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a bare error of the given kind.
func New(kind Kind) *Error { return &Error{Kind: kind} }

// Wrap constructs an infrastructure error carrying the op and the cause.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, cause: cause}
}

// MissingHubPermission builds the parametrized wire error for a hub-level
// permission denial.
func MissingHubPermission(perm string) *Error {
	return &Error{Kind: KindMissingHubPerm, Permission: perm}
}

// MissingChannelPermission builds the parametrized wire error for a
// channel-level permission denial.
func MissingChannelPermission(perm string) *Error {
	return &Error{Kind: KindMissingChanPerm, Permission: perm}
}
