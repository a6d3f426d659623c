// Package hcerr defines HyperCrypt's public error taxonomy: the named
// categories the engine surfaces at its API boundary, collapsing a much
// larger set of internal-only failure conditions the way the reference
// engine's status-adjustment step does.
package hcerr

import (
	"errors"
	"fmt"
)

// Code identifies a category of failure a caller can act on.
type Code int

const (
	// Unknown is the zero value; never returned deliberately.
	Unknown Code = iota

	// Input/output and file-layout errors.
	InvalidInputFile
	InvalidOutputFile
	InvalidKeyFile
	OutputFileAlreadyExists
	KeyFileAlreadyExists
	CannotOpenInputFile
	CannotOpenOutputFile
	CannotOpenKeyFile
	CannotCreateOutputFile
	CannotCreateKeyFile
	CannotWriteOutputFile
	CannotWriteKeyFile
	CannotReadInputFile
	CannotRenameOutputFile
	CannotRenameKeyFile
	CannotDeleteTempFile

	// Parameter and descriptor validation errors.
	InvalidSplitCount
	InvalidJoinCount
	BadKey
	BlockSizeTooBig
	FileTooSmall
	FileTooLarge

	// Cryptographic and internal invariant failures collapsed to a single
	// opaque category, mirroring the reference engine's fallback status.
	Internal
)

var names = map[Code]string{
	Unknown:                 "unknown error",
	InvalidInputFile:        "invalid input file",
	InvalidOutputFile:       "invalid output file",
	InvalidKeyFile:          "invalid key file",
	OutputFileAlreadyExists: "output file already exists",
	KeyFileAlreadyExists:    "key file already exists",
	CannotOpenInputFile:     "cannot open input file",
	CannotOpenOutputFile:    "cannot open output file",
	CannotOpenKeyFile:       "cannot open key file",
	CannotCreateOutputFile:  "cannot create output file",
	CannotCreateKeyFile:     "cannot create key file",
	CannotWriteOutputFile:   "cannot write output file",
	CannotWriteKeyFile:      "cannot write key file",
	CannotReadInputFile:     "cannot read input file",
	CannotRenameOutputFile:  "cannot rename output file",
	CannotRenameKeyFile:     "cannot rename key file",
	CannotDeleteTempFile:    "cannot delete temp file",
	InvalidSplitCount:       "invalid split count",
	InvalidJoinCount:        "invalid join count",
	BadKey:                  "bad key",
	BlockSizeTooBig:         "block size too big",
	FileTooSmall:            "file too small",
	FileTooLarge:            "file too large",
	Internal:                "internal error",
}

// String renders the category's fixed, user-facing name.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return "unrecognized error"
}

// Error is a HyperCrypt error: a category plus an optional wrapped cause.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error carrying only a category and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap builds an Error that collapses err into the given category while
// preserving it as the wrapped cause.
func Wrap(code Code, err error) *Error {
	if err == nil {
		return &Error{Code: code}
	}
	return &Error{Code: code, Msg: err.Error(), Err: err}
}

// As reports whether err is (or wraps) an *Error, returning it if so.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
