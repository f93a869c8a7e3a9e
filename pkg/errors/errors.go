// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package errors implements the hub error taxonomy. Errors are created
// through the New* constructors and inspected through the Is* predicates;
// callers never branch on message text.
package errors

import (
	"errors"
	"fmt"
)

type reason int

const (
	unknown reason = iota
	integration
	integrationDisabled
	integrationAttribute
	config
	connection
	temporary
	storage
	conflict
	badInput
	notFound
)

var reasonNames = map[reason]string{
	unknown:              "unknown",
	integration:          "integration",
	integrationDisabled:  "integration disabled",
	integrationAttribute: "integration attribute",
	config:               "config",
	connection:           "connection",
	temporary:            "temporary",
	storage:              "storage",
	conflict:             "conflict",
	badInput:             "bad input",
	notFound:             "not found",
}

type hearthError struct {
	reason  reason
	message string
	cause   error
}

func (e *hearthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause)
	}
	return e.message
}

func (e *hearthError) Unwrap() error { return e.cause }

// Reason returns the taxonomy name of the error kind, "unknown" for foreign errors.
func Reason(err error) string {
	var he *hearthError
	if errors.As(err, &he) {
		return reasonNames[he.reason]
	}
	return reasonNames[unknown]
}

func is(err error, r reason) bool {
	var he *hearthError
	if errors.As(err, &he) {
		return he.reason == r
	}
	return false
}

func newf(r reason, format string, args ...interface{}) error {
	return &hearthError{reason: r, message: fmt.Sprintf(format, args...)}
}

func wrap(r reason, cause error, message string) error {
	return &hearthError{reason: r, message: message, cause: cause}
}

// NewIntegrationf returns an error marking a missing or unregistered integration.
func NewIntegrationf(format string, args ...interface{}) error {
	return newf(integration, format, args...)
}

// IsIntegration reports whether err marks a missing or unregistered integration.
func IsIntegration(err error) bool { return is(err, integration) }

// NewIntegrationDisabledf returns an error for an integration that exists but is off.
func NewIntegrationDisabledf(format string, args ...interface{}) error {
	return newf(integrationDisabled, format, args...)
}

// IsIntegrationDisabled reports whether err marks a disabled integration.
func IsIntegrationDisabled(err error) bool { return is(err, integrationDisabled) }

// NewIntegrationAttributef returns an error for a missing or invalid configuration attribute.
func NewIntegrationAttributef(format string, args ...interface{}) error {
	return newf(integrationAttribute, format, args...)
}

// IsIntegrationAttribute reports whether err marks a configuration attribute problem.
func IsIntegrationAttribute(err error) bool { return is(err, integrationAttribute) }

// NewConfigf returns an error for a broader configuration failure at startup.
func NewConfigf(format string, args ...interface{}) error {
	return newf(config, format, args...)
}

// IsConfig reports whether err marks a startup configuration failure.
func IsConfig(err error) bool { return is(err, config) }

// NewConnectionf returns an error for a network or auth failure against a remote API.
func NewConnectionf(format string, args ...interface{}) error {
	return newf(connection, format, args...)
}

// WrapConnection wraps cause as a connection error.
func WrapConnection(cause error, message string) error {
	return wrap(connection, cause, message)
}

// IsConnection reports whether err marks a remote network or auth failure.
func IsConnection(err error) bool { return is(err, connection) }

// NewTemporaryf returns an error for a transient failure of unspecified kind.
func NewTemporaryf(format string, args ...interface{}) error {
	return newf(temporary, format, args...)
}

// IsTemporary reports whether err marks a transient failure.
func IsTemporary(err error) bool { return is(err, temporary) }

// NewStoragef returns an error for a database-layer fault.
func NewStoragef(format string, args ...interface{}) error {
	return newf(storage, format, args...)
}

// WrapStorage wraps cause as a storage error.
func WrapStorage(cause error, message string) error {
	return wrap(storage, cause, message)
}

// IsStorage reports whether err marks a database-layer fault.
func IsStorage(err error) bool { return is(err, storage) }

// NewConflictf returns an error for a uniqueness or constraint violation.
func NewConflictf(format string, args ...interface{}) error {
	return newf(conflict, format, args...)
}

// IsConflict reports whether err marks a constraint violation.
func IsConflict(err error) bool { return is(err, conflict) }

// NewBadInputf returns an error for a malformed caller-supplied id or value.
func NewBadInputf(format string, args ...interface{}) error {
	return newf(badInput, format, args...)
}

// IsBadInput reports whether err marks malformed caller input.
func IsBadInput(err error) bool { return is(err, badInput) }

// NewNotFoundf returns an error for a target that does not exist.
func NewNotFoundf(format string, args ...interface{}) error {
	return newf(notFound, format, args...)
}

// IsNotFound reports whether err marks a missing target.
func IsNotFound(err error) bool { return is(err, notFound) }

// IsRecoverable reports whether retrying later may succeed without operator action.
func IsRecoverable(err error) bool {
	var he *hearthError
	if !errors.As(err, &he) {
		return false
	}
	switch he.reason {
	case temporary, connection, integrationDisabled:
		return true
	}
	return false
}
