// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package errors

import "strings"

// RemoteFailure classifies what a failed remote probe looked like.
type RemoteFailure int

// Remote failure classes, from most to least specific.
const (
	RemoteAuthFailure RemoteFailure = iota
	RemoteConnectivityFailure
	RemoteTemporaryFailure
)

var authKeywords = []string{"auth", "unauthorized", "forbidden", "token", "credential"}

var connectivityKeywords = []string{"connect", "network", "timeout", "unreachable", "resolve"}

var transientKeywords = []string{"temporary", "timeout", "network"}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// ClassifyRemote buckets an error from a remote API probe by message keywords.
// Auth symptoms win over connectivity symptoms; anything else is temporary.
func ClassifyRemote(err error) RemoteFailure {
	if err == nil {
		return RemoteTemporaryFailure
	}
	msg := strings.ToLower(err.Error())
	if containsAny(msg, authKeywords) {
		return RemoteAuthFailure
	}
	if containsAny(msg, connectivityKeywords) {
		return RemoteConnectivityFailure
	}
	return RemoteTemporaryFailure
}

// IsTransientMessage reports whether an error message carries one of the
// keywords monitors treat as a warning rather than an error.
func IsTransientMessage(err error) bool {
	if err == nil {
		return false
	}
	if IsTemporary(err) || IsConnection(err) {
		return true
	}
	return containsAny(strings.ToLower(err.Error()), transientKeywords)
}
