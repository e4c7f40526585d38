/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"strings"
)

// View is the small structured slice of a caught error the classifier
// inspects: an exception-style name, a free-form message, and an optional
// legacy numeric code. Backends populate it when they can; Classify derives
// a best-effort View from the error string otherwise.
type View struct {
	Name    string
	Message string
	Code    int
}

// Viewer is implemented by errors that can describe themselves as a View.
type Viewer interface {
	ErrorView() View
}

// Exception names observed across storage backends for each category.
// Matching is heuristic on purpose: backends report quota and permission
// failures with inconsistent types, so name/message/code matching gives
// best-effort portability instead of depending on one backend's hierarchy.
var (
	quotaNames = []string{
		"QuotaExceededError",
		"NS_ERROR_DOM_QUOTA_REACHED",
	}
	securityNames = []string{
		"SecurityError",
		"NS_ERROR_DOM_SECURITY_ERR",
	}
	syntaxNames = []string{
		"SyntaxError",
	}
)

// legacyQuotaCode is the numeric DOMException code older engines used for
// quota exhaustion.
const legacyQuotaCode = 22

// Classify maps an arbitrary error to a Kind. It never fails and never
// panics; nil classifies as KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var v Viewer
	if errors.As(err, &v) {
		return ClassifyView(v.ErrorView())
	}
	return ClassifyView(View{Message: err.Error()})
}

// ClassifyView applies the heuristic chain to a structured error view.
// First match wins.
func ClassifyView(v View) Kind {
	msg := strings.ToLower(v.Message)

	if matchName(v.Name, quotaNames) ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "exceeded") ||
		v.Code == legacyQuotaCode {
		return KindQuotaExceeded
	}

	if matchName(v.Name, securityNames) ||
		strings.Contains(msg, "permission") ||
		strings.Contains(msg, "denied") ||
		strings.Contains(msg, "blocked") {
		return KindPermissionDenied
	}

	if matchName(v.Name, syntaxNames) ||
		strings.Contains(msg, "json") ||
		strings.Contains(msg, "parse") {
		return KindParseError
	}

	return KindUnknown
}

func matchName(name string, known []string) bool {
	if name == "" {
		return false
	}
	for _, k := range known {
		if name == k {
			return true
		}
	}
	return false
}
