// SPDX-License-Identifier: MPL-2.0

// Package pipeline executes ordered lists of steps against a build state.
//
// A Step names a task and gates it twice: by platform scope ("all" or a
// comma-separated platform list) and by a comma-separated AND list of
// predicate names. Tasks and predicates are looked up in an explicit Registry
// populated at startup; New rejects any step naming something that is not
// registered, so nothing runs when a pipeline is malformed.
//
// Run executes steps strictly in order. String arguments are rendered as
// templates against the current config just before the task is invoked. The
// first failing task stops the run; earlier side effects are not rolled back.
package pipeline
