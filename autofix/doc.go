/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package autofix tracks background fix tasks and runs the fix pipeline.

Store is the task tracker: an injected, mutex-guarded map from opaque task
identifiers to task records. Status transitions are monotonic; once a task is
completed or failed it never changes again. Records live in process memory
only and are swept after a retention window.

Fixer owns the pipeline a task runs through: fetch the issue, analyze it,
generate a change set, fork if needed, clone, branch, apply, push, and open a
pull request. Each task runs in its own goroutine; steps within a task are
strictly sequential and any failure moves the task to failed with a
human-readable message. Nothing is retried.
*/
package autofix
