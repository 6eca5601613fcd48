/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

/*
Package workspace manages the git checkouts the auto-fix pipeline works in.

Each fix gets a dedicated clone in a temporary directory, authenticated with
the same token source as the GitHub API client. The checkout applies the
model's change set behind path validation, commits as the configured identity,
pushes the fix branch, and is destroyed when the task finishes regardless of
outcome.
*/
package workspace
