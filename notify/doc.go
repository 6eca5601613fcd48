/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package notify posts human-readable task outcomes to a Slack incoming
// webhook. A nil *Slack is a no-op, so callers can wire it unconditionally.
package notify
