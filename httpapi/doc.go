/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package httpapi is the REST facade over the GitHub client, the analyzer,
// and the auto-fix tracker. Handlers translate collaborator errors into the
// service's status-code taxonomy and never leak goroutine failures as HTTP
// errors; background outcomes surface only through task status.
package httpapi
