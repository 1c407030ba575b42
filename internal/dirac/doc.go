// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package dirac is a small HTTPS client for a DIRAC server's file catalog and
// workload management services, authenticated with an X.509 user proxy. It
// also renders the JDL used to start remote workers.
package dirac
