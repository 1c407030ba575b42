// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package dirac

import (
	"fmt"
	"os"
	"time"
)

const (
	// DefaultCAPath is the CA directory distributed through CVMFS.
	DefaultCAPath = "/cvmfs/grid.cern.ch/etc/grid-security/certificates/"
	// DefaultStorageURL is the storage element base used to upload and
	// download file content.
	DefaultStorageURL = "https://mover.pp.rl.ac.uk:2880/pnfs/pp.rl.ac.uk/data"
	// DefaultStorageElement is the SE name registered alongside new files.
	DefaultStorageElement = "UKI-SOUTHGRID-RALPP-disk"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 60 * time.Second

	gridppHost = "diracdev.grid.hep.ph.ic.ac.uk"
)

// Settings locate and authenticate against a DIRAC server.
type Settings struct {
	// ServerURL is the server root, e.g. https://dirac.gridpp.ac.uk:8443.
	ServerURL string
	// CAPath is a directory of PEM CA certificates or a single bundle.
	CAPath string
	// UserProxy is the X.509 proxy file holding certificate and key.
	UserProxy string
	// StorageURL is the storage element base URL.
	StorageURL string
	// StorageElement is the SE name registered with new files.
	StorageElement string
	// Timeout bounds every request.
	Timeout time.Duration
	// Retries is the retry budget for transient failures.
	Retries int
}

// DefaultUserProxy returns the conventional proxy path for the current user.
func DefaultUserProxy() string {
	if p := os.Getenv("X509_USER_PROXY"); p != "" {
		return p
	}
	return fmt.Sprintf("/tmp/x509up_u%d", os.Getuid())
}

func (s Settings) withDefaults() Settings {
	if s.CAPath == "" {
		s.CAPath = DefaultCAPath
	}
	if s.StorageURL == "" {
		s.StorageURL = DefaultStorageURL
	}
	if s.StorageElement == "" {
		s.StorageElement = DefaultStorageElement
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Retries < 0 {
		s.Retries = 0
	}
	return s
}
