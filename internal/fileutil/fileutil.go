// Package fileutil holds file modes shared by commands that write files.
package fileutil

import "os"

// OwnerReadWrite is the file permission mode for model documents, which may
// carry credentials (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600
