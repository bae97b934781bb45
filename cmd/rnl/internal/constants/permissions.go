package constants

import "os"

// File and directory permission constants used for log files.
const (
	// DirPermissions is the mode for created log directories (rwxr-xr-x).
	// Used in: logging/logger.go, store/driver.go
	DirPermissions os.FileMode = 0755

	// FilePermissions is the mode for created log files (rw-r--r--).
	// Used in: logging/logger.go
	FilePermissions os.FileMode = 0644
)
