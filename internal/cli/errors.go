package cli

import (
	"errors"
	"io/fs"

	"github.com/aidanlsb/zinc/internal/config"
	"github.com/aidanlsb/zinc/internal/notesync"
	"github.com/aidanlsb/zinc/internal/zotero"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Configuration errors
	ErrStoreNotFound = "STORE_NOT_FOUND"
	ErrVaultNotFound = "VAULT_NOT_FOUND"
	ErrConfigInvalid = "CONFIG_INVALID"

	// Store errors
	ErrDatabaseError = "DATABASE_ERROR"

	// Note errors
	ErrNoteNotFound   = "NOTE_NOT_FOUND"
	ErrFileReadError  = "FILE_READ_ERROR"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// errorCode maps an error returned by the core packages to its stable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, zotero.ErrStoreNotFound):
		return ErrStoreNotFound
	case errors.Is(err, notesync.ErrVaultNotFound):
		return ErrVaultNotFound
	case errors.Is(err, config.ErrInvalid):
		return ErrConfigInvalid
	case errors.Is(err, zotero.ErrUnknownItemType):
		return ErrInvalidInput
	case errors.Is(err, fs.ErrPermission):
		return ErrFileWriteError
	default:
		return ErrDatabaseError
	}
}

// suggestionFor returns a hint for the common configuration mistakes.
func suggestionFor(code string) string {
	switch code {
	case ErrStoreNotFound:
		return "Pass --db or set zotero_db in the config file"
	case ErrVaultNotFound:
		return "Pass --vault or set vault in the config file"
	case ErrConfigInvalid:
		return "Run 'zinc config' to see the active config file"
	default:
		return ""
	}
}
