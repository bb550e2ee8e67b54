package services

import "fmt"

// The lifecycle surfaces three failure kinds so callers can tell "nothing
// happened" from "partially happened". A fourth kind, models.ErrNotFound,
// passes through unwrapped when the referenced document is absent.

// UploadError means the file store rejected the upload. No document was
// touched and no file exists.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string { return fmt.Sprintf("file store rejected upload: %v", e.Err) }
func (e *UploadError) Unwrap() error { return e.Err }

// PreviewError means a preview URL could not be derived for an uploaded
// file. The uploaded file has already been deleted by compensation.
type PreviewError struct {
	Err error
}

func (e *PreviewError) Error() string { return fmt.Sprintf("preview derivation failed: %v", e.Err) }
func (e *PreviewError) Unwrap() error { return e.Err }

// PersistError means the document store rejected a create, update or delete.
// Any file uploaded during the same operation has been deleted by
// compensation; pre-existing state is untouched.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("document store rejected write: %v", e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }
