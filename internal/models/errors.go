package models

import "errors"

// Domain errors, grouped by how callers surface them: validation (400),
// not found (404), authorization (403), expiry (410), conflict (409).
var (
	// Validation errors
	ErrInvalidName       = errors.New("name may only contain letters, digits, underscores, hyphens and periods")
	ErrInvalidPermission = errors.New("invalid permission level")
	ErrExclusiveTarget   = errors.New("exactly one of file or folder must be set")
	ErrNotOwner          = errors.New("requester does not own the target resource")

	// Not-found errors
	ErrUserNotFound   = errors.New("user not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrShareNotFound  = errors.New("share not found")
	ErrLinkNotFound   = errors.New("share link not found")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
	ErrLinkPassword     = errors.New("password required or incorrect")

	// Expiry errors
	ErrLinkExpired = errors.New("share link has expired")

	// Conflict errors
	ErrDuplicateName  = errors.New("a sibling with this name already exists")
	ErrDuplicateShare = errors.New("an active share already exists for this recipient and resource")
	ErrDuplicateUser  = errors.New("user already exists with this email")
	ErrFolderCycle    = errors.New("folder cannot be moved into itself or a descendant")
)
