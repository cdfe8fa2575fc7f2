package models

// AuthRequest carries the access code entered on the auth screen
type AuthRequest struct {
	AccessCode string `json:"accessCode"`
}

// ImageSourceRequest selects a remote file instead of a multipart upload.
// Exactly one of URL or Blob must be set.
type ImageSourceRequest struct {
	URL  string     `json:"url,omitempty" binding:"omitempty,url"`
	Blob *BlobImage `json:"blob,omitempty"`
}

// BlobImage addresses an object in Azure Blob Storage
type BlobImage struct {
	Container string `json:"container" binding:"required"`
	Name      string `json:"name" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Session interface{} `json:"session,omitempty"`
}
