// Package api holds the request and response types shared between the skein
// server and its clients.
package api

// ConvertRequest is the body of POST /convert. URL accepts a full HTTPS URL
// (with or without a trailing .git), an SSH-style git@host:owner/repo
// reference, or a bare owner/repo shorthand.
type ConvertRequest struct {
	URL string `json:"url" binding:"required"`
}
