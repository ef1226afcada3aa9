package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCredential       = errors.New("credential missing")
	ErrUpstream         = errors.New("upstream failure")
	ErrMissingImageData = errors.New("missing image data")
	ErrDecode           = errors.New("invalid image payload")
	ErrUpload           = errors.New("upload failed")
	ErrValidation       = errors.New("invalid request")
)

// CredentialError reports that no usable API key was available for a call.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string {
	if e.Reason == "" {
		return "OpenAI API key not found. Please set it in Settings."
	}
	return e.Reason
}

func (e *CredentialError) Unwrap() error { return ErrCredential }

// UpstreamError wraps a rejected or unreachable generation call. Status is
// zero when the request never produced an HTTP response.
type UpstreamError struct {
	Status  int
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("image generation failed: http %d: %s", e.Status, msg)
	}
	return "image generation failed: " + msg
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// MissingImageDataError is returned when a success response lacks the
// base64 payload for an image.
type MissingImageDataError struct {
	Index    int
	Expected int
	Got      int
}

func (e *MissingImageDataError) Error() string {
	if e.Expected > 0 && e.Expected != e.Got {
		return fmt.Sprintf("no image data received: expected %d images, got %d", e.Expected, e.Got)
	}
	return fmt.Sprintf("no image data received for image %d", e.Index+1)
}

func (e *MissingImageDataError) Unwrap() error { return ErrMissingImageData }

// DecodeError reports base64 text that could not be decoded.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode image: invalid base64"
	}
	return fmt.Sprintf("decode image: invalid base64 at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

// UploadError reports a failed share upload. Status and Body carry the
// endpoint's response when one was received.
type UploadError struct {
	Status int
	Body   string
	Reason string
	Err    error
}

func (e *UploadError) Error() string {
	switch {
	case e.Status > 0:
		return fmt.Sprintf("Upload failed: %d %s", e.Status, strings.TrimSpace(e.Body))
	case e.Reason != "":
		return "Upload failed: " + e.Reason
	case e.Err != nil:
		return "Upload failed: " + e.Err.Error()
	default:
		return "Upload failed"
	}
}

func (e *UploadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpload}
	}
	return []error{ErrUpload, e.Err}
}

// ValidationError rejects a request before anything is sent upstream.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid is a shorthand for building a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
