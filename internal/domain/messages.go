package domain

import "errors"

const (
	LocaleEN = "en"
	LocaleID = "id"
)

var genericFailure = map[string]string{
	LocaleEN: "Image generation failed. Please try again.",
	LocaleID: "Gagal membuat gambar. Silakan coba lagi.",
}

var credentialMissing = map[string]string{
	LocaleEN: "OpenAI API key not found. Please set it in Settings.",
	LocaleID: "API key OpenAI belum diatur. Silakan isi di Pengaturan.",
}

var uploadFailed = map[string]string{
	LocaleEN: "Failed to upload image: ",
	LocaleID: "Gagal mengunggah gambar: ",
}

// UserMessage converts err into the text shown to the dashboard user.
// Upstream and validation messages are surfaced verbatim; malformed
// responses collapse into a generic failure.
func UserMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	if locale != LocaleID {
		locale = LocaleEN
	}
	var (
		upstream   *UpstreamError
		upload     *UploadError
		validation *ValidationError
	)
	switch {
	case errors.Is(err, ErrCredential):
		return credentialMissing[locale]
	case errors.As(err, &validation):
		return validation.Error()
	case errors.As(err, &upstream):
		return upstream.Error()
	case errors.As(err, &upload):
		return uploadFailed[locale] + upload.Error()
	default:
		return genericFailure[locale]
	}
}
