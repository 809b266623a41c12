package relay

import (
	"encoding/base64"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edgard/audiorelay/internal/errors"
)

// DefaultFileName names the attachment when the caller omits fileName.
const DefaultFileName = "recording.mp3"

// AudioMIMEType is the content type attached to every uploaded recording.
const AudioMIMEType = "audio/mpeg"

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// Request is the body accepted by the relay endpoint.
type Request struct {
	Message     string       `json:"message"     validate:"required"`
	Audio       string       `json:"audio"       validate:"required"`
	FileName    string       `json:"fileName,omitempty"`
	StudentInfo *StudentInfo `json:"studentInfo,omitempty"`
	SetInfo     *SetInfo     `json:"setInfo,omitempty"`
}

// StudentInfo describes who made the recording.
type StudentInfo struct {
	FirstName string `json:"firstName"`
	Surname   string `json:"surname"`
	Group     string `json:"group"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// SetInfo describes the exercise set the recording belongs to.
type SetInfo struct {
	Name string `json:"name"`
}

// attachmentName returns the caller supplied file name or DefaultFileName.
func (r Request) attachmentName() string {
	if name := strings.TrimSpace(r.FileName); name != "" {
		return name
	}
	return DefaultFileName
}

// checkRequired reports a missing message or audio field.
func (r Request) checkRequired() error {
	if err := validate.Struct(r); err != nil {
		return errors.NewInputError("Message and audio are required", nil)
	}
	return nil
}

// audioEncodings are tried in order. Browser recorders commonly emit
// URL-safe or unpadded output.
var audioEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// decodeAudio returns the raw recording bytes. A data URL prefix such as
// "data:audio/webm;base64," is stripped and surrounding whitespace is
// ignored.
func decodeAudio(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if _, payload, ok := strings.Cut(encoded, ";base64,"); ok {
			encoded = payload
		}
	}

	var firstErr error
	for _, enc := range audioEncodings {
		data, err := enc.DecodeString(encoded)
		if err == nil {
			return data, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, errors.NewInputError("Audio is not valid base64", firstErr)
}
