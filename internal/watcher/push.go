package watcher

import (
	"bytes"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/audio"
)

// Upload is a synchronously pushed recording.
type Upload struct {
	Filename string
	Data     []byte
	Name     string
	Date     string
}

// AcceptUpload validates an upload and turns it into an Input with a fresh
// upload token. Every missing field is reported at once.
func AcceptUpload(u Upload) (audio.Input, error) {
	var missing []string
	if len(u.Data) == 0 {
		missing = append(missing, "audioFile")
	}
	if strings.TrimSpace(u.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(u.Date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return audio.Input{}, apperror.New(apperror.KindMissingField,
			"missing required field(s): %s", strings.Join(missing, ", "))
	}

	data := u.Data
	return audio.Input{
		ID:       "upload-" + uuid.NewString(),
		Filename: u.Filename,
		Name:     strings.TrimSpace(u.Name),
		Date:     strings.TrimSpace(u.Date),
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}, nil
}
