package attachments

// Package attachments turns raw file selections into validated attachment
// records. Only spreadsheet, CSV, PDF, plain-text and markdown files are
// accepted; everything else is dropped without an error. Attachments keep a
// reference to the file on disk, the payload is never copied.

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// File is a raw selection as reported by the picker. MediaType may be empty,
// in which case the type is inferred from the filename extension.
type File struct {
	Name      string
	MediaType string
	Size      int64
	Path      string
}

// Attachment is a validated, read-only reference to a selected file.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`
	Path      string `json:"-"`
}

// Open returns a reader over the underlying file content.
func (a *Attachment) Open() (io.ReadCloser, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open attachment %s", a.Name)
	}
	return f, nil
}

var allowedMediaTypes = map[string]struct{}{
	"text/csv":        {},
	"application/csv": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/pdf": {},
	"text/plain":      {},
	"text/markdown":   {},
}

func mediaTypeFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".csv":
		return "text/csv"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	default:
		return ""
	}
}

// resolveMediaType returns the effective media type for a file, preferring the
// declared type and falling back to extension-based inference.
func resolveMediaType(f File) string {
	if f.MediaType != "" {
		if _, ok := allowedMediaTypes[f.MediaType]; ok {
			return f.MediaType
		}
		// A declared but disallowed type is not rescued by its extension.
		return ""
	}
	mediaType := mediaTypeFromExtension(filepath.Ext(f.Name))
	if _, ok := allowedMediaTypes[mediaType]; !ok {
		return ""
	}
	return mediaType
}

// Validate filters the given selections against the allow-list and produces
// attachment records for the files that pass. Rejected files are dropped
// silently.
func Validate(files []File) []*Attachment {
	var ret []*Attachment
	for _, f := range files {
		mediaType := resolveMediaType(f)
		if mediaType == "" {
			log.Debug().Str("file", f.Name).Str("declaredType", f.MediaType).
				Msg("dropping attachment with disallowed type")
			continue
		}
		ret = append(ret, &Attachment{
			ID:        uuid.NewString(),
			Name:      f.Name,
			MediaType: mediaType,
			Size:      f.Size,
			Path:      f.Path,
		})
	}
	return ret
}

// FromPath builds a File selection from a path on disk. The media type is left
// empty so that Validate infers it from the extension, the way a browser
// would for unknown files.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, errors.Wrapf(err, "failed to stat %s", path)
	}
	if info.IsDir() {
		return File{}, errors.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Path: path,
	}, nil
}
