// Package form builds multipart/form-data bodies held fully in memory.
package form

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultContentType is used for files whose type cannot be inferred.
const DefaultContentType = "application/octet-stream"

// ErrBoundaryCollision is returned by Serialize when a part's content
// contains the form boundary.
var ErrBoundaryCollision = errors.New("form boundary appears in part content")

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type part struct {
	name        string
	filename    string
	contentType string
	content     []byte
	file        bool
}

// Form accumulates fields and files in insertion order.
type Form struct {
	boundary string
	parts    []part
}

// New returns an empty form with a fresh random boundary.
func New() *Form {
	return &Form{boundary: newBoundary()}
}

func newBoundary() string {
	return "----utorrent" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Boundary returns the delimiter used between parts.
func (f *Form) Boundary() string {
	return f.boundary
}

// ContentType is the value for the request's Content-Type header.
func (f *Form) ContentType() string {
	return "multipart/form-data; boundary=" + f.boundary
}

// AddField appends a text field.
func (f *Form) AddField(name, value string) {
	f.parts = append(f.parts, part{name: name, content: []byte(value)})
}

// AddFile reads r to the end and appends it as a file part. The content type
// is inferred from filename unless mimeType is given.
func (f *Form) AddFile(fieldName, filename string, r io.Reader, mimeType ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "reading %s", filename)
	}

	contentType := ""
	if len(mimeType) > 0 {
		contentType = mimeType[0]
	}
	if contentType == "" {
		contentType = ContentTypeFor(filename)
	}

	f.parts = append(f.parts, part{
		name:        fieldName,
		filename:    filename,
		contentType: contentType,
		content:     content,
		file:        true,
	})
	return nil
}

// Len returns the number of parts.
func (f *Form) Len() int {
	return len(f.parts)
}

// Serialize renders the body. Each part is a boundary line, its headers, a
// blank line and the content, all CRLF separated, followed by the closing
// boundary and a final CRLF.
func (f *Form) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.SetBoundary(f.boundary); err != nil {
		return nil, errors.Wrap(err, "setting boundary")
	}

	marker := []byte(f.boundary)
	for _, p := range f.parts {
		if bytes.Contains(p.content, marker) {
			return nil, errors.Wrapf(ErrBoundaryCollision, "part %q", p.name)
		}

		h := make(textproto.MIMEHeader)
		if p.file {
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
				quoteEscaper.Replace(p.name), quoteEscaper.Replace(p.filename)))
			h.Set("Content-Type", p.contentType)
		} else {
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(p.name)))
		}

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, errors.Wrapf(err, "creating part %q", p.name)
		}
		if _, err := pw.Write(p.content); err != nil {
			return nil, errors.Wrapf(err, "writing part %q", p.name)
		}
	}

	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "closing form")
	}
	return buf.Bytes(), nil
}

// ContentTypeFor guesses a MIME type from the filename extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return DefaultContentType
	}
	if ext == ".torrent" {
		return "application/x-bittorrent"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return DefaultContentType
}
