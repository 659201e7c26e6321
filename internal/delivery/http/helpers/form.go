package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
)

// ImageField is the multipart field carrying an event image.
const ImageField = "files[image]"

// Form is a flat view over a JSON, urlencoded or multipart request body.
type Form struct {
	values map[string]string
	// Image is the uploaded image, nil when the request carried none.
	Image *multipart.FileHeader
}

// Get returns the value for key, or "" when absent.
func (f *Form) Get(key string) string {
	return f.values[key]
}

// Lookup returns the value for key and whether the key was present.
func (f *Form) Lookup(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// ParseForm reads the request body according to its Content-Type.
// maxMemory bounds the bytes of a multipart body kept in memory; the rest spills to temp files.
func ParseForm(r *http.Request, maxMemory int64) (*Form, error) {
	f := &Form{values: make(map[string]string)}
	if r.Body == nil || r.Body == http.NoBody {
		return f, nil
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return f, f.readJSON(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("bad multipart body: %w", err)
		}
		f.copyValues(r.MultipartForm.Value)
		if files := r.MultipartForm.File[ImageField]; len(files) > 0 {
			f.Image = files[0]
		}
		return f, nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("bad form body: %w", err)
		}
		f.copyValues(r.PostForm)
		return f, nil
	case "":
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func (f *Form) copyValues(values map[string][]string) {
	for k, vs := range values {
		if len(vs) > 0 {
			f.values[k] = vs[0]
		}
	}
}

// readJSON flattens a JSON object; numbers and booleans are kept in their textual form.
func (f *Form) readJSON(r *http.Request) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("bad json body: %w", err)
	}
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			f.values[k] = val
		case json.Number:
			f.values[k] = val.String()
		case bool:
			f.values[k] = strconv.FormatBool(val)
		default:
			return fmt.Errorf("bad json body: field %s must be a string or number", k)
		}
	}
	return nil
}
