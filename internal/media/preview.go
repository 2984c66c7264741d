package media

import (
	"mime"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"media-scribe/internal/domain"
)

// PreviewPrefix is the asset path under which scratch copies are served.
const PreviewPrefix = "/media/"

// playerTypes covers common formats missing from the Go builtin mime table.
var playerTypes = map[string]string{
	"mp4":  "video/mp4",
	"m4v":  "video/mp4",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"mp3":  "audio/mpeg",
	"m4a":  "audio/mp4",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"opus": "audio/ogg",
	"flac": "audio/flac",
	"aac":  "audio/aac",
}

// NewPreview builds the playable handle for ref.
func NewPreview(ref domain.MediaReference) domain.Preview {
	return domain.Preview{
		Location: ref.Location,
		URL:      PreviewPrefix + url.PathEscape(ref.Name),
		MIMEType: mimeType(ref.Extension),
		Kind:     ref.Kind,
	}
}

// mimeType resolves the player hint for ext, empty when unknown.
func mimeType(ext string) string {
	ext = strings.ToLower(ext)
	if t, ok := playerTypes[ext]; ok {
		return t
	}
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension("." + ext)
}

// PreviewHandler serves scratch copies to the media player. Only flat file
// names inside dir are reachable, and in-flight imports are hidden.
func PreviewHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, PreviewPrefix) {
			http.NotFound(w, r)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, PreviewPrefix)
		if name == "" || name != path.Base(name) || strings.HasPrefix(name, importPrefix) {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, name))
	})
}
