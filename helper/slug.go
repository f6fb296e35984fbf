package helper

import (
	"strings"

	"github.com/gosimple/slug"
)

// DownloadName builds a file or asset name from free-text parts, e.g.
// ("ticket", "B", "Zoë Smith") with ".pdf" gives "ticket-b-zoe-smith.pdf".
func DownloadName(ext string, parts ...string) string {
	name := slug.Make(strings.Join(parts, " "))
	if name == "" {
		name = "download"
	}
	return name + ext
}
