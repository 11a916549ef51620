package utorrent

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// ParseMagnetLink extracts information from a magnet link. A link without
// an exact topic (xt) is rejected since the daemon cannot resolve it.
func ParseMagnetLink(magnetURI string) (*MagnetLink, error) {
	if !strings.HasPrefix(magnetURI, "magnet:?") {
		return nil, errors.New("invalid magnet link format")
	}

	values, err := url.ParseQuery(strings.TrimPrefix(magnetURI, "magnet:?"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse magnet link query")
	}

	xt := values.Get("xt")
	if xt == "" {
		return nil, errors.New("magnet link has no exact topic")
	}

	return &MagnetLink{
		Hash:             strings.TrimPrefix(xt, "urn:btih:"),
		DisplayName:      values.Get("dn"),
		Trackers:         values["tr"],
		ExactLength:      values.Get("xl"),
		ExactSource:      values.Get("xs"),
		Keywords:         values.Get("kt"),
		AcceptableSource: values.Get("as"),
	}, nil
}
