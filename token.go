package utorrent

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// ErrTokenNotFound is wrapped into the AuthError returned when token.html
// does not carry a token.
var ErrTokenNotFound = errors.New("token not found in token.html")

// extractToken returns the text of the first <div id="token"> in page.
func extractToken(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", errors.Wrap(err, "parsing token page")
	}

	div := doc.Find("div#token").First()
	if div.Length() == 0 {
		return "", ErrTokenNotFound
	}

	token := strings.TrimSpace(div.Text())
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}
