package utorrent

import (
	"reflect"
	"testing"
)

func TestParseMagnetLink(t *testing.T) {
	uri := "magnet:?xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a&dn=Ubuntu+24.04&tr=udp%3A%2F%2Ftracker.one%3A80&tr=udp%3A%2F%2Ftracker.two%3A80&xl=1024"

	magnet, err := ParseMagnetLink(uri)
	if err != nil {
		t.Fatalf("ParseMagnetLink failed: %v", err)
	}

	if magnet.Hash != "c12fe1c06bba254a9dc9f519b335aa7c1367a88a" {
		t.Errorf("Unexpected hash %q", magnet.Hash)
	}
	if magnet.DisplayName != "Ubuntu 24.04" {
		t.Errorf("Unexpected display name %q", magnet.DisplayName)
	}
	wantTrackers := []string{"udp://tracker.one:80", "udp://tracker.two:80"}
	if !reflect.DeepEqual(magnet.Trackers, wantTrackers) {
		t.Errorf("Expected trackers %v, got %v", wantTrackers, magnet.Trackers)
	}
	if magnet.ExactLength != "1024" {
		t.Errorf("Unexpected exact length %q", magnet.ExactLength)
	}
}

func TestParseMagnetLinkInvalid(t *testing.T) {
	for _, uri := range []string{
		"",
		"http://example.com/a.torrent",
		"magnet:xt=urn:btih:abc",
		"magnet:?dn=only-a-name",
		"magnet:?xt=%zz",
	} {
		if _, err := ParseMagnetLink(uri); err == nil {
			t.Errorf("Expected error for %q", uri)
		}
	}
}
