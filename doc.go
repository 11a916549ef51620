/*
Package utorrent is a client for the uTorrent / BitTorrent WebUI control API.

The WebUI guards its single action endpoint with HTTP Basic Auth and a
session token scraped from token.html. New performs that handshake once;
every action then sends the token with its query string and returns the
HTTP status together with the decoded JSON body.

Highlights:
  - One resty transport per Client with its own cookie jar, nothing global
  - Query pairs encoded in insertion order, repeated keys allowed
  - Typed decoding of list, getfiles and getprops payloads
  - In-memory multipart upload of .torrent files (see package form)
  - AuthError / NetworkError / ProtocolError classification

Requests are never retried. Setting Config.RefreshTokenOnAuthFailure makes a
401 or 403 trigger a single token refresh and replay.

Quick start:

	import (
	    "context"
	    "log"

	    utorrent "github.com/jfxdev/go-utorrent"
	)

	func main() {
	    client, err := utorrent.New(utorrent.Config{
	        BaseURL:  "http://localhost:8080/gui/",
	        Username: "admin",
	        Password: "password",
	    })
	    if err != nil {
	        log.Fatal(err)
	    }

	    list, err := client.ListTorrents(context.Background())
	    if err != nil {
	        log.Fatal(err)
	    }
	    log.Printf("%d torrents", len(list.Torrents))
	}

A Client is meant to be used by one goroutine at a time.
*/
package utorrent
