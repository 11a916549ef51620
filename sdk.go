package utorrent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jfxdev/go-utorrent/form"
	"github.com/jfxdev/go-utorrent/request"
)

// Param is one ordered key/value pair used for list filters and torrent properties.
type Param = request.Param

// ErrTorrentNotFound is returned by typed helpers when the daemon knows
// nothing about the requested hash.
var ErrTorrentNotFound = errors.New("torrent not found")

const torrentFileField = "torrent_file"

func actionParams(action string, hashes ...string) request.Params {
	params := request.Params{{Key: "action", Value: action}}
	for _, hash := range hashes {
		params.Add("hash", hash)
	}
	return params
}

// Reusable multi-hash action
func (c *Client) hashAction(ctx context.Context, action string, hashes []string) (*Response, error) {
	resp, err := c.perform(ctx, http.MethodGet, actionParams(action, hashes...))
	if err != nil {
		return nil, errors.Wrapf(err, "%s failed", action)
	}
	return resp, nil
}

// List returns all torrents and labels. Filters are appended after list=1
// in the given order, e.g. Param{Key: "cid", Value: cacheID}.
func (c *Client) List(ctx context.Context, filters ...Param) (*Response, error) {
	params := request.Params{{Key: "list", Value: "1"}}
	params = append(params, filters...)

	resp, err := c.perform(ctx, http.MethodGet, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list torrents")
	}
	return resp, nil
}

// ListTorrents is List decoded into a TorrentList.
func (c *Client) ListTorrents(ctx context.Context, filters ...Param) (*TorrentList, error) {
	resp, err := c.List(ctx, filters...)
	if err != nil {
		return nil, err
	}

	var list TorrentList
	if err := resp.Decode(&list); err != nil {
		return nil, errors.Wrap(err, "error decoding torrent list")
	}
	return &list, nil
}

func (c *Client) Start(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "start", hashes)
}

func (c *Client) Stop(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "stop", hashes)
}

func (c *Client) Pause(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "pause", hashes)
}

func (c *Client) Unpause(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "unpause", hashes)
}

// ForceStart starts torrents ignoring queue limits.
func (c *Client) ForceStart(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "forcestart", hashes)
}

func (c *Client) Recheck(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "recheck", hashes)
}

// Remove deletes torrents from the daemon, keeping downloaded data.
func (c *Client) Remove(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "remove", hashes)
}

// RemoveData deletes torrents together with their downloaded data.
func (c *Client) RemoveData(ctx context.Context, hashes ...string) (*Response, error) {
	return c.hashAction(ctx, "removedata", hashes)
}

func (c *Client) GetFiles(ctx context.Context, hash string) (*Response, error) {
	return c.hashAction(ctx, "getfiles", []string{hash})
}

// Files is GetFiles decoded. Index holds the position used by SetPriority.
func (c *Client) Files(ctx context.Context, hash string) ([]*TorrentFile, error) {
	resp, err := c.GetFiles(ctx, hash)
	if err != nil {
		return nil, err
	}

	// "files": ["HASH", [[name, size, downloaded, priority], ...]]
	var payload struct {
		Files []json.RawMessage `json:"files"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "error decoding files")
	}
	if len(payload.Files) < 2 {
		return nil, errors.Wrapf(ErrTorrentNotFound, "hash %s", hash)
	}

	var files []*TorrentFile
	if err := json.Unmarshal(payload.Files[1], &files); err != nil {
		return nil, newProtocolError("unexpected files shape", err)
	}
	for i, f := range files {
		f.Index = i
	}
	return files, nil
}

func (c *Client) GetProps(ctx context.Context, hash string) (*Response, error) {
	return c.hashAction(ctx, "getprops", []string{hash})
}

// Props is GetProps decoded.
func (c *Client) Props(ctx context.Context, hash string) (*TorrentProps, error) {
	resp, err := c.GetProps(ctx, hash)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Props []*TorrentProps `json:"props"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "error decoding props")
	}
	if len(payload.Props) == 0 {
		return nil, errors.Wrapf(ErrTorrentNotFound, "hash %s", hash)
	}
	return payload.Props[0], nil
}

// SetProps sends one s/v pair per property, in order.
func (c *Client) SetProps(ctx context.Context, hash string, props ...Param) (*Response, error) {
	params := actionParams("setprops", hash)
	for _, p := range props {
		params.Add("s", p.Key)
		params.Add("v", p.Value)
	}

	resp, err := c.perform(ctx, http.MethodGet, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set properties")
	}
	return resp, nil
}

// SetPriority sets priority on the files at the given indices.
func (c *Client) SetPriority(ctx context.Context, hash string, priority Priority, fileIndices ...int) (*Response, error) {
	params := actionParams("setprio", hash)
	params.Add("p", strconv.Itoa(int(priority)))
	for _, idx := range fileIndices {
		params.Add("f", strconv.Itoa(idx))
	}

	resp, err := c.perform(ctx, http.MethodGet, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set priority")
	}
	return resp, nil
}

// AddFile uploads the .torrent at filePath under the given filename.
// The whole file is read into memory.
func (c *Client) AddFile(ctx context.Context, filename, filePath string) (*Response, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open torrent file")
	}
	defer f.Close()

	if filename == "" {
		filename = filepath.Base(filePath)
	}
	return c.addTorrentFile(ctx, filename, f)
}

// AddFileData uploads raw .torrent content.
func (c *Client) AddFileData(ctx context.Context, filename string, data []byte) (*Response, error) {
	return c.addTorrentFile(ctx, filename, bytes.NewReader(data))
}

func (c *Client) addTorrentFile(ctx context.Context, filename string, r io.Reader) (*Response, error) {
	body := form.New()
	if err := body.AddFile(torrentFileField, filename, r); err != nil {
		return nil, errors.Wrap(err, "failed to read torrent file")
	}

	payload, err := body.Serialize()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build upload body")
	}

	headers := map[string]string{
		"Content-Type":   body.ContentType(),
		"Content-Length": strconv.Itoa(len(payload)),
	}

	resp, err := c.perform(ctx, http.MethodPost, actionParams("add-file"),
		request.WithBody(payload),
		request.WithHeaders(headers),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to add torrent file")
	}
	return resp, nil
}

// AddURL asks the daemon to fetch a torrent from an http(s) URL or magnet link.
func (c *Client) AddURL(ctx context.Context, torrentURL string) (*Response, error) {
	if strings.HasPrefix(torrentURL, "magnet:") {
		magnet, err := ParseMagnetLink(torrentURL)
		if err != nil {
			return nil, err
		}
		c.logger.Debug().Str("hash", magnet.Hash).Str("name", magnet.DisplayName).Msg("adding magnet link")
	}

	params := request.Params{
		{Key: "action", Value: "add-url"},
		{Key: "s", Value: torrentURL},
	}

	resp, err := c.perform(ctx, http.MethodGet, params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to add torrent url")
	}
	return resp, nil
}
