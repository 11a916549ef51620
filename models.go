package utorrent

import (
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client talks to a single uTorrent WebUI instance.
type Client struct {
	mu      sync.RWMutex
	config  Config
	baseURL *url.URL
	http    *resty.Client
	token   string
	logger  zerolog.Logger
}

// Config contains runtime client settings and credentials.
type Config struct {
	// BaseURL is the WebUI root, e.g. http://localhost:8080/gui/
	BaseURL        string
	Username       string
	Password       string
	RequestTimeout time.Duration
	UserAgent      string

	// RefreshTokenOnAuthFailure re-fetches the token and replays the request
	// once when an action is answered with 401 or 403. Off by default.
	RefreshTokenOnAuthFailure bool

	// Logger receives debug events. Nil disables logging.
	Logger *zerolog.Logger
}

// Response is the outcome of a single action.
type Response struct {
	StatusCode int
	// Data is the generic decoding of the body: map[string]any for objects.
	Data any
	Raw  json.RawMessage
}

// Decode unmarshals the raw body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return newProtocolError("unexpected response shape", err)
	}
	return nil
}

// Priority of a file inside a torrent.
type Priority int

const (
	PrioritySkip   Priority = 0
	PriorityLow    Priority = 1
	PriorityNormal Priority = 2
	PriorityHigh   Priority = 3
)

// Status is the bit field reported for each torrent.
type Status int

const (
	StatusStarted         Status = 1 << iota // 1
	StatusChecking                           // 2
	StatusStartAfterCheck                    // 4
	StatusChecked                            // 8
	StatusError                              // 16
	StatusPaused                             // 32
	StatusQueued                             // 64
	StatusLoaded                             // 128
)

// Has reports whether all bits in flag are set.
func (s Status) Has(flag Status) bool {
	return s&flag == flag
}

// TorrentList is the payload of a list request.
type TorrentList struct {
	Build    int        `json:"build"`
	Labels   []Label    `json:"label"`
	Torrents []*Torrent `json:"torrents"`
	// CacheID can be passed back as the cid filter to receive only changes.
	CacheID string `json:"torrentc"`
	// Changed and Removed are populated for cid requests.
	Changed []*Torrent `json:"torrentp"`
	Removed []string   `json:"torrentm"`
}

// Label is a torrent label together with the number of torrents using it.
type Label struct {
	Name  string
	Count int
}

func (l *Label) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return decodePositional(raw, &l.Name, &l.Count)
}

// Torrent is one row of the torrents array. Progress and ratio are in
// per mille, speeds in bytes per second, ETA in seconds.
type Torrent struct {
	Hash            string
	Status          Status
	Name            string
	Size            int64
	PercentProgress int
	Downloaded      int64
	Uploaded        int64
	Ratio           int
	UploadSpeed     int64
	DownloadSpeed   int64
	ETA             int64
	Label           string
	PeersConnected  int
	PeersInSwarm    int
	SeedsConnected  int
	SeedsInSwarm    int
	Availability    int64
	QueueOrder      int
	Remaining       int64
	DownloadURL     string
	RSSFeedURL      string
	StatusMessage   string
	StreamID        string
	AddedOn         int64
	CompletedOn     int64
	AppUpdateURL    string
	SavePath        string
}

func (t *Torrent) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// Older builds stop after Remaining.
	return decodePositional(raw,
		&t.Hash, &t.Status, &t.Name, &t.Size, &t.PercentProgress,
		&t.Downloaded, &t.Uploaded, &t.Ratio, &t.UploadSpeed, &t.DownloadSpeed,
		&t.ETA, &t.Label, &t.PeersConnected, &t.PeersInSwarm, &t.SeedsConnected,
		&t.SeedsInSwarm, &t.Availability, &t.QueueOrder, &t.Remaining,
		&t.DownloadURL, &t.RSSFeedURL, &t.StatusMessage, &t.StreamID,
		&t.AddedOn, &t.CompletedOn, &t.AppUpdateURL, &t.SavePath,
	)
}

// Progress returns completion in the range [0, 1].
func (t *Torrent) Progress() float64 {
	return float64(t.PercentProgress) / 1000
}

// ShareRatio returns uploaded/downloaded as a float.
func (t *Torrent) ShareRatio() float64 {
	return float64(t.Ratio) / 1000
}

// TorrentFile is one entry of a getfiles response.
type TorrentFile struct {
	Index      int
	Name       string
	Size       int64
	Downloaded int64
	Priority   Priority
}

func (f *TorrentFile) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return decodePositional(raw, &f.Name, &f.Size, &f.Downloaded, &f.Priority)
}

// TorrentProps is the per torrent settings block of a getprops response.
// Tri-state fields use -1 for "not allowed", 0 for off and 1 for on.
type TorrentProps struct {
	Hash         string `json:"hash"`
	Trackers     string `json:"trackers"`
	UploadRate   int64  `json:"ulrate"`
	DownloadRate int64  `json:"dlrate"`
	SuperSeed    int    `json:"superseed"`
	DHT          int    `json:"dht"`
	PEX          int    `json:"pex"`
	SeedOverride int    `json:"seed_override"`
	SeedRatio    int    `json:"seed_ratio"`
	SeedTime     int64  `json:"seed_time"`
	UploadSlots  int    `json:"ulslots"`
}

// MagnetLink is the parsed form of a magnet URI.
type MagnetLink struct {
	Hash             string
	DisplayName      string
	Trackers         []string
	ExactLength      string
	ExactSource      string
	Keywords         string
	AcceptableSource string
}

// decodePositional fills dst from the leading elements of raw. Missing
// trailing elements leave their destinations untouched.
func decodePositional(raw []json.RawMessage, dst ...any) error {
	for i, d := range dst {
		if i >= len(raw) {
			break
		}
		if err := json.Unmarshal(raw[i], d); err != nil {
			return err
		}
	}
	return nil
}
