package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/chainbound/beaconcore/pkg/duties"
	"github.com/chainbound/beaconcore/pkg/types"
)

// HTTPError wraps a non-2xx response from a bootstrap endpoint with the
// endpoint that produced it (§7's External error kind).
type HTTPError struct {
	Endpoint string
	Status   int
	Detail   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("rpc: %s returned %d: %s", e.Endpoint, e.Status, e.Detail)
}

// ErrInvalidURL is returned when BootstrapClient is given a server
// address that does not parse as an HTTP URL.
var ErrInvalidURL = fmt.Errorf("rpc: invalid bootstrap server URL")

// BootstrapClient consumes the six HTTP bootstrap endpoints (§6) and the
// validator duties-polling endpoint from a running beacon node. It also
// implements duties.BeaconNode, so a *BootstrapClient can be handed
// directly to duties.NewManager.
type BootstrapClient struct {
	baseURL string
	http    *http.Client
}

// NewBootstrapClient builds a client against server, which must be a
// bare host[:port] or a full "http://"/"https://" URL; a bare
// host[:port] is treated as http.
func NewBootstrapClient(server string) (*BootstrapClient, error) {
	if server == "" {
		return nil, ErrInvalidURL
	}
	raw := server
	if !isAbsoluteURL(raw) {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return &BootstrapClient{
		baseURL: u.String(),
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func (c *BootstrapClient) SlotsPerEpoch(ctx context.Context) (uint64, error) {
	var n uint64
	err := c.getJSON(ctx, "/spec/slots_per_epoch", nil, &n)
	return n, err
}

func (c *BootstrapClient) LatestFinalizedCheckpoint(ctx context.Context) (types.Checkpoint, error) {
	var cp types.Checkpoint
	err := c.getJSON(ctx, "/beacon/latest_finalized_checkpoint", nil, &cp)
	return cp, err
}

func (c *BootstrapClient) State(ctx context.Context, slot types.Slot) (types.BeaconState, error) {
	var st types.BeaconState
	q := url.Values{"slot": {fmt.Sprintf("%d", slot)}}
	err := c.getJSON(ctx, "/beacon/state", q, &st)
	return st, err
}

func (c *BootstrapClient) Block(ctx context.Context, slot types.Slot) (types.BeaconBlock, error) {
	var b types.BeaconBlock
	q := url.Values{"slot": {fmt.Sprintf("%d", slot)}}
	err := c.getJSON(ctx, "/beacon/block", q, &b)
	return b, err
}

func (c *BootstrapClient) ENR(ctx context.Context) (string, error) {
	var enr string
	err := c.getJSON(ctx, "/network/enr", nil, &enr)
	return enr, err
}

func (c *BootstrapClient) ListenPort(ctx context.Context) (int, error) {
	var port int
	err := c.getJSON(ctx, "/network/listen_port", nil, &port)
	return port, err
}

// RequestShuffling implements duties.BeaconNode against the bootstrap
// server's /validator/request_shuffling endpoint. A 404 response means
// the validator/epoch pair is unknown, surfaced as (nil, nil) per
// duties.BeaconNode's contract.
func (c *BootstrapClient) RequestShuffling(ctx context.Context, epoch types.Epoch, pubkey types.PublicKey) (*duties.EpochDuties, error) {
	q := url.Values{
		"epoch":  {fmt.Sprintf("%d", epoch)},
		"pubkey": {encodePubkeyHex(pubkey)},
	}
	var resp dutiesResponse
	err := c.getJSON(ctx, "/validator/request_shuffling", q, &resp)
	if err != nil {
		var httpErr *HTTPError
		if isNotFound(err, &httpErr) {
			return nil, nil
		}
		return nil, err
	}
	return &duties.EpochDuties{BlockProductionSlot: resp.BlockProductionSlot, Shard: resp.Shard}, nil
}

func isNotFound(err error, target **HTTPError) bool {
	he, ok := err.(*HTTPError)
	if !ok {
		return false
	}
	*target = he
	return he.Status == http.StatusNotFound
}

func (c *BootstrapClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &HTTPError{Endpoint: path, Status: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body errorBody
		json.NewDecoder(resp.Body).Decode(&body)
		return &HTTPError{Endpoint: path, Status: resp.StatusCode, Detail: body.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
