package rpc

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/chainbound/beaconcore/pkg/duties"
	"github.com/chainbound/beaconcore/pkg/log"
	"github.com/chainbound/beaconcore/pkg/types"
)

// DutiesSource answers the validator client's duties-polling endpoint.
// *duties.Manager satisfies it via its Cached method, which returns what
// a prior Manager.Poll call cached; StateDutiesSource satisfies it by
// computing duties from chain state.
type DutiesSource interface {
	Cached(pubkey types.PublicKey, epoch types.Epoch) (*duties.EpochDuties, bool, error)
}

// BootstrapServer serves the six HTTP bootstrap endpoints (§6) plus the
// validator client's duties-polling endpoint, reading from a ChainStore
// and an optional DutiesSource.
type BootstrapServer struct {
	store  ChainStore
	duties DutiesSource
	mux    *http.ServeMux
	log    *log.Logger
}

// NewBootstrapServer builds a server backed by store. duties may be nil
// if the process only needs to serve bootstrap data, not validator
// duties (e.g. a pure archive node).
func NewBootstrapServer(store ChainStore, dutiesSource DutiesSource) *BootstrapServer {
	s := &BootstrapServer{
		store:  store,
		duties: dutiesSource,
		mux:    http.NewServeMux(),
		log:    log.Default().Module("rpc"),
	}
	s.mux.HandleFunc("/spec/slots_per_epoch", s.handleSlotsPerEpoch)
	s.mux.HandleFunc("/beacon/latest_finalized_checkpoint", s.handleLatestFinalizedCheckpoint)
	s.mux.HandleFunc("/beacon/state", s.handleState)
	s.mux.HandleFunc("/beacon/block", s.handleBlock)
	s.mux.HandleFunc("/network/enr", s.handleENR)
	s.mux.HandleFunc("/network/listen_port", s.handleListenPort)
	s.mux.HandleFunc("/validator/request_shuffling", s.handleRequestShuffling)
	return s
}

// Handler returns the HTTP handler serving every registered endpoint.
func (s *BootstrapServer) Handler() http.Handler { return s.mux }

func (s *BootstrapServer) handleSlotsPerEpoch(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.store.SlotsPerEpoch())
}

func (s *BootstrapServer) handleLatestFinalizedCheckpoint(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	cp, ok := s.store.LatestFinalizedCheckpoint()
	if !ok {
		writeError(w, http.StatusNotFound, "no finalized checkpoint yet")
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (s *BootstrapServer) handleState(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	slot, ok := parseSlotQuery(w, r)
	if !ok {
		return
	}
	st, ok := s.store.StateAtSlot(slot)
	if !ok {
		writeError(w, http.StatusNotFound, "no state at that slot")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *BootstrapServer) handleBlock(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	slot, ok := parseSlotQuery(w, r)
	if !ok {
		return
	}
	b, ok := s.store.BlockAtSlot(slot)
	if !ok {
		writeError(w, http.StatusNotFound, "no block at that slot")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *BootstrapServer) handleENR(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.store.ENR())
}

func (s *BootstrapServer) handleListenPort(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.store.ListenPort())
}

// dutiesResponse is the JSON body for the validator duties endpoint.
// HTTP 200 with both fields null means the validator/epoch pair is
// known but carries no duty this epoch; HTTP 404 means unknown.
type dutiesResponse struct {
	BlockProductionSlot *types.Slot  `json:"block_production_slot"`
	Shard               *types.Shard `json:"shard"`
}

func (s *BootstrapServer) handleRequestShuffling(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	if s.duties == nil {
		writeError(w, http.StatusServiceUnavailable, "duties manager not wired on this node")
		return
	}

	epochStr := r.URL.Query().Get("epoch")
	pubkeyStr := r.URL.Query().Get("pubkey")
	epochNum, err := strconv.ParseUint(epochStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid epoch query parameter")
		return
	}
	pubkey, err := decodePubkeyHex(pubkeyStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pubkey query parameter")
		return
	}

	d, ok, err := s.duties.Cached(pubkey, types.Epoch(epochNum))
	if err != nil {
		s.log.Error("duties lookup failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "validator or epoch unknown")
		return
	}
	writeJSON(w, http.StatusOK, dutiesResponse{BlockProductionSlot: d.BlockProductionSlot, Shard: d.Shard})
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func parseSlotQuery(w http.ResponseWriter, r *http.Request) (types.Slot, bool) {
	raw := r.URL.Query().Get("slot")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot query parameter")
		return 0, false
	}
	return types.Slot(n), true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
