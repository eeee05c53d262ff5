package engine

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/marbleforge/trackengine/engine/board"
	"github.com/marbleforge/trackengine/engine/grid"
)

// boardExchange mirrors spec.md §6's wire format exactly: the engine only
// interprets the "board" object; "profile" passes through opaque to
// whatever editor/UI collaborator sent it.
type boardExchange struct {
	Version int               `json:"version"`
	Board   boardExchangeBody `json:"board"`
	Profile json.RawMessage   `json:"profile,omitempty"`
}

type boardExchangeBody struct {
	Size       [3]int32            `json:"size"`
	Placements []placementExchange `json:"placements"`
}

type placementExchange struct {
	Part string   `json:"part"`
	Lvl  uint8    `json:"lvl"`
	Pos  [3]int32 `json:"pos"`
	Rot  uint8    `json:"rot"`
}

// LoadResult carries the parts of a successful load the caller might want
// beyond the mutated engine state.
type LoadResult struct {
	Version int
	Profile json.RawMessage
}

// LoadBoard decodes a board exchange blob (optionally gzip-framed),
// replaces the engine's board wholesale, rebuilds the track graph, and
// clears any prior Faulted state. Decode or validation failures return a
// positioned error list without mutating engine state; the engine keeps
// running whatever board it had before the call.
func (e *Engine) LoadBoard(blob []byte) (LoadResult, error) {
	raw := blob
	if isGzip(blob) {
		decoded, err := gunzip(blob)
		if err != nil {
			return LoadResult{}, fmt.Errorf("engine: gzip decode: %w", err)
		}
		raw = decoded
	}

	var payload boardExchange
	if err := json.Unmarshal(raw, &payload); err != nil {
		return LoadResult{}, fmt.Errorf("engine: decode board exchange: %w", err)
	}
	if len(payload.Board.Placements) > e.conf.MaxPlacements {
		return LoadResult{}, fmt.Errorf("engine: %d placements exceeds configured maximum %d",
			len(payload.Board.Placements), e.conf.MaxPlacements)
	}

	newBoard := board.New(e.catalog)
	for i, p := range payload.Board.Placements {
		partID, ok := e.catalog.LookupByName(p.Part)
		if !ok {
			return LoadResult{}, fmt.Errorf("engine: placement %d: unknown part %q", i, p.Part)
		}
		cell := grid.C(p.Pos[0], p.Pos[1], p.Pos[2])
		rot := grid.Rotation(p.Rot % 4)
		if err := newBoard.Place(partID, cell, rot, p.Lvl); err != nil {
			return LoadResult{}, fmt.Errorf("engine: placement %d at %v: %w", i, cell, err)
		}
	}

	newGraph := board.NewGraph()
	if err := newGraph.Rebuild(newBoard); err != nil {
		return LoadResult{}, fmt.Errorf("engine: track graph: %w", err)
	}

	e.board = newBoard
	e.graph = newGraph
	e.modules.Reconcile(e.board, e.graph)
	e.faulted.Store(nil)

	return LoadResult{Version: payload.Version, Profile: payload.Profile}, nil
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

func gunzip(b []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
