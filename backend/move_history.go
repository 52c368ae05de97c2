package main

import "encoding/json"

type MoveHistory struct {
	entries []MoveRecord
}

func (h *MoveHistory) Clear() {
	h.entries = nil
}

func (h *MoveHistory) Push(entry MoveRecord) {
	h.entries = append(h.entries, entry)
}

func (h MoveHistory) Size() int {
	return len(h.entries)
}

func (h MoveHistory) All() []MoveRecord {
	return append([]MoveRecord(nil), h.entries...)
}

func (h MoveHistory) Last() (MoveRecord, bool) {
	if len(h.entries) == 0 {
		return MoveRecord{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Clone detaches the backing array so appends on one snapshot never leak
// into another.
func (h MoveHistory) Clone() MoveHistory {
	return MoveHistory{entries: h.All()}
}

func (h MoveHistory) MarshalJSON() ([]byte, error) {
	entries := h.entries
	if entries == nil {
		entries = []MoveRecord{}
	}
	return json.Marshal(entries)
}
