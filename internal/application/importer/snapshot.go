package importer

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/storedesk/storedesk/internal/shared/errors"
)

// snapshot is a dump of browser local storage. Values are either JSON
// encoded strings, as local storage keeps them, or raw JSON values.
type snapshot map[string]json.RawMessage

func readSnapshot(path string) (snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("local snapshot not found", path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return snapshot{}, nil
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.NewMalformedLocalStateError("snapshot is not a JSON object", err)
	}
	return snap, nil
}

// value returns the decoded value for key with string wrapping removed.
// An absent key, null or an empty string reports ok=false.
func (s snapshot) value(key string) (json.RawMessage, bool, error) {
	raw, ok := s[key]
	if !ok {
		return nil, false, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false, nil
	}
	if raw[0] != '"' {
		return raw, true, nil
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, false, errors.NewMalformedLocalStateError(key, err)
	}
	if inner == "" || inner == "null" {
		return nil, false, nil
	}
	if !json.Valid([]byte(inner)) {
		// plain string values such as a receipt counter
		quoted, _ := json.Marshal(inner)
		return quoted, true, nil
	}
	return json.RawMessage(inner), true, nil
}

// entry is one element of a collection with the key it was stored under.
type entry struct {
	key     string
	payload json.RawMessage
}

// entries flattens an object (sorted by key) or an array into its
// elements. Array elements are keyed by their "id" field or position.
func (s snapshot) entries(key string) ([]entry, bool, error) {
	raw, ok, err := s.value(key)
	if err != nil || !ok {
		return nil, ok, err
	}
	switch raw[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, true, errors.NewMalformedLocalStateError(key, err)
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]entry, 0, len(keys))
		for _, k := range keys {
			out = append(out, entry{key: k, payload: obj[k]})
		}
		return out, true, nil
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, true, errors.NewMalformedLocalStateError(key, err)
		}
		out := make([]entry, 0, len(arr))
		for i, item := range arr {
			out = append(out, entry{key: elementKey(item, i), payload: item})
		}
		return out, true, nil
	default:
		return nil, true, errors.NewMalformedLocalStateError(key+": expected an object or array", nil)
	}
}

func elementKey(item json.RawMessage, index int) string {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if json.Unmarshal(item, &probe) == nil && len(probe.ID) > 0 && string(probe.ID) != "null" {
		var s string
		if json.Unmarshal(probe.ID, &s) == nil {
			return s
		}
		return string(probe.ID)
	}
	return strconv.Itoa(index)
}

// writeSnapshot replaces the snapshot file atomically.
func writeSnapshot(path string, snap snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
