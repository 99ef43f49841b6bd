package generate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// CommandTable is the transceiver's own record of learned codes, keyed by
// device name and then command name.
type CommandTable map[string]map[string]TableEntry

// TableEntry is a single code (flat) or a named set of sub-codes (group).
type TableEntry struct {
	Code  string
	Group map[string]string
}

// IsGroup reports whether the entry holds sub-commands.
func (e TableEntry) IsGroup() bool {
	return e.Group != nil
}

// UnmarshalJSON accepts a code string, a list of codes (the first is used)
// or an object of sub-command codes.
func (e *TableEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty table entry")
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &e.Code)
	case '[':
		var codes []string
		if err := json.Unmarshal(data, &codes); err != nil {
			return err
		}
		if len(codes) > 0 {
			e.Code = codes[0]
		}
		return nil
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		e.Group = make(map[string]string, len(raw))
		for name, v := range raw {
			var code string
			if err := json.Unmarshal(v, &code); err != nil {
				continue
			}
			e.Group[name] = code
		}
		return nil
	case 'n':
		return nil
	default:
		return fmt.Errorf("unsupported table entry: %s", string(data[:1]))
	}
}

// MarshalJSON writes the entry back in the shape it was read in.
func (e TableEntry) MarshalJSON() ([]byte, error) {
	if e.Group != nil {
		return json.Marshal(e.Group)
	}
	return json.Marshal(e.Code)
}

// ParseCommandTable decodes a command table. Both the bare table and the
// transceiver storage wrapper {"version": ..., "data": {...}} are accepted.
func ParseCommandTable(data []byte) (CommandTable, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("invalid command table: %w", err)
	}

	if inner, ok := top["data"]; ok && isStorageWrapper(top) {
		var table CommandTable
		if err := json.Unmarshal(inner, &table); err == nil {
			if table == nil {
				table = CommandTable{}
			}
			return table, nil
		}
	}

	var table CommandTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("invalid command table: %w", err)
	}
	if table == nil {
		table = CommandTable{}
	}
	return table, nil
}

// isStorageWrapper distinguishes the storage envelope from a table that has
// a device literally named "data".
func isStorageWrapper(top map[string]json.RawMessage) bool {
	if len(top) == 1 {
		return true
	}
	_, hasVersion := top["version"]
	_, hasKey := top["key"]
	return hasVersion || hasKey
}

// LoadCommandTable reads a command table file. A missing file yields an
// empty table.
func LoadCommandTable(path string) (CommandTable, error) {
	if path == "" {
		return CommandTable{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return CommandTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read command table: %w", err)
	}
	return ParseCommandTable(data)
}

// lookup returns the table key and entries for a device, trying the id
// first and then the display name.
func (t CommandTable) lookup(id, name string) (string, map[string]TableEntry) {
	if entries, ok := t[id]; ok {
		return id, entries
	}
	if entries, ok := t[name]; ok {
		return name, entries
	}
	return "", nil
}

// Names returns the sorted device names in the table.
func (t CommandTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
