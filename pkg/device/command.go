package device

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Command is a captured IR/RF payload. It is either a bare payload string
// or a structured record carrying the signal kind and capture time. Both
// forms decode from and encode back to the shape they were stored in.
type Command struct {
	code string
	meta *CommandMeta
}

// CommandMeta holds the fields of a structured command record.
type CommandMeta struct {
	Type         string     // ir or rf, may be empty
	LearnedAt    *time.Time // nil when unknown
	HasCode      bool       // false when the record carried no code field
	HasLearnedAt bool       // false when the record carried no learned_at field
	legacyKey    bool       // payload was stored under "data"
	null         bool       // stored as a JSON null
}

// NewPayload returns a bare command.
func NewPayload(code string) Command {
	return Command{code: code}
}

// NewRecord returns a structured command.
func NewRecord(code, kind string, learnedAt time.Time) Command {
	t := learnedAt.UTC()
	return Command{
		code: code,
		meta: &CommandMeta{Type: kind, LearnedAt: &t, HasCode: true, HasLearnedAt: true},
	}
}

// Payload returns the encoded signal, or "" when the record carries none.
func (c Command) Payload() string {
	if c.meta != nil && !c.meta.HasCode {
		return ""
	}
	return c.code
}

// Meta returns the structured metadata, or nil for bare payloads.
func (c Command) Meta() *CommandMeta {
	return c.meta
}

// Kind returns the command type for structured records, "" otherwise.
func (c Command) Kind() string {
	if c.meta == nil {
		return ""
	}
	return c.meta.Type
}

// Clone returns a deep copy.
func (c Command) Clone() Command {
	if c.meta == nil {
		return c
	}
	m := *c.meta
	if c.meta.LearnedAt != nil {
		t := *c.meta.LearnedAt
		m.LearnedAt = &t
	}
	return Command{code: c.code, meta: &m}
}

// LearnedAt stays raw so an explicit null survives a round trip.
type commandRecord struct {
	Code      *string         `json:"code,omitempty"`
	Data      *string         `json:"data,omitempty"`
	Type      string          `json:"command_type,omitempty"`
	LearnedAt json.RawMessage `json:"learned_at,omitempty"`
}

var jsonNull = []byte("null")

// MarshalJSON encodes bare payloads as strings and records as objects.
func (c Command) MarshalJSON() ([]byte, error) {
	if c.meta == nil {
		return json.Marshal(c.code)
	}
	if c.meta.null {
		return jsonNull, nil
	}

	rec := commandRecord{Type: c.meta.Type}
	switch {
	case c.meta.LearnedAt != nil:
		ts, err := json.Marshal(c.meta.LearnedAt)
		if err != nil {
			return nil, err
		}
		rec.LearnedAt = ts
	case c.meta.HasLearnedAt:
		rec.LearnedAt = jsonNull
	}
	if c.meta.HasCode {
		code := c.code
		if c.meta.legacyKey {
			rec.Data = &code
		} else {
			rec.Code = &code
		}
	}
	return json.Marshal(rec)
}

// UnmarshalJSON accepts either a string or a record object.
func (c *Command) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty command value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Command{code: s}
		return nil
	case '{':
		var rec commandRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		meta := &CommandMeta{Type: rec.Type, HasLearnedAt: len(rec.LearnedAt) > 0}
		if meta.HasLearnedAt && !bytes.Equal(rec.LearnedAt, jsonNull) {
			var t time.Time
			if err := json.Unmarshal(rec.LearnedAt, &t); err != nil {
				return fmt.Errorf("invalid learned_at: %w", err)
			}
			meta.LearnedAt = &t
		}
		var code string
		switch {
		case rec.Code != nil:
			code = *rec.Code
			meta.HasCode = true
		case rec.Data != nil:
			code = *rec.Data
			meta.HasCode = true
			meta.legacyKey = true
		}
		*c = Command{code: code, meta: meta}
		return nil
	case 'n':
		*c = Command{meta: &CommandMeta{null: true}}
		return nil
	default:
		return fmt.Errorf("command must be a string or an object, got %s", string(data[:1]))
	}
}
