package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"taskline/internal/model"
)

// Wire format of the json backend: one object mapping task name to the tuple
//
//	[start, end, category, notes, users]
//
// Object key order follows store order.

const tupleLen = 5

func encodeWire(tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer
	if len(tasks) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}
	buf.WriteString("{\n")
	for i, t := range tasks {
		key, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		users := t.AssignedUsers
		if users == nil {
			users = []string{}
		}
		tuple, err := json.Marshal([]any{t.Start.String(), t.End.String(), t.Category, t.Notes, users})
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(tuple)
		if i != len(tasks)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// decodeWire reads the object in document order. Duplicate keys keep the position of
// their first occurrence and the value of the last, like an upsert.
func decodeWire(b []byte) ([]model.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object of tasks")
	}

	var order []string
	byName := map[string]model.Task{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var raw []json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("task %q: %w", name, err)
		}
		t, err := decodeTuple(name, raw)
		if err != nil {
			return nil, err
		}
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}
		byName[name] = t
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	out := make([]model.Task, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out, nil
}

func decodeTuple(name string, raw []json.RawMessage) (model.Task, error) {
	if len(raw) != tupleLen {
		return model.Task{}, fmt.Errorf("task %q: expected %d fields, got %d", name, tupleLen, len(raw))
	}
	var startS, endS string
	t := model.Task{Name: name}
	fields := []struct {
		dst  any
		name string
	}{
		{&startS, "start"},
		{&endS, "end"},
		{&t.Category, "category"},
		{&t.Notes, "notes"},
		{&t.AssignedUsers, "users"},
	}
	for i, f := range fields {
		if err := json.Unmarshal(raw[i], f.dst); err != nil {
			return model.Task{}, fmt.Errorf("task %q: %s: %w", name, f.name, err)
		}
	}
	var err error
	if t.Start, err = model.ParseDate(startS); err != nil {
		return model.Task{}, fmt.Errorf("task %q: start: %w", name, err)
	}
	if t.End, err = model.ParseDate(endS); err != nil {
		return model.Task{}, fmt.Errorf("task %q: end: %w", name, err)
	}
	if t.AssignedUsers == nil {
		t.AssignedUsers = []string{}
	}
	return t, nil
}
