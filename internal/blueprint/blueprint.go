package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// FileName is the per-entry metadata file inside a Blueprint folder.
const FileName = "blueprint.json"

// PreviewFileName is the normalized name of every preview image.
const PreviewFileName = "preview.jpg"

// Blueprint is one community preset for one Series.
type Blueprint struct {
	Description []string
	Preview     string
	Creator     string
	Created     string
	Templates   json.RawMessage
	Fonts       []Font
	Episodes    json.RawMessage
	// Extra holds every top-level key not modelled above.
	Extra map[string]json.RawMessage
}

// Font is one font definition inside a Blueprint.
type Font struct {
	// File is the font file name inside the Blueprint folder, or "" when the
	// font references a system font.
	File  string
	Extra map[string]json.RawMessage
}

// UnmarshalJSON lifts the modelled keys out of the object. Keys whose value
// does not fit the typed field stay in Extra untouched.
func (b *Blueprint) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("blueprint must be a JSON object")
	}
	*b = Blueprint{}
	lift(raw, "description", &b.Description)
	lift(raw, "preview", &b.Preview)
	lift(raw, "creator", &b.Creator)
	lift(raw, "created", &b.Created)
	lift(raw, "fonts", &b.Fonts)
	liftRaw(raw, "templates", &b.Templates)
	liftRaw(raw, "episodes", &b.Episodes)
	if len(raw) > 0 {
		b.Extra = raw
	}
	return nil
}

// MarshalJSON merges the typed fields back into one object with sorted keys.
func (b Blueprint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Extra)+7)
	for key, value := range b.Extra {
		out[key] = value
	}
	if b.Description != nil {
		out["description"] = b.Description
	}
	if b.Preview != "" {
		out["preview"] = b.Preview
	}
	if b.Creator != "" {
		out["creator"] = b.Creator
	}
	if b.Created != "" {
		out["created"] = b.Created
	}
	if len(b.Templates) > 0 {
		out["templates"] = b.Templates
	}
	if b.Fonts != nil {
		out["fonts"] = b.Fonts
	}
	if len(b.Episodes) > 0 {
		out["episodes"] = b.Episodes
	}
	return json.Marshal(out)
}

func (f *Font) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("font must be a JSON object")
	}
	*f = Font{}
	lift(raw, "file", &f.File)
	if len(raw) > 0 {
		f.Extra = raw
	}
	return nil
}

func (f Font) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Extra)+1)
	for key, value := range f.Extra {
		out[key] = value
	}
	if f.File != "" {
		out["file"] = f.File
	}
	return json.Marshal(out)
}

func lift[T any](raw map[string]json.RawMessage, key string, dst *T) {
	value, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return
	}
	var decoded T
	if err := json.Unmarshal(value, &decoded); err != nil {
		return
	}
	*dst = decoded
	delete(raw, key)
}

func liftRaw(raw map[string]json.RawMessage, key string, dst *json.RawMessage) {
	value, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return
	}
	*dst = value
	delete(raw, key)
}

// Encode renders b as the two-space indented form stored on disk.
func Encode(b *Blueprint) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode blueprint: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses one blueprint.json document.
func Decode(data []byte) (*Blueprint, error) {
	var b Blueprint
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Load reads and parses a blueprint.json file.
func Load(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blueprint: %w", err)
	}
	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

// TemplateCount reports the number of templates whether stored as a list or
// as a name-keyed object.
func (b *Blueprint) TemplateCount() int { return collectionLen(b.Templates) }

// EpisodeCount reports the number of episode overrides.
func (b *Blueprint) EpisodeCount() int { return collectionLen(b.Episodes) }

// FontCount reports the number of font definitions.
func (b *Blueprint) FontCount() int { return len(b.Fonts) }

// AssetNames returns the file names the Blueprint folder must contain besides
// blueprint.json: the preview plus every font file.
func (b *Blueprint) AssetNames() map[string]struct{} {
	names := make(map[string]struct{}, len(b.Fonts)+1)
	if b.Preview != "" {
		names[b.Preview] = struct{}{}
	}
	for _, font := range b.Fonts {
		if font.File != "" {
			names[font.File] = struct{}{}
		}
	}
	return names
}

func collectionLen(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list)
	}
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err == nil {
		return len(object)
	}
	return 0
}
