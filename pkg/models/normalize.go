package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedIndex is returned when index data cannot be decoded into a document
var ErrMalformedIndex = errors.New("malformed index data")

// rawIndex accepts both {frames:[...]} and {data:{frames:[...]}}
type rawIndex struct {
	Frames []Frame `json:"frames"`
	Data   *struct {
		Frames []Frame `json:"frames"`
	} `json:"data"`
}

// ParseIndexData decodes stored index data into the canonical document shape.
// The payload may be an object or a JSON string holding the serialized object.
func ParseIndexData(raw []byte) (IndexDocument, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return IndexDocument{Frames: []Frame{}}, nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return IndexDocument{Frames: []Frame{}}, fmt.Errorf("%w: %v", ErrMalformedIndex, err)
		}
		raw = bytes.TrimSpace([]byte(inner))
		if len(raw) == 0 {
			return IndexDocument{Frames: []Frame{}}, nil
		}
	}

	var ri rawIndex
	if err := json.Unmarshal(raw, &ri); err != nil {
		return IndexDocument{Frames: []Frame{}}, fmt.Errorf("%w: %v", ErrMalformedIndex, err)
	}

	frames := ri.Frames
	if len(frames) == 0 && ri.Data != nil && len(ri.Data.Frames) > 0 {
		frames = ri.Data.Frames
	}
	if frames == nil {
		frames = []Frame{}
	}
	for i := range frames {
		if frames[i].Thumbnails == nil {
			frames[i].Thumbnails = []Thumbnail{}
		}
	}
	return IndexDocument{Frames: frames}, nil
}

// NormalizeIndexData is ParseIndexData with malformed input degraded to an empty document
func NormalizeIndexData(raw []byte) IndexDocument {
	doc, err := ParseIndexData(raw)
	if err != nil {
		return IndexDocument{Frames: []Frame{}}
	}
	return doc
}
