package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseIndexData_Shapes(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantFrames int
		wantErr    bool
	}{
		{name: "top level frames", raw: `{"frames":[{"name":"A","thumbnails":[]}]}`, wantFrames: 1},
		{name: "nested under data", raw: `{"data":{"frames":[{"name":"A"},{"name":"B"}]}}`, wantFrames: 2},
		{name: "serialized string", raw: `"{\"frames\":[{\"name\":\"A\"}]}"`, wantFrames: 1},
		{name: "serialized nested string", raw: `"{\"data\":{\"frames\":[{\"name\":\"A\"}]}}"`, wantFrames: 1},
		{name: "null", raw: `null`, wantFrames: 0},
		{name: "empty", raw: ``, wantFrames: 0},
		{name: "object without frames", raw: `{}`, wantFrames: 0},
		{name: "malformed object", raw: `{"frames":[`, wantErr: true},
		{name: "malformed string payload", raw: `"{not json"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseIndexData([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedIndex) {
					t.Fatalf("err = %v, want ErrMalformedIndex", err)
				}
			} else if err != nil {
				t.Fatalf("ParseIndexData returned error: %v", err)
			}
			if doc.Frames == nil {
				t.Fatalf("Frames is nil, want empty slice")
			}
			if len(doc.Frames) != tt.wantFrames {
				t.Fatalf("len(Frames) = %d, want %d", len(doc.Frames), tt.wantFrames)
			}
			for _, f := range doc.Frames {
				if f.Thumbnails == nil {
					t.Fatalf("frame %q has nil thumbnails", f.Name)
				}
			}
		})
	}
}

func TestNormalizeIndexData_MalformedDegradesToEmpty(t *testing.T) {
	doc := NormalizeIndexData([]byte(`"{{{"`))
	if len(doc.Frames) != 0 {
		t.Fatalf("len(Frames) = %d, want 0", len(doc.Frames))
	}
}

func TestSummarize_CountsAndDefaults(t *testing.T) {
	raw := json.RawMessage(`{"data":{"frames":[{"name":"A","thumbnails":[{"thumbName":"t1"},{"thumbName":"t2"}]},{"name":"B","thumbnails":[{"thumbName":"t3"}]}]}}`)
	s := IndexRecord{ID: "abc", IndexData: raw}.Summarize()

	if s.FrameCount != 2 {
		t.Fatalf("FrameCount = %d, want 2", s.FrameCount)
	}
	if s.ThumbnailCount != 3 {
		t.Fatalf("ThumbnailCount = %d, want 3", s.ThumbnailCount)
	}
	if s.Size != len(raw) {
		t.Fatalf("Size = %d, want %d", s.Size, len(raw))
	}
	if s.ProjectID != "unknown" || s.FigmaFileKey != "unknown" || s.FileName != "Unknown File" {
		t.Fatalf("defaults not applied: %+v", s)
	}
}
