package loader

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"indexo/pkg/models"
	"indexo/pkg/store"
)

const catDog = `{"frames":[{"name":"A","thumbnails":[{"thumbName":"t1","label":"Cat","texts":"","image":"i1"}]},{"name":"B","thumbnails":[{"thumbName":"t2","label":"Dog","texts":"","image":"i2"}]}]}`

type fakeFetcher struct {
	result FetchResult
	err    error
	calls  []string
}

func (f *fakeFetcher) FetchIndexDocument(_ context.Context, id string) (FetchResult, error) {
	f.calls = append(f.calls, id)
	return f.result, f.err
}

func TestLoad_Shapes(t *testing.T) {
	nested := `{"data":` + catDog + `}`
	asString, _ := json.Marshal(catDog)

	tests := []struct {
		name    string
		payload string
	}{
		{"top level", catDog},
		{"nested under data", nested},
		{"serialized string", string(asString)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{result: FetchResult{Success: true, Frames: []byte(tt.payload)}}
			frames, err := New(f, Options{}, nil).Load(context.Background(), "abc")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(frames) != 2 || frames[1].Thumbnails[0].ThumbName != "t2" {
				t.Fatalf("frames = %+v", frames)
			}
		})
	}
}

func TestLoad_MalformedPayloadIsEmpty(t *testing.T) {
	f := &fakeFetcher{result: FetchResult{Success: true, Frames: []byte(`"{not json"`)}}
	frames, err := New(f, Options{}, nil).Load(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Load returned %v, want nil", err)
	}
	if frames == nil || len(frames) != 0 {
		t.Fatalf("frames = %#v, want empty non-nil", frames)
	}
}

func TestLoad_MissingIDPolicy(t *testing.T) {
	f := &fakeFetcher{}

	_, err := New(f, Options{OnMissingID: MissingIDError}, nil).Load(context.Background(), "  ")
	if !errors.Is(err, ErrNoIndexSpecified) {
		t.Fatalf("err = %v, want ErrNoIndexSpecified", err)
	}

	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte(`{"data":`+catDog+`}`), 0o644); err != nil {
		t.Fatal(err)
	}
	frames, err := New(f, Options{OnMissingID: MissingIDLoadDefault, DefaultPath: path}, nil).Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load default: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}

	_, err = New(f, Options{OnMissingID: MissingIDLoadDefault, DefaultPath: filepath.Join(t.TempDir(), "missing.json")}, nil).Load(context.Background(), "")
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("err = %v, want ErrLoadFailed", err)
	}

	if len(f.calls) != 0 {
		t.Fatalf("fetcher called %d times without an id", len(f.calls))
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name   string
		f      *fakeFetcher
		reason string
	}{
		{"transport", &fakeFetcher{err: errors.New("connection refused")}, "connection refused"},
		{"not successful", &fakeFetcher{result: FetchResult{Error: "Index file not found"}}, "Index file not found"},
		{"no reason", &fakeFetcher{result: FetchResult{}}, "unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.f, Options{}, nil).Load(context.Background(), "abc")
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err = %v, want *LoadError", err)
			}
			if le.Reason != tt.reason {
				t.Fatalf("Reason = %q, want %q", le.Reason, tt.reason)
			}
			if !errors.Is(err, ErrLoadFailed) {
				t.Fatalf("err does not match ErrLoadFailed")
			}
		})
	}
}

func TestParseMissingIDPolicy(t *testing.T) {
	if p, ok := ParseMissingIDPolicy(""); !ok || p != MissingIDError {
		t.Fatalf("empty = %q, %v", p, ok)
	}
	if p, ok := ParseMissingIDPolicy("loadDefault"); !ok || p != MissingIDLoadDefault {
		t.Fatalf("loadDefault = %q, %v", p, ok)
	}
	if _, ok := ParseMissingIDPolicy("retry"); ok {
		t.Fatalf("retry accepted")
	}
}

func TestStoreFetcher(t *testing.T) {
	s, err := store.OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	rec, err := s.Put(context.Background(), models.Upload{FileName: "f", IndexData: json.RawMessage(catDog)})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	l := New(StoreFetcher{Store: s}, Options{}, nil)
	frames, err := l.Load(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}

	_, err = l.Load(context.Background(), "missing")
	var le *LoadError
	if !errors.As(err, &le) || le.Reason != "Index file not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/index-data" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("id") {
		case "abc":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"abc","indexData":` + catDog + `}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"Index file not found"}`))
		}
	}))
	defer srv.Close()

	l := New(HTTPFetcher{BaseURL: srv.URL + "/", Client: srv.Client()}, Options{}, nil)

	frames, err := l.Load(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(frames))
	}

	_, err = l.Load(context.Background(), "zzz")
	var le *LoadError
	if !errors.As(err, &le) || le.Reason != "Index file not found" {
		t.Fatalf("err = %v", err)
	}
}
