package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type record struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
}

type document struct {
	Events []record `json:"events"`
}

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("output directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", dir)
	}
	if s.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", s.Dir(), dir)
	}

	// Creating it again is fine
	if _, err := New(dir); err != nil {
		t.Errorf("second New() error = %v", err)
	}
}

func TestNew_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := New("~/du-results")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if want := filepath.Join(home, "du-results"); s.Dir() != want {
		t.Errorf("Dir() = %q, want %q", s.Dir(), want)
	}
}

func TestWriteJSON_Format(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := s.WriteJSON("bulletin.json", map[string]interface{}{
		"courses": []map[string]string{{"course": "COMP-3705", "title": "Compilers"}},
	})
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	want := `{
  "courses": [
    {
      "course": "COMP-3705",
      "title": "Compilers"
    }
  ]
}
`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	in := document{Events: []record{
		{Title: "Commencement", Date: "Saturday, June 14, 2025", Time: "9:00am - 11:00am", Description: "Ceremony"},
		{Title: "Open House", Date: "Friday, March 7, 2025"},
	}}

	if _, err := s.WriteJSON("calendar_events.json", in); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var out document
	if err := s.ReadJSON("calendar_events.json", &out); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON_Overwrites(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.WriteJSON("out.json", document{Events: []record{{Title: "a"}, {Title: "b"}}}); err != nil {
		t.Fatalf("first WriteJSON() error = %v", err)
	}
	if _, err := s.WriteJSON("out.json", document{Events: []record{{Title: "c"}}}); err != nil {
		t.Fatalf("second WriteJSON() error = %v", err)
	}

	var out document
	if err := s.ReadJSON("out.json", &out); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(out.Events) != 1 || out.Events[0].Title != "c" {
		t.Errorf("ReadJSON() = %+v, want only the second write", out)
	}
}

func TestWriteFile_DirectoryRemoved(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := s.WriteFile("calendar_events.ics", []byte("BEGIN:VCALENDAR\r\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestInvalidNames(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, name := range []string{"", ".", "..", "../escape.json", "sub/dir.json"} {
		if _, err := s.WriteJSON(name, document{}); err == nil {
			t.Errorf("WriteJSON(%q) error = nil, want invalid name error", name)
		}
	}
}

func TestReadJSON_Errors(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var out document
	if err := s.ReadJSON("missing.json", &out); err == nil {
		t.Error("ReadJSON() on missing file returned nil error")
	}

	if _, err := s.WriteFile("broken.json", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	err = s.ReadJSON("broken.json", &out)
	if err == nil || !strings.Contains(err.Error(), "parsing broken.json") {
		t.Errorf("ReadJSON() error = %v, want parse error", err)
	}
}
