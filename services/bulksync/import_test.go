package bulksync

import (
	"errors"
	"testing"
	"time"
)

const validImport = `{
  "identity": {"name": "alice", "exportedAt": "2026-08-01T00:00:00Z"},
  "shows": [
    {"showId": 100, "mediaType": "series", "name": "Some Show", "year": 2020},
    {"showId": 200, "mediaType": "movie", "name": "Big Movie", "year": 2026}
  ],
  "watched": [
    {"showId": 100, "seasonNumber": 1, "episodeNumber": 1},
    {"showId": 100, "seasonNumber": 1, "episodeNumber": 2},
    {"showId": 200, "isMovie": true}
  ]
}`

func TestParseImportValidDocument(t *testing.T) {
	doc, err := ParseImport([]byte(validImport))
	if err != nil {
		t.Fatalf("ParseImport returned error: %v", err)
	}
	if doc.Identity.Name != "alice" {
		t.Fatalf("unexpected identity %q", doc.Identity.Name)
	}
	if len(doc.Shows) != 2 || len(doc.Watched) != 3 {
		t.Fatalf("unexpected document shape: %+v", doc)
	}

	items := doc.WorkItems()
	if len(items) != 3 {
		t.Fatalf("expected 3 work items, got %d", len(items))
	}
	for _, item := range items {
		if !item.Watched {
			t.Fatal("all import items replay as watched")
		}
	}
	if !items[2].IsMovie {
		t.Fatal("movie item lost its flag")
	}
}

func TestParseImportRejectsMalformedDocuments(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"unknown field", `{"identity":{"name":"a"},"extra":true}`},
		{"missing identity", `{"shows":[],"watched":[]}`},
		{"bad media type", `{"identity":{"name":"a"},"shows":[{"showId":1,"mediaType":"podcast","name":"x"}]}`},
		{"show without id", `{"identity":{"name":"a"},"shows":[{"mediaType":"movie","name":"x"}]}`},
		{"watched without id", `{"identity":{"name":"a"},"watched":[{"seasonNumber":1,"episodeNumber":1}]}`},
		{"episode without number", `{"identity":{"name":"a"},"watched":[{"showId":1,"seasonNumber":1}]}`},
		{"trailing data", `{"identity":{"name":"a"}}{"identity":{"name":"b"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseImport([]byte(tc.body)); !errors.Is(err, ErrInvalidImportFormat) {
				t.Fatalf("expected ErrInvalidImportFormat, got %v", err)
			}
		})
	}
}

func TestPreviewReportsCountsAndEstimate(t *testing.T) {
	doc, err := ParseImport([]byte(validImport))
	if err != nil {
		t.Fatalf("ParseImport returned error: %v", err)
	}

	preview := Preview(doc, 4, 500*time.Millisecond)
	if preview.ProfileName != "alice" {
		t.Fatalf("unexpected profile name %q", preview.ProfileName)
	}
	if preview.Shows != 2 || preview.Items != 3 {
		t.Fatalf("unexpected preview %+v", preview)
	}
	if preview.Estimate != "1 second" {
		t.Fatalf("unexpected estimate %q", preview.Estimate)
	}
}
