package domain

import (
	"errors"
	"testing"
)

func TestParseDocument(t *testing.T) {
	body := `{
		"returnCode": 200,
		"info": {"docGuid":"doc-1","title":"Hello","category":"/My Notes/","dataModified":1600000000000,"version":42},
		"html": "<html><body>hi</body></html>",
		"resources": [{"name":"a.png","url":"https://kb/a.png","size":12}]
	}`

	doc, err := ParseDocument("kb-1", "doc-1", []byte(body))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}

	if !doc.HasInfo() || !doc.HasData() {
		t.Fatalf("HasInfo=%v HasData=%v, want both", doc.HasInfo(), doc.HasData())
	}
	if doc.Info.Title != "Hello" {
		t.Errorf("Title = %q, want %q", doc.Info.Title, "Hello")
	}
	if doc.Info.Version != 42 {
		t.Errorf("Version = %d, want 42", doc.Info.Version)
	}
	if doc.Info.Modified.IsZero() {
		t.Error("Modified should be set from dataModified")
	}
	if len(doc.Info.Raw) == 0 {
		t.Error("Raw info should be kept")
	}
	if len(doc.Resources) != 1 || doc.Resources[0].Name != "a.png" {
		t.Errorf("Resources = %+v", doc.Resources)
	}
}

func TestParseDocument_InfoOnly(t *testing.T) {
	doc, err := ParseDocument("kb-1", "doc-2", []byte(`{"info":{"title":"T"}}`))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	if doc.HasData() {
		t.Error("HasData should be false without html")
	}
	if doc.Info.DocGUID != "doc-2" {
		t.Errorf("DocGUID = %q, want fallback %q", doc.Info.DocGUID, "doc-2")
	}
}

func TestParseDocument_DataOnly(t *testing.T) {
	doc, err := ParseDocument("kb-1", "doc-3", []byte(`{"info":null,"html":"<p>x</p>"}`))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	if doc.HasInfo() {
		t.Error("HasInfo should be false for null info")
	}
	if doc.HTML != "<p>x</p>" {
		t.Errorf("HTML = %q", doc.HTML)
	}
}

func TestParseDocument_Malformed(t *testing.T) {
	_, err := ParseDocument("kb", "doc", []byte(`not json`))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("err = %v, want ErrMalformedResponse", err)
	}
}
