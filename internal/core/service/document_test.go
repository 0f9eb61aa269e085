package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/yndnr/wizcli-go/internal/cli/connection"
	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/wizapi"
	"github.com/yndnr/wizcli-go/internal/wizapi/wizapitest"
)

type fakeKB struct {
	server string
	kbGUID string
	token  string
	opts   wizapi.DownloadOptions
	err    error
}

func (f *fakeKB) DownloadDocument(_ context.Context, token, docGUID string, opts wizapi.DownloadOptions) (*domain.Document, error) {
	f.token = token
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{KbGUID: f.kbGUID, DocGUID: docGUID, HTML: "<p>x</p>"}, nil
}

func newFakeKBFactory(kb *fakeKB) KnowledgeBaseFactory {
	return func(kbServer, kbGUID string) KnowledgeBaseAPI {
		kb.server = kbServer
		kb.kbGUID = kbGUID
		return kb
	}
}

func TestDocumentService_DownloadDefaultsToPersonalKb(t *testing.T) {
	api := newFakeAccountAPI()
	tm, _ := newTestTokenManager(api)
	tm.SetUserInfo(api.user)

	kb := &fakeKB{}
	svc := NewDocumentService(tm, newFakeKBFactory(kb), afero.NewMemMapFs())

	doc, err := svc.Download(context.Background(), "", "", "doc-1", wizapi.DefaultDownloadOptions())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if kb.kbGUID != "kb-alice" || kb.server != "https://kshttps0.wiz.cn" {
		t.Errorf("kb = %q on %q, want personal kb", kb.kbGUID, kb.server)
	}
	if kb.token != "token-1" {
		t.Errorf("token = %q, want session token", kb.token)
	}
	if doc.DocGUID != "doc-1" {
		t.Errorf("DocGUID = %q, want %q", doc.DocGUID, "doc-1")
	}
}

func TestDocumentService_DownloadExplicitKbWithoutSession(t *testing.T) {
	tm, _ := newTestTokenManager(newFakeAccountAPI())
	kb := &fakeKB{}
	svc := NewDocumentService(tm, newFakeKBFactory(kb), afero.NewMemMapFs())

	_, err := svc.Download(context.Background(), "kb-shared", "https://ks.example.com", "doc-1", wizapi.DownloadOptions{Info: true})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if kb.token != "" {
		t.Errorf("token = %q, want empty without session", kb.token)
	}
	if !kb.opts.Info || kb.opts.Data {
		t.Errorf("opts = %+v, want info only", kb.opts)
	}
}

func TestDocumentService_DownloadErrors(t *testing.T) {
	tm, _ := newTestTokenManager(newFakeAccountAPI())
	svc := NewDocumentService(tm, newFakeKBFactory(&fakeKB{}), afero.NewMemMapFs())
	ctx := context.Background()

	if _, err := svc.Download(ctx, "", "", "doc-1", wizapi.DefaultDownloadOptions()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("Download() without session error = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.Download(ctx, "kb", "https://ks", "", wizapi.DefaultDownloadOptions()); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("Download() without doc guid error = %v, want ErrMissingArgument", err)
	}
}

func TestDocumentService_DownloadExpiredToken(t *testing.T) {
	api := newFakeAccountAPI()
	tm, _ := newTestTokenManager(api)
	tm.SetUserInfo(api.user)

	svc := NewDocumentService(tm, newFakeKBFactory(&fakeKB{err: domain.ErrTokenExpired}), afero.NewMemMapFs())
	_, err := svc.Download(context.Background(), "", "", "doc-1", wizapi.DefaultDownloadOptions())
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("Download() error = %v, want ErrTokenExpired", err)
	}
	if tm.State() != StateExpired {
		t.Errorf("State() = %v, want expired", tm.State())
	}
}

func TestDocumentService_Export(t *testing.T) {
	fs := afero.NewMemMapFs()
	tm, _ := newTestTokenManager(newFakeAccountAPI())
	svc := NewDocumentService(tm, nil, fs)

	raw := json.RawMessage(`{"docGuid":"doc-1","title":"Hello","dataModified":1612137600000}`)
	doc := &domain.Document{
		KbGUID:  "kb",
		DocGUID: "doc-1",
		Info:    &domain.DocumentInfo{DocGUID: "doc-1", Title: "Hello", Raw: raw},
		HTML:    "<html>é</html>",
	}

	paths, err := svc.Export(doc, "out")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v, want 2 files", paths)
	}

	info, err := afero.ReadFile(fs, filepath.Join("out", "doc-1.json"))
	if err != nil {
		t.Fatalf("read info: %v", err)
	}
	if string(info) != string(raw) {
		t.Errorf("info = %s, want raw server object", info)
	}

	html, err := afero.ReadFile(fs, filepath.Join("out", "doc-1.html"))
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if string(html) != doc.HTML {
		t.Errorf("html = %q, want %q", html, doc.HTML)
	}
}

func TestDocumentService_ExportPartial(t *testing.T) {
	fs := afero.NewMemMapFs()
	tm, _ := newTestTokenManager(newFakeAccountAPI())
	svc := NewDocumentService(tm, nil, fs)

	paths, err := svc.Export(&domain.Document{DocGUID: "doc-2", Info: &domain.DocumentInfo{Title: "No raw"}}, "")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(paths) != 1 || paths[0] != "doc-2.json" {
		t.Fatalf("paths = %v, want [doc-2.json]", paths)
	}
	if ok, _ := afero.Exists(fs, "doc-2.html"); ok {
		t.Error("html should not be written without data")
	}

	if _, err := svc.Export(nil, "out"); !errors.Is(err, domain.ErrMissingArgument) {
		t.Errorf("Export(nil) error = %v, want ErrMissingArgument", err)
	}
}

func TestDocumentService_Integration(t *testing.T) {
	srv := wizapitest.NewServer(wizapitest.User{UserID: "alice@example.com", Password: "secret", KbGUID: "kb-alice"})
	defer srv.Close()
	srv.AddDocument("kb-alice", "doc-9", "<p>nine</p>")

	transport := connection.NewHTTPClient(connection.Options{})
	account := wizapi.NewAccountClient(wizapi.NewServer(srv.URL, domain.RoleAccount), transport)
	tm := NewTokenManager(account, nil)
	factory := func(kbServer, kbGUID string) KnowledgeBaseAPI {
		return wizapi.NewKnowledgeBaseClient(wizapi.NewServer(kbServer, domain.RoleContent), kbGUID, transport)
	}
	svc := NewDocumentService(tm, factory, afero.NewMemMapFs())
	ctx := context.Background()

	if _, err := tm.Login(ctx, "alice@example.com", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	doc, err := svc.Download(ctx, "", "", "doc-9", wizapi.DefaultDownloadOptions())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if doc.HTML != "<p>nine</p>" || !doc.HasInfo() {
		t.Errorf("doc = %+v", doc)
	}

	srv.ExpireTokens()
	if err := tm.KeepAlive(ctx); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("KeepAlive() error = %v, want ErrTokenExpired", err)
	}
	if tm.State() != StateExpired {
		t.Errorf("State() = %v, want expired", tm.State())
	}
}

func TestDocumentService_ExportRejectsUnsafeGUID(t *testing.T) {
	fs := afero.NewMemMapFs()
	tm, _ := newTestTokenManager(newFakeAccountAPI())
	svc := NewDocumentService(tm, nil, fs)

	for _, guid := range []string{"../x", "a/b", `a\b`, "..", ".", "x.."} {
		doc := &domain.Document{DocGUID: guid, HTML: "<p>x</p>"}
		if _, err := svc.Export(doc, "out"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Export(%q) error = %v, want ErrInvalidArgument", guid, err)
		}
	}
	if ok, _ := afero.Exists(fs, "x.html"); ok {
		t.Error("nothing should be written outside the export dir")
	}

	if err := CheckExportName("6e1c8a2f-0b5d-4c1e-9f3a-1d2b3c4d5e6f"); err != nil {
		t.Errorf("CheckExportName(guid) error = %v", err)
	}
}
