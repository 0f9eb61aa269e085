package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/wizapi"
)

// KnowledgeBaseAPI is the content server surface of one knowledge base.
type KnowledgeBaseAPI interface {
	DownloadDocument(ctx context.Context, token, docGUID string, opts wizapi.DownloadOptions) (*domain.Document, error)
}

// KnowledgeBaseFactory returns a client for kbGUID on kbServer.
type KnowledgeBaseFactory func(kbServer, kbGUID string) KnowledgeBaseAPI

// DocumentService downloads documents and exports them to a filesystem.
type DocumentService struct {
	tokens *TokenManager
	newKB  KnowledgeBaseFactory
	fs     afero.Fs
}

// NewDocumentService creates a new DocumentService. A nil fs uses the OS
// filesystem.
func NewDocumentService(tokens *TokenManager, newKB KnowledgeBaseFactory, fs afero.Fs) *DocumentService {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DocumentService{tokens: tokens, newKB: newKB, fs: fs}
}

// Download fetches docGUID. An empty kbGUID or kbServer defaults to the
// session user's personal knowledge base. The token is attached when the
// session holds one.
func (s *DocumentService) Download(ctx context.Context, kbGUID, kbServer, docGUID string, opts wizapi.DownloadOptions) (*domain.Document, error) {
	if docGUID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("document guid")
	}

	if kbGUID == "" || kbServer == "" {
		user := s.tokens.UserInfo()
		if user == nil {
			return nil, domain.ErrUnauthenticated.WithDetails("knowledge base defaults to the logged-in user")
		}
		if kbGUID == "" {
			kbGUID = user.KbGUID
		}
		if kbServer == "" {
			kbServer = user.KbServer
		}
	}
	if kbGUID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("knowledge base guid")
	}
	if kbServer == "" {
		return nil, domain.ErrMissingArgument.WithDetails("knowledge base server")
	}

	kb := s.newKB(kbServer, kbGUID)

	var doc *domain.Document
	err := s.tokens.UseOptional(ctx, func(token string) error {
		var err error
		doc, err = kb.DownloadDocument(ctx, token, docGUID, opts)
		return err
	})
	return doc, err
}

// Export writes the document under dir as <docGUID>.json (info) and
// <docGUID>.html (content). Content is written exactly as downloaded.
// It returns the written paths.
func (s *DocumentService) Export(doc *domain.Document, dir string) ([]string, error) {
	if doc == nil || doc.DocGUID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("document")
	}
	if err := CheckExportName(doc.DocGUID); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.ErrStorage.WithDetails("create export dir").WithCause(err)
	}

	var written []string
	if doc.HasInfo() {
		data := []byte(doc.Info.Raw)
		if len(data) == 0 {
			var err error
			if data, err = json.MarshalIndent(doc.Info, "", "  "); err != nil {
				return written, err
			}
		}
		path := filepath.Join(dir, doc.DocGUID+".json")
		if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
			return written, domain.ErrStorage.WithDetails(path).WithCause(err)
		}
		written = append(written, path)
	}

	if doc.HasData() {
		path := filepath.Join(dir, doc.DocGUID+".html")
		if err := afero.WriteFile(s.fs, path, []byte(doc.HTML), 0o644); err != nil {
			return written, domain.ErrStorage.WithDetails(path).WithCause(err)
		}
		written = append(written, path)
	}
	return written, nil
}

// CheckExportName rejects document GUIDs that cannot be used as a file
// name inside the export directory.
func CheckExportName(docGUID string) error {
	if docGUID == "." || strings.Contains(docGUID, "..") || strings.ContainsAny(docGUID, `/\`+"\x00") {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("document guid %q is not a valid file name", docGUID))
	}
	return nil
}
