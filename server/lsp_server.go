// Package server hosts the language backend behind an LSP transport. It is
// the protocol-facing shell around the analysis, index, diagnostics, and
// compiler packages; those never import it.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/lexcodex/sslsense/analysis"
	"github.com/lexcodex/sslsense/compiler"
	"github.com/lexcodex/sslsense/config"
	"github.com/lexcodex/sslsense/diagnostics"
	"github.com/lexcodex/sslsense/index"
	"github.com/lexcodex/sslsense/workspace"
)

const payloadCacheBytes = 4 << 20

// Document tracks one open editor file.
type Document struct {
	RelPath    string
	LanguageID string
	Version    int32
	Text       string
}

// Server wires the symbol index and diagnostic engine to a JSON-RPC
// connection. All index reads and writes happen under mu, one request turn
// at a time; the only code running outside a turn is the compiler callback,
// which re-enters through publishCompileResult.
type Server struct {
	cfg    *config.Config
	logger *log.Logger

	mu       sync.Mutex
	rootPath string
	docs     map[string]*Document
	tiers    *index.TierSet
	cache    *index.PayloadCache
	parser   *diagnostics.Parser
	runner   *compiler.Runner
	loader   *workspace.Loader
	conn     *jsonrpc2.Conn
}

// NewServer builds a server. cache (the persistent symbol store) may be nil.
func NewServer(cfg *config.Config, symCache workspace.SymbolCache, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	payloads, err := index.NewPayloadCache(payloadCacheBytes)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Diagnostics.Timeout) * time.Second
	return &Server{
		cfg:    cfg,
		logger: logger,
		docs:   make(map[string]*Document),
		tiers:  index.NewTierSet(),
		cache:  payloads,
		parser: diagnostics.NewParser(logger),
		runner: compiler.NewRunner(logger, timeout),
		loader: workspace.NewLoader(logger, symCache),
	}, nil
}

// RunStdio serves LSP over stdin/stdout until the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	stream := jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	select {
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		var params protocol.InitializeParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.initialize(params), nil
	case "initialized":
		go s.LoadWorkspace(ctx)
		return nil, nil
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		s.didOpen(params)
		return nil, nil
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		s.didChange(params)
		return nil, nil
	case "textDocument/didSave":
		var params protocol.DidSaveTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		s.didSave(ctx, params)
		return nil, nil
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		s.didClose(params)
		return nil, nil
	case "textDocument/completion":
		var params protocol.CompletionParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.completion(params), nil
	case "textDocument/hover":
		var params protocol.HoverParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.hover(params), nil
	case "textDocument/signatureHelp":
		var params protocol.SignatureHelpParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.signatureHelp(params), nil
	case "workspace/reload", "sslsense/reloadWorkspace":
		go s.LoadWorkspace(ctx)
		return nil, nil
	case "shutdown":
		return nil, nil
	case "exit":
		_ = conn.Close()
		return nil, nil
	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: fmt.Sprintf("method %s not handled", req.Method)}
	}
}

func (s *Server) initialize(params protocol.InitializeParams) *protocol.InitializeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if params.RootURI != "" {
		s.rootPath = params.RootURI.Filename()
	} else if params.RootPath != "" {
		s.rootPath = params.RootPath
	}
	s.logger.Printf("initialize root=%s", s.rootPath)
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			CompletionProvider:    &protocol.CompletionOptions{},
			HoverProvider:         true,
			SignatureHelpProvider: &protocol.SignatureHelpOptions{TriggerCharacters: []string{"(", ","}},
		},
		ServerInfo: &protocol.ServerInfo{Name: "sslsense", Version: "0.3.0"},
	}
}

// LoadWorkspace rebuilds the dynamic tier from the workspace header scan and
// the static tier from configured external directories. Runs at startup and
// on explicit reload requests. A failed static load keeps the previous
// static tier in place.
func (s *Server) LoadWorkspace(ctx context.Context) {
	s.mu.Lock()
	root := s.rootPath
	s.mu.Unlock()
	if root == "" {
		return
	}
	for _, lang := range s.cfg.Languages {
		symbols, err := s.loader.ScanDynamic(ctx, root, lang.HeaderExtensions)
		if err != nil {
			s.logger.Printf("workspace scan for %s failed: %v", lang.ID, err)
			continue
		}
		static := s.loader.LoadStatic(ctx, root, lang.HeaderDirs, lang.HeaderExtensions)

		s.mu.Lock()
		s.tiers.SetDynamic(lang.ID, symbols)
		if static != nil {
			s.tiers.SetStatic(lang.ID, static)
		}
		s.mu.Unlock()
		s.logger.Printf("workspace: %s dynamic=%d static=%d", lang.ID, len(symbols), len(static))
	}
}

func (s *Server) didOpen(params protocol.DidOpenTextDocumentParams) {
	rel := s.relPath(params.TextDocument.URI)
	s.mu.Lock()
	s.docs[rel] = &Document{
		RelPath:    rel,
		LanguageID: string(params.TextDocument.LanguageID),
		Version:    params.TextDocument.Version,
		Text:       params.TextDocument.Text,
	}
	s.mu.Unlock()
	s.ReloadFile(rel, string(params.TextDocument.LanguageID), params.TextDocument.Text)
}

func (s *Server) didChange(params protocol.DidChangeTextDocumentParams) {
	if len(params.ContentChanges) == 0 {
		return
	}
	// Full sync: the last change event carries the whole document.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	rel := s.relPath(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[rel]
	if ok {
		doc.Text = text
		doc.Version = params.TextDocument.Version
	}
	langID := ""
	if ok {
		langID = doc.LanguageID
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Printf("didChange for untracked document %s", rel)
		return
	}
	s.ReloadFile(rel, langID, text)
}

func (s *Server) didSave(ctx context.Context, params protocol.DidSaveTextDocumentParams) {
	rel := s.relPath(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[rel]
	text := params.Text
	if text == "" && ok {
		text = doc.Text
	}
	langID := ""
	if ok {
		langID = doc.LanguageID
	}
	root := s.rootPath
	s.mu.Unlock()
	if !ok {
		return
	}
	s.ReloadFile(rel, langID, text)

	if !s.cfg.Diagnostics.OnSave {
		return
	}
	lang, found := s.cfg.LanguageByID(langID)
	if !found || len(lang.Compiler) == 0 {
		return
	}
	absPath := filepath.Join(root, filepath.FromSlash(rel))
	argv := append(append([]string{}, lang.Compiler...), absPath)
	docURI := params.TextDocument.URI
	if _, err := s.runner.Start(ctx, absPath, argv, func(res compiler.Result) {
		s.publishCompileResult(docURI, rel, res)
	}); err != nil {
		s.logger.Printf("compile start failed for %s: %v", rel, err)
		s.notifyShowMessage(ctx, protocol.MessageTypeError, fmt.Sprintf("compile failed to start: %v", err))
	}
}

func (s *Server) didClose(params protocol.DidCloseTextDocumentParams) {
	rel := s.relPath(params.TextDocument.URI)
	s.mu.Lock()
	delete(s.docs, rel)
	s.tiers.SetSelf(rel, nil)
	s.mu.Unlock()
}

func (s *Server) completion(params protocol.CompletionParams) *protocol.CompletionList {
	rel := s.relPath(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[rel]
	langID := ""
	if ok {
		langID = doc.LanguageID
	}
	s.mu.Unlock()
	if !ok {
		return &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}
	}
	items := s.GetCompletions(langID, rel)
	return &protocol.CompletionList{IsIncomplete: false, Items: items}
}

func (s *Server) hover(params protocol.HoverParams) *protocol.Hover {
	rel := s.relPath(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[rel]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	word, found := analysis.SymbolAt(doc.Text, int(params.Position.Line), int(params.Position.Character))
	if !found {
		return nil
	}
	payload, found := s.GetHover(doc.LanguageID, rel, word)
	if !found {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: fmt.Sprintf("```%s\n%s\n```", doc.LanguageID, payload),
		},
	}
}

func (s *Server) signatureHelp(params protocol.SignatureHelpParams) *protocol.SignatureHelp {
	rel := s.relPath(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[rel]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	lines := strings.Split(doc.Text, "\n")
	line := int(params.Position.Line)
	if line < 0 || line >= len(lines) {
		return nil
	}
	name, active, found := analysis.CallContext(lines[line], int(params.Position.Character))
	if !found {
		return nil
	}
	s.mu.Lock()
	sym, found := s.tiers.Query(doc.LanguageID, rel, name)
	s.mu.Unlock()
	if !found {
		return nil
	}
	sig := signatureFor(sym, s.cache.Payload(sym))
	if sig == nil {
		return nil
	}
	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{*sig},
		ActiveSignature: 0,
		ActiveParameter: uint32(active),
	}
}

// GetCompletions returns the completion payload for a language and file:
// self, then static, then dynamic entries, shadowed names included.
func (s *Server) GetCompletions(langID, relPath string) []protocol.CompletionItem {
	s.mu.Lock()
	symbols := s.tiers.ListCompletions(langID, relPath)
	s.mu.Unlock()
	max := s.cfg.Completion.MaxItems
	if max > 0 && len(symbols) > max {
		symbols = symbols[:max]
	}
	items := make([]protocol.CompletionItem, 0, len(symbols))
	for _, sym := range symbols {
		items = append(items, completionItem(sym, s.cache.Payload(sym)))
	}
	return items
}

// GetHover resolves word through the tier precedence chain and returns its
// formatted payload.
func (s *Server) GetHover(langID, relPath, word string) (string, bool) {
	s.mu.Lock()
	sym, ok := s.tiers.Query(langID, relPath, word)
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return s.cache.Payload(sym), true
}

// ReloadFile refreshes the self bucket for relPath from newText and, when
// the file is a header feeding the workspace tier, patches the language's
// dynamic bucket the same way. Entries sourced from other files are never
// touched.
func (s *Server) ReloadFile(relPath, langID, newText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers.SetSelf(relPath, index.Reload(relPath, newText, s.tiers.Self(relPath)))
	lang, ok := s.cfg.LanguageByID(langID)
	if !ok {
		return
	}
	if hasExtension(relPath, lang.HeaderExtensions) {
		s.tiers.SetDynamic(langID, index.Reload(relPath, newText, s.tiers.Dynamic(langID)))
	}
}

// ParseDiagnostics converts compiler stdout for relPath into protocol
// diagnostics, using the tracked document text for column arithmetic.
func (s *Server) ParseDiagnostics(relPath, stdout string) []protocol.Diagnostic {
	s.mu.Lock()
	text := ""
	if doc, ok := s.docs[relPath]; ok {
		text = doc.Text
	}
	s.mu.Unlock()
	res := s.parser.Parse(stdout, diagnostics.NewLineIndex(text))
	items := make([]protocol.Diagnostic, 0, len(res.Errors)+len(res.Warnings))
	for _, item := range res.Errors {
		items = append(items, protocolDiagnostic(item))
	}
	for _, item := range res.Warnings {
		items = append(items, protocolDiagnostic(item))
	}
	return items
}

func (s *Server) publishCompileResult(docURI protocol.DocumentURI, relPath string, res compiler.Result) {
	if res.Err != nil {
		s.logger.Printf("compile job=%s failed: %v", res.JobID, res.Err)
		s.notifyShowMessage(context.Background(), protocol.MessageTypeError, fmt.Sprintf("compiler failed: %v", res.Err))
	}
	items := s.ParseDiagnostics(relPath, res.Stdout)
	if res.ExitCode != 0 {
		s.logger.Printf("compile job=%s exit=%d diagnostics=%d", res.JobID, res.ExitCode, len(items))
		if len(items) == 0 {
			// Failed without anything we can pin to a position; the raw
			// status is all the user gets.
			s.notifyShowMessage(context.Background(), protocol.MessageTypeError,
				fmt.Sprintf("compiler exited with status %d for %s", res.ExitCode, relPath))
		}
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	params := protocol.PublishDiagnosticsParams{URI: docURI, Diagnostics: items}
	if err := conn.Notify(context.Background(), "textDocument/publishDiagnostics", params); err != nil {
		s.logger.Printf("publishDiagnostics for %s: %v", relPath, err)
	}
}

func (s *Server) notifyShowMessage(ctx context.Context, typ protocol.MessageType, message string) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	_ = conn.Notify(ctx, "window/showMessage", protocol.ShowMessageParams{Type: typ, Message: message})
}

// relPath maps a document URI to a workspace-relative slash path. URIs
// outside the workspace keep their absolute path so they still index
// consistently.
func (s *Server) relPath(docURI protocol.DocumentURI) string {
	filename := uri.URI(docURI).Filename()
	s.mu.Lock()
	root := s.rootPath
	s.mu.Unlock()
	if root == "" {
		return filepath.ToSlash(filename)
	}
	rel, err := filepath.Rel(root, filename)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(filename)
	}
	return filepath.ToSlash(rel)
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range exts {
		if strings.ToLower(candidate) == ext {
			return true
		}
	}
	return false
}

func unmarshalParams(req *jsonrpc2.Request, dst interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "params required"}
	}
	return json.Unmarshal(*req.Params, dst)
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

var _ io.ReadWriteCloser = stdrwc{}
