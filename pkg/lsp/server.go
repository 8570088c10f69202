// Package lsp serves Java completions over the Language Server Protocol.
package lsp

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tranleduy2000/javaide-sub031/pkg/classpath"
	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

const serverName = "javacomplete"

// AcceptCommand is sent back by clients when a completion item is chosen.
const AcceptCommand = "javacomplete.accept"

// Server is the Java completion language server.
type Server struct {
	handler protocol.Handler
	glspSrv *glspserver.Server
	docs    *DocumentStore
	engine  suggest.Engine
	version string
	limit   int

	// exitFn is called on the exit notification. Defaults to os.Exit.
	exitFn func(int)
}

// Option configures the server.
type Option func(*Server)

// WithLimit caps the items of one completion response.
func WithLimit(n int) Option {
	return func(s *Server) { s.limit = n }
}

func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New creates a language server answering from engine.
func New(engine suggest.Engine, opts ...Option) *Server {
	s := &Server{
		docs:    NewDocumentStore(),
		engine:  engine,
		version: "dev",
		exitFn:  os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion:         s.textDocumentCompletion,
		WorkspaceExecuteCommand:        s.workspaceExecuteCommand,
		WorkspaceDidChangeWatchedFiles: s.workspaceDidChangeWatchedFiles,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio serves the protocol on stdin and stdout.
func (s *Server) RunStdio() error {
	log.Debug("Starting language server on stdio")
	return s.glspSrv.RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		log.Debugf("Client: %s", params.ClientInfo.Name)
	}
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{AcceptCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	log.Debug("Language server shutting down")
	return nil
}

func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

func (s *Server) textDocumentDidOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.Open(params.TextDocument.URI, int32(params.TextDocument.Version), params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}
	s.docs.Change(params.TextDocument.URI, int32(params.TextDocument.Version), content)
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.Close(params.TextDocument.URI)
	return nil
}

// workspaceDidChangeWatchedFiles forwards classpath changes the client
// watches to the engine.
func (s *Server) workspaceDidChangeWatchedFiles(_ *glsp.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, ev := range params.Changes {
		var op classpath.Op
		switch ev.Type {
		case protocol.FileChangeTypeCreated:
			op = classpath.OpAdded
		case protocol.FileChangeTypeChanged:
			op = classpath.OpModified
		case protocol.FileChangeTypeDeleted:
			op = classpath.OpRemoved
		default:
			continue
		}
		s.engine.HandleFileEvent(uriToPath(ev.URI), op)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
