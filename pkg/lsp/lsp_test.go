package lsp

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/goleak"

	"github.com/tranleduy2000/javaide-sub031/pkg/classfile/classfiletest"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeJar(t *testing.T, path string, classes ...classfiletest.Class) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for _, c := range classes {
		w, err := zw.Create(c.Name + ".class")
		require.NoError(t, err)
		_, err = w.Write(c.Bytes())
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func testServer(t *testing.T) (*Server, *suggest.Completer, string) {
	t.Helper()
	pub := uint16(model.AccPublic)
	jar := filepath.Join(t.TempDir(), "rt.jar")
	writeJar(t, jar,
		classfiletest.Class{Name: "java/lang/Object", Access: pub},
		classfiletest.Class{Name: "java/lang/String", Super: "java/lang/Object", Access: pub, Methods: []classfiletest.Member{
			{Access: pub, Name: "length", Desc: "()I"},
			{Access: pub, Name: "isEmpty", Desc: "()Z"},
		}},
		classfiletest.Class{Name: "java/util/ArrayList", Super: "java/lang/Object", Access: pub},
	)
	engine := suggest.NewCompleter(suggest.DefaultOptions())
	t.Cleanup(func() { engine.Close() })
	require.NoError(t, engine.RebuildIndex(context.Background(), []string{jar}).Wait(context.Background()))
	return New(engine, WithLimit(10)), engine, jar
}

func glspCtx() *glsp.Context {
	return &glsp.Context{Notify: func(string, any) {}}
}

func completionAt(t *testing.T, s *Server, uri string, line, char int) []protocol.CompletionItem {
	t.Helper()
	res, err := s.textDocumentCompletion(glspCtx(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(char)},
		},
	})
	require.NoError(t, err)
	list, ok := res.(protocol.CompletionList)
	require.True(t, ok, "got %T", res)
	return list.Items
}

func TestInitializeCapabilities(t *testing.T) {
	s, _, _ := testServer(t)
	res, err := s.initialize(glspCtx(), &protocol.InitializeParams{})
	require.NoError(t, err)
	init := res.(protocol.InitializeResult)
	require.NotNil(t, init.Capabilities.CompletionProvider)
	assert.Equal(t, []string{"."}, init.Capabilities.CompletionProvider.TriggerCharacters)
	require.NotNil(t, init.Capabilities.ExecuteCommandProvider)
	assert.Equal(t, []string{AcceptCommand}, init.Capabilities.ExecuteCommandProvider.Commands)
	assert.Equal(t, serverName, init.ServerInfo.Name)
}

func TestDocumentSync(t *testing.T) {
	s, _, _ := testServer(t)
	uri := "file:///p/A.java"
	require.NoError(t, s.textDocumentDidOpen(glspCtx(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "java", Version: 1, Text: "class A {}"},
	}))
	require.NoError(t, s.textDocumentDidChange(glspCtx(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "class B {}"}},
	}))
	text, version := s.docs.Get(uri).Text()
	assert.Equal(t, "class B {}", text)
	assert.Equal(t, int32(2), version)

	require.NoError(t, s.textDocumentDidClose(glspCtx(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	assert.Nil(t, s.docs.Get(uri))
	assert.Empty(t, completionAt(t, s, uri, 0, 0))
}

func TestCompletionMembers(t *testing.T) {
	s, _, _ := testServer(t)
	uri := "file:///p/A.java"
	src := "class A {\n  void f() { \"x\".le"
	s.docs.Open(uri, 1, src)

	items := completionAt(t, s, uri, 1, 19)
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, "length()", it.Label)
	assert.Equal(t, protocol.CompletionItemKindMethod, *it.Kind)
	edit, ok := it.TextEdit.(protocol.TextEdit)
	require.True(t, ok)
	assert.Equal(t, "length()", edit.NewText)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 17},
		End:   protocol.Position{Line: 1, Character: 19},
	}, edit.Range)
	assert.Empty(t, it.AdditionalTextEdits)
	require.NotNil(t, it.Command)
	assert.Equal(t, AcceptCommand, it.Command.Command)
	require.Len(t, it.Command.Arguments, 1)
}

func TestCompletionImportEdit(t *testing.T) {
	s, _, _ := testServer(t)
	uri := "file:///p/A.java"
	src := "package p;\n\nclass A {\n  ArrayLi"
	s.docs.Open(uri, 1, src)

	items := completionAt(t, s, uri, 3, 9)
	require.Len(t, items, 1)
	assert.Equal(t, protocol.CompletionItemKindClass, *items[0].Kind)
	require.Len(t, items[0].AdditionalTextEdits, 1)
	add := items[0].AdditionalTextEdits[0]
	assert.Equal(t, "\n\nimport java.util.ArrayList;", add.NewText)
	assert.Equal(t, protocol.Position{Line: 0, Character: 10}, add.Range.Start)
}

func TestExecuteAcceptTouches(t *testing.T) {
	s, engine, _ := testServer(t)
	uri := "file:///p/A.java"
	src := "class A { void f() { \"x\".is"
	s.docs.Open(uri, 1, src)
	src2 := "class A { void f() { \"x\"."
	s.docs.Open("file:///p/B.java", 1, src2)

	items := completionAt(t, s, uri, 0, len(src))
	require.Len(t, items, 1)
	_, err := s.workspaceExecuteCommand(glspCtx(), &protocol.ExecuteCommandParams{
		Command:   AcceptCommand,
		Arguments: items[0].Command.Arguments,
	})
	require.NoError(t, err)

	all, _ := engine.Complete(src2, len(src2), 0)
	require.Len(t, all, 2)
	assert.Equal(t, "isEmpty", all[0].Source.Name(), "accepted item ranks first")

	_, err = s.workspaceExecuteCommand(glspCtx(), &protocol.ExecuteCommandParams{Command: "other"})
	assert.Error(t, err)
	_, err = s.workspaceExecuteCommand(glspCtx(), &protocol.ExecuteCommandParams{Command: AcceptCommand, Arguments: []any{42.0}})
	assert.Error(t, err)
}

func TestWatchedFiles(t *testing.T) {
	s, engine, jar := testServer(t)
	notify := func(typ protocol.UInteger) {
		require.NoError(t, s.workspaceDidChangeWatchedFiles(glspCtx(), &protocol.DidChangeWatchedFilesParams{
			Changes: []protocol.FileEvent{{URI: "file://" + jar, Type: typ}},
		}))
	}
	require.Equal(t, 3, engine.Stats()["classes"])

	notify(protocol.FileChangeTypeDeleted)
	assert.Equal(t, 0, engine.Stats()["classes"])

	notify(protocol.FileChangeTypeCreated)
	assert.Equal(t, 3, engine.Stats()["classes"])

	pub := uint16(model.AccPublic)
	writeJar(t, jar,
		classfiletest.Class{Name: "java/lang/Object", Access: pub},
		classfiletest.Class{Name: "java/util/HashMap", Super: "java/lang/Object", Access: pub},
	)
	notify(protocol.FileChangeTypeChanged)
	assert.Equal(t, 2, engine.Stats()["classes"])

	notify(99)
	assert.Equal(t, 2, engine.Stats()["classes"], "unknown change types are ignored")
}

func TestPositions(t *testing.T) {
	content := "ab\nç€😀x\n"
	assert.Equal(t, 0, OffsetAt(content, protocol.Position{}))
	assert.Equal(t, 2, OffsetAt(content, protocol.Position{Line: 0, Character: 9}))
	// ç is 2 bytes, € 3, 😀 4 bytes and two UTF-16 units.
	assert.Equal(t, 3+2+3, OffsetAt(content, protocol.Position{Line: 1, Character: 2}))
	assert.Equal(t, 3+2+3+4, OffsetAt(content, protocol.Position{Line: 1, Character: 4}))
	assert.Equal(t, len(content), OffsetAt(content, protocol.Position{Line: 7}))

	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, PositionAt(content, 3+2+3+4))
	assert.Equal(t, protocol.Position{Line: 2, Character: 0}, PositionAt(content, len(content)))
}
