package lsp

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/tranleduy2000/javaide-sub031/pkg/imports"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, _ := doc.Text()
	cursor := OffsetAt(content, params.Position)

	items, ctx := s.engine.Complete(content, cursor, s.limit)
	log.Debugf("Completion at %d: %s, %d items", cursor, ctx.Kind, len(items))

	out := make([]protocol.CompletionItem, len(items))
	for i, it := range items {
		out[i] = completionItem(content, i, it)
	}
	return protocol.CompletionList{IsIncomplete: false, Items: out}, nil
}

// completionItem maps one suggestion. The engine order is kept through
// SortText; the import a class needs goes into AdditionalTextEdits.
func completionItem(content string, i int, it suggest.SuggestionItem) protocol.CompletionItem {
	kind := itemKind(it)
	sortText := fmt.Sprintf("%05d", i)
	filter := it.Source.Name()
	item := protocol.CompletionItem{
		Label:      it.DisplayName,
		Kind:       &kind,
		SortText:   &sortText,
		FilterText: &filter,
		TextEdit: protocol.TextEdit{
			Range:   rangeOf(content, it.ReplaceStart, it.ReplaceEnd),
			NewText: it.Snippet,
		},
		Command: &protocol.Command{
			Title:     "accept",
			Command:   AcceptCommand,
			Arguments: []any{it.ID},
		},
	}
	if it.Detail != "" {
		detail := it.Detail
		item.Detail = &detail
	}
	if it.ImportClass != "" {
		if edit, ok := imports.ImportClass(content, it.ImportClass); ok {
			item.AdditionalTextEdits = []protocol.TextEdit{{
				Range:   rangeOf(content, edit.Start, edit.End),
				NewText: edit.NewText,
			}}
		}
	}
	return item
}

func itemKind(it suggest.SuggestionItem) protocol.CompletionItemKind {
	switch v := it.Source.(type) {
	case *model.ClassDescription:
		if v.Flags.IsInterface() {
			return protocol.CompletionItemKindInterface
		}
		return protocol.CompletionItemKindClass
	case *model.FieldDescription:
		if v.Owner == nil {
			return protocol.CompletionItemKindVariable
		}
		return protocol.CompletionItemKindField
	}
	switch it.Kind {
	case model.KindMethod:
		return protocol.CompletionItemKindMethod
	case model.KindConstructor:
		return protocol.CompletionItemKindConstructor
	case model.KindPackage:
		return protocol.CompletionItemKindModule
	case model.KindKeyword:
		return protocol.CompletionItemKindKeyword
	}
	return protocol.CompletionItemKindText
}

// workspaceExecuteCommand records the use of an accepted item.
func (s *Server) workspaceExecuteCommand(_ *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != AcceptCommand {
		return nil, fmt.Errorf("unknown command %q", params.Command)
	}
	if len(params.Arguments) != 1 {
		return nil, fmt.Errorf("%s: want one item id, got %d arguments", AcceptCommand, len(params.Arguments))
	}
	id, ok := params.Arguments[0].(string)
	if !ok {
		return nil, fmt.Errorf("%s: item id must be a string, got %T", AcceptCommand, params.Arguments[0])
	}
	if err := s.engine.Touch(id); err != nil {
		// Items go stale when the index is rebuilt; the edit itself was
		// already applied by the client.
		log.Debugf("Accept %s: %v", id, err)
	}
	return nil, nil
}
