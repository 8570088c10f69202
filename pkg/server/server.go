package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tranleduy2000/javaide-sub031/pkg/classify"
	"github.com/tranleduy2000/javaide-sub031/pkg/classpath"
	"github.com/tranleduy2000/javaide-sub031/pkg/config"
	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

// configReloadEvery is the number of requests between config reloads.
const configReloadEvery = 500

// Server handles the IPC for code completions
type Server struct {
	engine     suggest.Engine
	config     *config.Config
	configPath string
	classpath  []string

	reader  *bufio.Reader
	writer  *bufio.Writer
	encoder *msgpack.Encoder

	requestCount int
}

// NewServer creates a completion server using stdin/stdout for IPC.
func NewServer(engine suggest.Engine, cfg *config.Config, configPath string) *Server {
	return NewServerWithIO(engine, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w.
func NewServerWithIO(engine suggest.Engine, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	bw := bufio.NewWriter(w)
	return &Server{
		engine:     engine,
		config:     cfg,
		configPath: configPath,
		reader:     bufio.NewReader(r),
		writer:     bw,
		encoder:    msgpack.NewEncoder(bw),
	}
}

// SetClasspath sets the entries a rebuild request without paths loads.
func (s *Server) SetClasspath(paths []string) {
	s.classpath = append([]string(nil), paths...)
}

// Start serves requests until stdin is closed.
func (s *Server) Start() error {
	return s.Serve(context.Background())
}

// Serve reads requests until EOF or until ctx is done. Rebuilds started by
// requests are bound to ctx.
func (s *Server) Serve(ctx context.Context) error {
	log.Debug("Starting Server.")
	dec := msgpack.NewDecoder(s.reader)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				log.Warnf("Truncated request at end of input")
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			// The stream cannot be resynchronised after a bad message.
			s.sendError("", "invalid msgpack request", 400)
			return err
		}
		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	s.requestCount++
	if s.requestCount%configReloadEvery == 0 {
		s.reloadConfig()
	}

	switch req.Action {
	case "complete", "":
		s.handleComplete(req)
	case "accept":
		s.handleAccept(req)
	case "rebuild":
		s.handleRebuild(ctx, req)
	case "event":
		s.handleEvent(req)
	case "status":
		s.send(StatusResponse{ID: req.ID, State: s.engine.State().String(), Stats: s.engine.Stats()})
	case "config":
		s.handleConfig(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *Server) reloadConfig() {
	if s.configPath == "" {
		return
	}
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		log.Warnf("Reloading config: %v", err)
		return
	}
	s.config = cfg
	log.Debugf("Config reloaded from %s", s.configPath)
}

func (s *Server) checkSource(req Request) bool {
	if maxSource := s.config.Server.MaxSource; maxSource > 0 && len(req.Text) > maxSource {
		s.sendError(req.ID, fmt.Sprintf("source exceeds maximum size of %d bytes", maxSource), 413)
		return false
	}
	if req.Cursor < 0 || req.Cursor > len(req.Text) {
		s.sendError(req.ID, fmt.Sprintf("cursor %d outside source of %d bytes", req.Cursor, len(req.Text)), 400)
		return false
	}
	return true
}

func (s *Server) handleComplete(req Request) {
	if !s.checkSource(req) {
		return
	}
	limit := req.Limit
	if maxLimit := s.config.Server.MaxLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	start := time.Now()
	items, ctx := s.engine.Complete(req.Text, req.Cursor, limit)
	if ctx.Kind == classify.KindBareIdentifier && len(ctx.Partial) < s.config.Server.MinPrefix {
		items = nil
	}
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for %s, %d items", elapsed, ctx.Kind, len(items))

	out := make([]Suggestion, len(items))
	for i, it := range items {
		out[i] = Suggestion{
			ID:      it.ID,
			Name:    it.DisplayName,
			Snippet: it.Snippet,
			Kind:    it.Kind.String(),
			Detail:  it.Detail,
			Start:   it.ReplaceStart,
			End:     it.ReplaceEnd,
			Import:  it.ImportClass,
		}
	}
	s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: out,
		Count:       len(out),
		Context:     ctx.Kind.String(),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// Edits orders the edits of acc so that applying them one after the other
// to the original text is correct.
func Edits(acc suggest.Acceptance) []TextEdit {
	insert := TextEdit{Start: acc.Insert.Start, End: acc.Insert.End, Text: acc.Insert.NewText}
	if acc.Import == nil {
		return []TextEdit{insert}
	}
	imp := TextEdit{Start: acc.Import.Start, End: acc.Import.End, Text: acc.Import.NewText}
	if imp.Start >= insert.End {
		return []TextEdit{imp, insert}
	}
	return []TextEdit{insert, imp}
}

func (s *Server) handleAccept(req Request) {
	if maxSource := s.config.Server.MaxSource; maxSource > 0 && len(req.Text) > maxSource {
		s.sendError(req.ID, fmt.Sprintf("source exceeds maximum size of %d bytes", maxSource), 413)
		return
	}
	if req.Item == "" {
		s.sendError(req.ID, "missing 'item' parameter", 400)
		return
	}
	start := time.Now()
	acc, item, err := s.engine.AcceptID(req.Text, req.Item)
	if err != nil {
		code := 500
		if errors.Is(err, suggest.ErrUnknownItem) {
			code = 404
		}
		s.sendError(req.ID, err.Error(), code)
		return
	}
	resp := AcceptResponse{ID: req.ID, Edits: Edits(acc), TimeTaken: time.Since(start).Microseconds()}
	if acc.Import != nil {
		resp.Import = item.ImportClass
	}
	s.send(resp)
}

func (s *Server) handleRebuild(ctx context.Context, req Request) {
	paths := req.Paths
	if len(paths) == 0 {
		paths = s.classpath
	}
	start := time.Now()
	h := s.engine.RebuildIndex(ctx, paths)
	if !req.Wait {
		s.send(RebuildResponse{ID: req.ID, Status: "started", TimeTaken: time.Since(start).Microseconds()})
		return
	}

	err := h.Wait(ctx)
	resp := RebuildResponse{ID: req.ID, Status: "ok"}
	switch {
	case errors.Is(err, classpath.ErrNoClasses):
		resp.Status = "degraded"
		resp.Error = err.Error()
	case err != nil:
		s.sendError(req.ID, err.Error(), 500)
		return
	}
	rep := h.Report()
	resp.Entries = rep.Entries
	resp.Classes = rep.Classes
	resp.Skipped = rep.Skipped
	for _, le := range rep.Errors {
		resp.Failures = append(resp.Failures, le.Error())
	}
	resp.TimeTaken = time.Since(start).Microseconds()
	s.send(resp)
}

func (s *Server) handleEvent(req Request) {
	if req.Path == "" {
		s.sendError(req.ID, "missing 'path' parameter", 400)
		return
	}
	op, err := classpath.ParseOp(req.Op)
	if err != nil {
		s.sendError(req.ID, err.Error(), 400)
		return
	}
	s.engine.HandleFileEvent(req.Path, op)
	s.send(AckResponse{ID: req.ID, Status: "ok"})
}

func (s *Server) handleConfig(req Request) {
	for _, v := range []*int{req.MaxLimit, req.MinPrefix, req.MaxSource} {
		if v != nil && *v < 0 {
			s.sendError(req.ID, "config values must not be negative", 400)
			return
		}
	}
	if err := s.config.Update(s.configPath, req.MaxLimit, req.MinPrefix, req.MaxSource); err != nil {
		log.Errorf("Saving config: %v", err)
		s.sendError(req.ID, err.Error(), 500)
		return
	}
	s.send(AckResponse{ID: req.ID, Status: "ok"})
}

// send encodes response and flushes it to the client.
func (s *Server) send(response any) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
