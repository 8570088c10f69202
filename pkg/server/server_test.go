package server

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"

	"github.com/tranleduy2000/javaide-sub031/pkg/classfile/classfiletest"
	"github.com/tranleduy2000/javaide-sub031/pkg/config"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
	"github.com/tranleduy2000/javaide-sub031/pkg/suggest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testJar(t *testing.T) string {
	t.Helper()
	pub := uint16(model.AccPublic)
	static := uint16(model.AccPublic | model.AccStatic)
	classes := []classfiletest.Class{
		{Name: "java/lang/Object", Access: pub},
		{Name: "java/lang/Math", Super: "java/lang/Object", Access: pub, Methods: []classfiletest.Member{
			{Access: static, Name: "max", Desc: "(II)I"},
			{Access: static, Name: "min", Desc: "(II)I"},
		}},
		{Name: "java/util/ArrayList", Super: "java/lang/Object", Access: pub, Methods: []classfiletest.Member{
			{Access: pub, Name: "<init>", Desc: "()V"},
		}},
	}
	path := filepath.Join(t.TempDir(), "rt.jar")
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
	return path
}

func newEngine(t *testing.T) *suggest.Completer {
	c := suggest.NewCompleter(suggest.DefaultOptions())
	t.Cleanup(func() { c.Close() })
	return c
}

// roundTrip serves reqs and returns the raw decoder over the responses.
func roundTrip(t *testing.T, srv func(r io.Reader, w io.Writer) *Server, reqs ...Request) *msgpack.Decoder {
	t.Helper()
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}
	require.NoError(t, srv(&in, &out).Serve(context.Background()))
	return msgpack.NewDecoder(&out)
}

func serverFor(engine suggest.Engine, cfg *config.Config) func(io.Reader, io.Writer) *Server {
	return func(r io.Reader, w io.Writer) *Server {
		return NewServerWithIO(engine, cfg, "", r, w)
	}
}

func TestCompleteAndAccept(t *testing.T) {
	engine := newEngine(t)
	jar := testJar(t)
	srv := serverFor(engine, nil)

	src := "class A { void f() { Math.m"
	dec := roundTrip(t, srv,
		Request{ID: "r1", Action: "rebuild", Paths: []string{jar}, Wait: true},
		Request{ID: "r2", Action: "complete", Text: src, Cursor: len(src)},
	)

	var rb RebuildResponse
	require.NoError(t, dec.Decode(&rb))
	assert.Equal(t, "r1", rb.ID)
	assert.Equal(t, "ok", rb.Status)
	assert.Equal(t, 3, rb.Classes)

	var cr CompletionResponse
	require.NoError(t, dec.Decode(&cr))
	assert.Equal(t, "r2", cr.ID)
	assert.Equal(t, "member-access", cr.Context)
	require.Equal(t, 2, cr.Count)
	assert.Equal(t, "max(int, int)", cr.Suggestions[0].Name)
	assert.Equal(t, "method", cr.Suggestions[0].Kind)
	assert.Equal(t, len(src)-1, cr.Suggestions[0].Start)
	assert.Equal(t, len(src), cr.Suggestions[0].End)

	dec = roundTrip(t, srv, Request{ID: "r3", Action: "accept", Text: src, Item: cr.Suggestions[1].ID})
	var ar AcceptResponse
	require.NoError(t, dec.Decode(&ar))
	require.Len(t, ar.Edits, 1)
	assert.Equal(t, TextEdit{Start: len(src) - 1, End: len(src), Text: "min("}, ar.Edits[0])
	assert.Empty(t, ar.Import)
}

func TestAcceptWithImport(t *testing.T) {
	engine := newEngine(t)
	h := engine.RebuildIndex(context.Background(), []string{testJar(t)})
	require.NoError(t, h.Wait(context.Background()))

	src := "package p;\n\nclass A {\n  ArrayLi"
	items, _ := engine.Complete(src, len(src), 0)
	require.Len(t, items, 1)

	dec := roundTrip(t, serverFor(engine, nil), Request{ID: "a", Action: "accept", Text: src, Item: items[0].ID})
	var ar AcceptResponse
	require.NoError(t, dec.Decode(&ar))
	assert.Equal(t, "java.util.ArrayList", ar.Import)
	require.Len(t, ar.Edits, 2)

	text := src
	for _, e := range ar.Edits {
		text = text[:e.Start] + e.Text + text[e.End:]
	}
	assert.Equal(t, "package p;\n\nimport java.util.ArrayList;\n\nclass A {\n  ArrayList", text)
}

func TestRequestErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxSource = 16
	dec := roundTrip(t, serverFor(newEngine(t), cfg),
		Request{ID: "big", Action: "complete", Text: "class Abcdefghijklmnop {", Cursor: 3},
		Request{ID: "cur", Action: "complete", Text: "int", Cursor: 9},
		Request{ID: "unk", Action: "accept", Text: "x", Item: "7:7:7"},
		Request{ID: "op", Action: "event", Path: "/a.jar", Op: "renamed"},
		Request{ID: "what", Action: "explode"},
	)
	codes := map[string]int{}
	for range 5 {
		var er ErrorResponse
		require.NoError(t, dec.Decode(&er))
		assert.NotEmpty(t, er.Error)
		codes[er.ID] = er.Code
	}
	assert.Equal(t, map[string]int{"big": 413, "cur": 400, "unk": 404, "op": 400, "what": 400}, codes)
}

func TestMinPrefixAndLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MinPrefix = 2
	cfg.Server.MaxLimit = 1
	engine := newEngine(t)
	h := engine.RebuildIndex(context.Background(), []string{testJar(t)})
	require.NoError(t, h.Wait(context.Background()))

	bare := "class A { void f() { r"
	member := "class A { void f() { Math.m"
	dec := roundTrip(t, serverFor(engine, cfg),
		Request{ID: "1", Text: bare, Cursor: len(bare)},
		Request{ID: "2", Action: "complete", Text: member, Cursor: len(member), Limit: 10},
	)
	var cr CompletionResponse
	require.NoError(t, dec.Decode(&cr))
	assert.Equal(t, 0, cr.Count)
	require.NoError(t, dec.Decode(&cr))
	assert.Equal(t, 1, cr.Count)
}

func TestStatusEventAndDegraded(t *testing.T) {
	engine := newEngine(t)
	jar := testJar(t)
	srv := serverFor(engine, nil)

	dec := roundTrip(t, srv,
		Request{ID: "s0", Action: "status"},
		Request{ID: "r", Action: "rebuild", Wait: true},
		Request{ID: "e", Action: "event", Path: jar, Op: "added"},
		Request{ID: "s1", Action: "status"},
	)
	var st StatusResponse
	require.NoError(t, dec.Decode(&st))
	assert.Equal(t, "empty", st.State)

	var rb RebuildResponse
	require.NoError(t, dec.Decode(&rb))
	assert.Equal(t, "degraded", rb.Status)
	assert.NotEmpty(t, rb.Error)

	var ack AckResponse
	require.NoError(t, dec.Decode(&ack))
	assert.Equal(t, "ok", ack.Status)

	require.NoError(t, dec.Decode(&st))
	assert.Equal(t, "ready", st.State)
	assert.Equal(t, 3, st.Stats["classes"])
}

func TestRebuildDefaultClasspath(t *testing.T) {
	engine := newEngine(t)
	var in, out bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&in).Encode(Request{ID: "r", Action: "rebuild", Wait: true}))
	s := NewServerWithIO(engine, nil, "", &in, &out)
	s.SetClasspath([]string{testJar(t)})
	require.NoError(t, s.Start())

	var rb RebuildResponse
	require.NoError(t, msgpack.NewDecoder(&out).Decode(&rb))
	assert.Equal(t, "ok", rb.Status)
	assert.Equal(t, 3, rb.Classes)
}

func TestConfigUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := config.InitConfig(path)
	require.NoError(t, err)

	limit := 12
	neg := -1
	var in, out bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	require.NoError(t, enc.Encode(Request{ID: "c1", Action: "config", MaxLimit: &limit}))
	require.NoError(t, enc.Encode(Request{ID: "c2", Action: "config", MinPrefix: &neg}))
	require.NoError(t, NewServerWithIO(newEngine(t), cfg, path, &in, &out).Start())

	dec := msgpack.NewDecoder(&out)
	var ack AckResponse
	require.NoError(t, dec.Decode(&ack))
	assert.Equal(t, "ok", ack.Status)
	var er ErrorResponse
	require.NoError(t, dec.Decode(&er))
	assert.Equal(t, 400, er.Code)

	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, saved.Server.MaxLimit)
}

func TestBadStream(t *testing.T) {
	var out bytes.Buffer
	in := bytes.NewReader([]byte{0xc1})
	err := NewServerWithIO(newEngine(t), nil, "", in, &out).Serve(context.Background())
	require.Error(t, err)

	var er ErrorResponse
	require.NoError(t, msgpack.NewDecoder(&out).Decode(&er))
	assert.Equal(t, 400, er.Code)
	assert.False(t, errors.Is(err, io.EOF))
}
