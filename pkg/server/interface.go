/*
Package server implements msgpack IPC for Java code completion.

The server reads a stream of msgpack maps from stdin and writes one msgpack
map per request to stdout. Requests are processed synchronously, in order,
with timing info included in responses.

# IPC

Every request carries an ID and an action. The remaining fields depend on
the action.

Completion requests send the source text, the cursor byte offset and an
optional limit:

	{"id": "r1", "action": "complete", "t": "class A { void f() { System.out.pr", "c": 38, "l": 24}

The server responds with ranked suggestions and the detected context:

	{"id": "r1", "s": [{"id": "1:1:0", "n": "print(String)", "s": "print(", "k": "method", ...}], "c": 1, "k": "member-access", "t": 145}

Accepting an item returns the text edits to apply, the import edit included:

	{"id": "r2", "action": "accept", "t": "...", "item": "1:1:0"}

Index management:

	{"id": "r3", "action": "rebuild", "paths": ["/sdk/android.jar"], "wait": true}
	{"id": "r4", "action": "event", "path": "/proj/bin/A.class", "op": "modified"}
	{"id": "r5", "action": "status"}
	{"id": "r6", "action": "config", "max_limit": 32}

Errors are reported with the request ID, a message under "e" and a code.
*/
package server

// Request is the envelope of every IPC message. Fields not used by an
// action are left empty.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`

	// complete, accept
	Text   string `msgpack:"t,omitempty"`
	Cursor int    `msgpack:"c,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Item   string `msgpack:"item,omitempty"`

	// rebuild
	Paths []string `msgpack:"paths,omitempty"`
	Wait  bool     `msgpack:"wait,omitempty"`

	// event
	Path string `msgpack:"path,omitempty"`
	Op   string `msgpack:"op,omitempty"`

	// config
	MaxLimit  *int `msgpack:"max_limit,omitempty"`
	MinPrefix *int `msgpack:"min_prefix,omitempty"`
	MaxSource *int `msgpack:"max_source,omitempty"`
}

// Suggestion - minimal suggestion entry
type Suggestion struct {
	ID      string `msgpack:"id"`
	Name    string `msgpack:"n"`
	Snippet string `msgpack:"s"`
	Kind    string `msgpack:"k"`
	Detail  string `msgpack:"d,omitempty"`
	Start   int    `msgpack:"rs"`
	End     int    `msgpack:"re"`
	Import  string `msgpack:"i,omitempty"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	Context     string       `msgpack:"k"`
	TimeTaken   int64        `msgpack:"t"`
}

// TextEdit replaces the bytes [Start, End) of the request text.
type TextEdit struct {
	Start int    `msgpack:"s"`
	End   int    `msgpack:"e"`
	Text  string `msgpack:"x"`
}

// AcceptResponse lists the edits in the order they apply: later offsets
// first, so earlier offsets stay valid.
type AcceptResponse struct {
	ID        string     `msgpack:"id"`
	Edits     []TextEdit `msgpack:"ed"`
	Import    string     `msgpack:"i,omitempty"`
	TimeTaken int64      `msgpack:"t"`
}

// RebuildResponse - rebuild status; counts are set when the rebuild was
// waited for.
type RebuildResponse struct {
	ID        string   `msgpack:"id"`
	Status    string   `msgpack:"status"`
	Entries   int      `msgpack:"entries,omitempty"`
	Classes   int      `msgpack:"classes,omitempty"`
	Skipped   int      `msgpack:"skipped,omitempty"`
	Failures  []string `msgpack:"failures,omitempty"`
	Error     string   `msgpack:"e,omitempty"`
	TimeTaken int64    `msgpack:"t"`
}

// StatusResponse - engine state and counters
type StatusResponse struct {
	ID    string         `msgpack:"id"`
	State string         `msgpack:"state"`
	Stats map[string]int `msgpack:"stats"`
}

// AckResponse answers event and config requests.
type AckResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for any request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"code"`
}
