package classify

import (
	"strings"
)

// DefaultWindow is how far back, in bytes, declarations are searched.
const DefaultWindow = 2500

type Options struct {
	// Window bounds the declaration search before the cursor.
	Window int
}

// Classify runs the chain over text up to cursor. It reports false for
// blank input and for cursors inside comments or literals.
func Classify(text string, cursor int, env Env, opts Options) (Context, bool) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	src := text[:cursor]
	if strings.TrimSpace(src) == "" {
		return Context{}, false
	}
	cleaned, inCode := clean(src)
	if !inCode {
		return Context{}, false
	}
	if env == nil {
		env = nopEnv{}
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	window := cleaned
	if len(window) > opts.Window {
		window = window[len(window)-opts.Window:]
	}
	in := &Input{
		Stmt:   statement(cleaned),
		Line:   currentLine(cleaned),
		Window: window,
		File:   parseFile(cleaned),
		Env:    env,
	}
	return Run(in)
}

// Run evaluates the chain over a prepared input.
func Run(in *Input) (Context, bool) {
	for _, m := range Chain {
		if ctx, ok := m.Match(in); ok {
			ctx.File = in.File
			return ctx, true
		}
	}
	return Context{}, false
}
