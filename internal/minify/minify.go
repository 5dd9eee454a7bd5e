// Package minify implements the lexical CSS/JS minification pipeline: a
// linear protect, strip, collapse, rewrite, restore sequence over untrusted
// third-party source text. The pipeline is pure and stateless per
// invocation and fails open: any stage error yields the original text back,
// never a hard failure or partial output.
package minify

import "regexp"

// Language selects the rule set for a pipeline run.
type Language string

const (
	LangCSS Language = "css"
	LangJS  Language = "js"
)

// Valid reports whether the language is one of the supported rule sets.
func (l Language) Valid() bool {
	return l == LangCSS || l == LangJS
}

// Stage names the pipeline stages, in execution order.
type Stage string

const (
	StageExtract       Stage = "extract"
	StageStripComments Stage = "strip_comments"
	StageCollapse      Stage = "collapse"
	StageRewrite       Stage = "rewrite"
	StageRestore       Stage = "restore"
)

// DefaultMaxInputBytes bounds worst-case latency on pathological inputs.
const DefaultMaxInputBytes = 2 << 20 // 2 MiB

// Request is the read-only input to one pipeline run.
type Request struct {
	Language Language
	Handle   string
	RawText  string
}

// Result is the outcome of one pipeline run. Succeeded false means
// OutputText equals the raw input (the fallback path); callers must not
// assume minification occurred. Cause carries the pipeline error that
// forced the fallback, nil on success.
type Result struct {
	OutputText string
	BytesSaved int
	Succeeded  bool
	Cause      error
}

// Options configures a Minifier.
type Options struct {
	// MaxInputBytes is the size guard threshold; inputs strictly larger
	// short-circuit to fallback before any stage runs. Zero means
	// DefaultMaxInputBytes.
	MaxInputBytes int

	// ZeroUnits overrides the CSS unit allow-list for zero stripping.
	ZeroUnits []string

	// Exclude holds glob or substring patterns; a matching handle is routed
	// straight to fallback.
	Exclude []string

	// StageHook, if set, is called as each stage begins. Used by tests and
	// instrumentation.
	StageHook func(Stage)
}

// Minifier runs the pipeline. Safe for concurrent use; all per-run state
// lives in the invocation.
type Minifier struct {
	maxBytes   int
	zeroUnitRE *regexp.Regexp
	exclude    []string
	hook       func(Stage)
}

// New creates a Minifier with the given options.
func New(opts Options) *Minifier {
	maxBytes := opts.MaxInputBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxInputBytes
	}
	return &Minifier{
		maxBytes:   maxBytes,
		zeroUnitRE: compileZeroUnitRE(opts.ZeroUnits),
		exclude:    opts.Exclude,
		hook:       opts.StageHook,
	}
}

func (m *Minifier) stage(s Stage) {
	if m.hook != nil {
		m.hook(s)
	}
}

func fallback(raw string, cause error) Result {
	return Result{OutputText: raw, Succeeded: false, Cause: cause}
}

// Minify runs the pipeline on one request. It never returns an error: every
// failure mode degrades to the fallback result carrying the original text.
func (m *Minifier) Minify(req Request) Result {
	raw := req.RawText
	if Excluded(req.Handle, m.exclude) {
		return fallback(raw, NewExcludedError(req.Handle))
	}
	if len(raw) > m.maxBytes {
		return fallback(raw, NewSizeLimitError(len(raw), m.maxBytes))
	}
	out, err := m.run(req)
	if err != nil {
		return fallback(raw, err)
	}
	return Result{
		OutputText: out,
		BytesSaved: len(raw) - len(out),
		Succeeded:  true,
	}
}

// run drives the five stages in order. Errors bubble straight up; Minify
// maps them to the fallback terminal state.
func (m *Minifier) run(req Request) (string, error) {
	ex := &extractor{}

	m.stage(StageExtract)
	var text string
	var err error
	switch req.Language {
	case LangCSS:
		text, err = ex.extractCSS(req.RawText)
	case LangJS:
		text, err = ex.extractJS(req.RawText)
	default:
		return "", NewMalformedInputError("unsupported language " + string(req.Language))
	}
	if err != nil {
		return "", err
	}

	m.stage(StageStripComments)
	text = stripComments(text, req.Language)

	m.stage(StageCollapse)
	text = collapse(text, req.Language)

	m.stage(StageRewrite)
	if req.Language == LangCSS {
		text = rewriteCSS(text, m.zeroUnitRE)
	} else {
		text = rewriteJS(text, ex)
	}

	m.stage(StageRestore)
	return ex.restore(text), nil
}
