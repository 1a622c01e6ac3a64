// Package hoedown implements the core of a two-pass, byte-oriented
// Markdown parser. It converts a UTF-8 byte stream into a rendered
// output by calling a caller-supplied set of Renderer callbacks; the
// output format (HTML, LaTeX, a syntax tree, ...) is determined
// entirely by which callbacks the caller provides.
//
// The package is a distillation of the upskirt/hoedown lineage of
// Markdown parsers (via blackfriday): pass one divides the document
// into a normalized text buffer plus link-reference and footnote
// tables; pass two walks that buffer, dispatching block constructs
// (paragraphs, headers, lists, blockquotes, code, tables, raw HTML)
// which in turn dispatch inline constructs (emphasis, links, code
// spans, autolinks, entities) through a 256-entry active-character
// table.
package hoedown

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/hashicorp/go-multierror"
)

// utf8BOM is the three-byte UTF-8 byte-order mark skipped, if
// present, at the start of a document.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extensions is a bitmask of optional syntactic features. The zero
// value enables none of them — traditional Markdown only.
type Extensions uint32

const (
	// NoIntraEmphasis suppresses emphasis that opens or closes
	// inside a word (e.g. snake_case_identifier is left alone).
	NoIntraEmphasis Extensions = 1 << iota
	// Tables enables pipe-table parsing.
	Tables
	// FencedCode enables ~~~ and ``` fenced code blocks.
	FencedCode
	// Autolink enables bare URL, www, and e-mail autolinking.
	Autolink
	// Strikethrough enables ~~text~~.
	Strikethrough
	// Highlight enables ==text==.
	Highlight
	// Underline renders _text_ as underline instead of emphasis.
	Underline
	// Quote enables "text" quoting.
	Quote
	// Superscript enables ^text and ^(text).
	Superscript
	// SpaceHeaders requires a space after the '#' run in ATX
	// headers; without it, "#foo" is not a header.
	SpaceHeaders
	// LaxSpacing relaxes paragraph termination so that an adjacent
	// list, under some conditions, is allowed to interrupt it.
	LaxSpacing
	// DisableIndentedCode turns off 4-space-indented code blocks.
	DisableIndentedCode
	// Footnotes enables [^id] references and [^id]: ... definitions.
	Footnotes

	// CommonExtensions is the bundle enabled by MarkdownCommon.
	CommonExtensions = NoIntraEmphasis | Tables | FencedCode | Autolink |
		Strikethrough | SpaceHeaders

	// AllExtensions enables every extension; used by MarkdownFull.
	AllExtensions = NoIntraEmphasis | Tables | FencedCode | Autolink |
		Strikethrough | Highlight | Underline | Quote | Superscript |
		SpaceHeaders | LaxSpacing | DisableIndentedCode | Footnotes
)

// AutolinkType distinguishes the kind of autolink a scanner matched,
// passed to Renderer.AutoLink.
type AutolinkType int

const (
	// AutolinkNone indicates the span was not actually an autolink;
	// renderers should not normally see this value.
	AutolinkNone AutolinkType = iota
	// AutolinkNormal is a URL-scheme or bare "www." autolink.
	AutolinkNormal
	// AutolinkEmail is a mailto:-style e-mail autolink.
	AutolinkEmail
)

// ListFlags carries metadata about a list or list item to
// Renderer.List and Renderer.ListItem.
type ListFlags int

const (
	// ListOrdered marks an ordered (1. 2. 3.) list.
	ListOrdered ListFlags = 1 << iota
	// ListItemContainsBlock marks an item that had a blank line
	// inside it, and so was parsed as block-level content rather
	// than a single inline run.
	ListItemContainsBlock
	// ListItemEndOfList marks the last item rendered in a list.
	ListItemEndOfList
)

// CellFlags carries per-cell alignment and header-row metadata to
// Renderer.TableCell. Exactly one of Left/Right/Center is set for an
// aligned column; none is set for the default alignment.
type CellFlags int

const (
	TableAlignLeft  CellFlags = 1 << iota
	TableAlignRight
	TableAlignCenter = TableAlignLeft | TableAlignRight
	TableHeader      CellFlags = 1 << 2
)

// Renderer is the full set of rendering callbacks. Every field is
// optional. For block-level callbacks, a nil field skips the
// construct entirely — no output is produced for it. For span-level
// (inline) callbacks, a nil field or a false return is treated as
// "did not render": the inline scanner falls back to emitting the
// construct's leading byte verbatim and resumes scanning from the
// next position.
type Renderer struct {
	// Block-level callbacks.
	BlockCode   func(out *bytes.Buffer, content []byte, info string)
	BlockQuote  func(out *bytes.Buffer, content []byte)
	BlockHTML   func(out *bytes.Buffer, content []byte)
	Header      func(out *bytes.Buffer, content []byte, level int)
	HRule       func(out *bytes.Buffer)
	List        func(out *bytes.Buffer, content []byte, flags ListFlags)
	ListItem    func(out *bytes.Buffer, content []byte, flags ListFlags)
	Paragraph   func(out *bytes.Buffer, content []byte)
	Table       func(out *bytes.Buffer, header, body []byte)
	TableRow    func(out *bytes.Buffer, content []byte)
	TableCell   func(out *bytes.Buffer, content []byte, flags CellFlags)
	Footnotes   func(out *bytes.Buffer, content []byte)
	FootnoteDef func(out *bytes.Buffer, content []byte, num int)

	// Span-level callbacks. A false return means "print verbatim".
	AutoLink       func(out *bytes.Buffer, link []byte, kind AutolinkType) bool
	CodeSpan       func(out *bytes.Buffer, content []byte) bool
	DoubleEmphasis func(out *bytes.Buffer, content []byte) bool
	Emphasis       func(out *bytes.Buffer, content []byte) bool
	Underline      func(out *bytes.Buffer, content []byte) bool
	Highlight      func(out *bytes.Buffer, content []byte) bool
	Quote          func(out *bytes.Buffer, content []byte) bool
	Image          func(out *bytes.Buffer, link, title, alt []byte) bool
	LineBreak      func(out *bytes.Buffer) bool
	Link           func(out *bytes.Buffer, link, title, content []byte) bool
	TripleEmphasis func(out *bytes.Buffer, content []byte) bool
	Strikethrough  func(out *bytes.Buffer, content []byte) bool
	Superscript    func(out *bytes.Buffer, content []byte) bool
	FootnoteRef    func(out *bytes.Buffer, num int) bool
	RawHTMLTag     func(out *bytes.Buffer, tag []byte) bool

	// Low-level callbacks. Nil copies the input directly to out.
	Entity     func(out *bytes.Buffer, token []byte)
	NormalText func(out *bytes.Buffer, text []byte)

	// Document header/footer, invoked once each per render even for
	// an empty document.
	DocumentHeader func(out *bytes.Buffer)
	DocumentFooter func(out *bytes.Buffer)
}

// BlockTagRecognizer reports whether tag (the bytes immediately after
// '<' in a would-be raw HTML block) names a recognized block-level
// HTML tag, and returns its canonical (lowercased) name. Block-tag
// name recognition is treated as an external collaborator; see
// defaultBlockTagName for the bundled implementation.
type BlockTagRecognizer func(tag []byte) (name string, ok bool)

// AutolinkScanner is the bare-URL/www/e-mail autolink scanner
// contract. Given data and an offset into it where a candidate
// autolink begins, it reports how many bytes the match
// consumes, how many already-emitted normal-text bytes must be
// rewound (removed from the output because they belong to the
// link), and the matched link's bytes. A zero consumed length means
// no match.
type AutolinkScanner func(data []byte, offset int) (consumed, rewind int, link []byte)

// inlineHandler is the active-character dispatch signature: given the
// full span being scanned and the offset of the active byte, it
// returns the number of bytes consumed, or 0 if the construct did not
// match (in which case the active byte is emitted verbatim and
// scanning resumes one byte later).
type inlineHandler func(p *markdownParser, out *bytes.Buffer, data []byte, offset int) int

// markdownParser is the threaded parser context. One instance exists
// per call to RenderWithDiagnostics and is never reused across
// documents.
type markdownParser struct {
	renderer   *Renderer
	extensions Extensions
	refs       *refTable
	footnotes  *footnoteList
	inline     [256]inlineHandler
	pool       *pool
	maxNesting int
	inLinkBody bool

	blockTag  BlockTagRecognizer
	urlScan   AutolinkScanner
	wwwScan   AutolinkScanner
	emailScan AutolinkScanner

	logger *slog.Logger
	diags  *multierror.Error
}

// Option configures a markdownParser constructed by RenderWithDiagnostics.
type Option func(*markdownParser)

// WithMaxNesting overrides the default recursion bound (16).
func WithMaxNesting(n int) Option {
	return func(p *markdownParser) { p.maxNesting = n }
}

// WithLogger attaches a structured logger that receives one Warn
// record per non-fatal parse diagnostic; no other records (such as
// pass boundaries) are logged. A nil logger (the default) uses
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *markdownParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithBlockTagRecognizer overrides the default block-tag recognizer.
func WithBlockTagRecognizer(r BlockTagRecognizer) Option {
	return func(p *markdownParser) {
		if r != nil {
			p.blockTag = r
		}
	}
}

// WithAutolinkScanners overrides the default URL, www, and e-mail
// autolink scanners. A nil argument leaves the corresponding default
// scanner in place.
func WithAutolinkScanners(url, www, email AutolinkScanner) Option {
	return func(p *markdownParser) {
		if url != nil {
			p.urlScan = url
		}
		if www != nil {
			p.wwwScan = www
		}
		if email != nil {
			p.emailScan = email
		}
	}
}

// MarkdownBasic renders input with no extensions enabled.
func MarkdownBasic(input []byte, renderer *Renderer) ([]byte, error) {
	return Markdown(input, renderer, 0)
}

// MarkdownCommon renders input with CommonExtensions enabled.
func MarkdownCommon(input []byte, renderer *Renderer) ([]byte, error) {
	return Markdown(input, renderer, CommonExtensions)
}

// MarkdownFull renders input with every extension enabled.
func MarkdownFull(input []byte, renderer *Renderer) ([]byte, error) {
	return Markdown(input, renderer, AllExtensions)
}

// Markdown parses input and renders it with renderer, honoring the
// given extensions. It is a thin wrapper over RenderWithDiagnostics
// that discards diagnostics; use RenderWithDiagnostics directly to
// observe nesting overflows.
func Markdown(input []byte, renderer *Renderer, extensions Extensions, opts ...Option) ([]byte, error) {
	out, _, err := RenderWithDiagnostics(input, renderer, extensions, opts...)
	return out, err
}

// RenderWithDiagnostics is the two-pass render driver. It
// never fails on malformed input — every input produces some
// rendered output — but it returns a *multierror.Error with one entry
// per subtree elided for nesting overflow, or nil if there was none.
// Ill-formed constructs that fall back to verbatim text are not
// recorded. The only error it can return itself is
// ErrRendererRequired.
func RenderWithDiagnostics(input []byte, renderer *Renderer, extensions Extensions, opts ...Option) ([]byte, *multierror.Error, error) {
	if renderer == nil {
		return nil, nil, ErrRendererRequired
	}

	p := &markdownParser{
		renderer:   renderer,
		extensions: extensions,
		refs:       newRefTable(),
		footnotes:  newFootnoteList(),
		pool:       newPool(),
		maxNesting: 16,
		blockTag:   defaultBlockTagName,
		urlScan:    scanURLAutolink,
		wwwScan:    scanWWWAutolink,
		emailScan:  scanEmailAutolink,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.registerInlineHandlers()

	input = bytes.TrimPrefix(input, utf8BOM)

	normalized := p.prescan(input)

	var output bytes.Buffer
	if renderer.DocumentHeader != nil {
		renderer.DocumentHeader(&output)
	}

	p.parseBlock(&output, normalized)

	if p.extensions&Footnotes != 0 && p.footnotes.usedCount > 0 {
		p.renderFootnotes(&output)
	}

	if renderer.DocumentFooter != nil {
		renderer.DocumentFooter(&output)
	}

	if !p.pool.idle() {
		panic("hoedown: pool depth did not return to zero")
	}

	diags := p.diags
	p.refs.reset()
	p.footnotes.reset()
	p.pool.reset()

	return output.Bytes(), diags, nil
}

// renderFootnotes assembles the document's trailing footnotes
// section: each used footnote's contents, in first-use order, is
// parsed recursively as blocks into its own scratch buffer, wrapped
// with FootnoteDef, then the whole assembly is handed to Footnotes.
func (p *markdownParser) renderFootnotes(out *bytes.Buffer) {
	if p.renderer.Footnotes == nil {
		return
	}
	block := p.pool.acquire(ClassBlock)
	defer p.pool.release(ClassBlock)

	for d := p.footnotes.usedHead; d != nil; d = d.usedNext {
		item := p.pool.acquire(ClassBlock)
		p.parseBlock(item, d.contents.Bytes())
		if p.renderer.FootnoteDef != nil {
			p.renderer.FootnoteDef(block, item.Bytes(), d.ordinal)
		} else {
			block.Write(item.Bytes())
		}
		p.pool.release(ClassBlock)
	}

	p.renderer.Footnotes(out, block.Bytes())
}

// noteDiagnostic appends a recoverable-condition diagnostic and logs
// it at the given level.
func (p *markdownParser) noteDiagnostic(level slog.Level, msg string, args ...any) {
	p.diags = multierror.Append(p.diags, &diagnosticError{msg: msg})
	if p.logger != nil {
		p.logger.Log(context.Background(), level, msg, args...)
	}
}

// diagnosticError adapts a diagnostic message to the error interface
// so it can live inside a *multierror.Error.
type diagnosticError struct{ msg string }

func (e *diagnosticError) Error() string { return e.msg }

// canRecurse reports whether the combined pool depth allows one more
// level of block or inline recursion without exceeding maxNesting.
func (p *markdownParser) canRecurse() bool {
	return p.pool.depth() < p.maxNesting
}

// acquireRecurse acquires a scratch buffer of class for a recursive
// parse, unless doing so would exceed maxNesting, in which case it
// returns ok=false and the caller must elide the subtree.
func (p *markdownParser) acquireRecurse(class BufferClass) (buf *bytes.Buffer, ok bool) {
	if !p.canRecurse() {
		return nil, false
	}
	return p.pool.acquire(class), true
}

// emitNormalText routes text through the renderer's NormalText
// callback, or copies it verbatim when the callback is nil.
func (p *markdownParser) emitNormalText(out *bytes.Buffer, text []byte) {
	if len(text) == 0 {
		return
	}
	if p.renderer.NormalText != nil {
		p.renderer.NormalText(out, text)
	} else {
		out.Write(text)
	}
}
