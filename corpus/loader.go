package corpus

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/hymnal/core"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	headerMarker = "# " + core.CatalogPrefix
	titleMarker  = "Title:"

	maxLineSize = 1024 * 1024
)

// Option configures parsing.
type Option func(*parser)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// parseState tracks where the parser is within the current record.
type parseState int

const (
	stateScanning     parseState = iota // before the first header
	stateTitlePending                   // header seen, no title yet
	stateBody                           // title seen, accumulating lyrics
)

type parser struct {
	logger *slog.Logger

	state  parseState
	number string
	title  string
	body   []string
	hymns  []*core.Hymn
	line   int
}

// Load reads the corpus from the file at path.
// If the file cannot be opened or read, Load returns an empty corpus together
// with an error wrapping ErrSourceUnavailable.
func Load(path string, opts ...Option) (*core.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.EmptyCorpus(), fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer f.Close()

	return Parse(f, opts...)
}

// Parse reads a corpus from r.
// UTF-8 (with or without BOM) and BOM-marked UTF-16 input are accepted;
// invalid byte sequences are replaced rather than rejected.
func Parse(r io.Reader, opts ...Option) (*core.Corpus, error) {
	p := &parser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "corpus-loader")

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		p.line++
		p.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		p.logger.Error("error reading corpus source", "line", p.line, "err", err)
		return core.EmptyCorpus(), fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	p.finalize()

	corpus, replaced := core.NewCorpus(p.hymns...)
	for _, number := range replaced {
		p.logger.Warn("duplicate hymn number, later record replaces earlier one", "number", number)
	}
	p.logger.Debug("corpus loaded", "hymns", corpus.Len(), "lines", p.line)
	return corpus, nil
}

// feed advances the state machine by one source line.
func (p *parser) feed(raw string) {
	line := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(line, headerMarker):
		p.finalize()
		p.number = parseNumber(line)
		if p.number == "" {
			p.logger.Debug("header without hymn number", "line", p.line)
		}
		p.title = ""
		p.body = nil
		p.state = stateTitlePending

	case p.state == stateScanning:
		// Nothing before the first header belongs to a record.

	case strings.HasPrefix(line, titleMarker):
		p.title = strings.TrimSpace(strings.TrimPrefix(line, titleMarker))
		p.state = stateBody

	case line != "":
		p.body = append(p.body, line)
	}
}

// finalize commits the in-progress record if it is well-formed and drops it otherwise.
func (p *parser) finalize() {
	if p.state == stateScanning {
		return
	}

	hymn := &core.Hymn{
		Number: p.number,
		Title:  p.title,
		Body:   strings.Join(p.body, "\n"),
	}
	if err := core.ValidateHymn(hymn); err != nil {
		p.logger.Debug("dropping malformed record", "number", p.number, "line", p.line, "err", err)
		return
	}
	p.hymns = append(p.hymns, hymn)
}

// parseNumber extracts the number token from a header line such as "# GHS 25".
// Returns "" when the header carries fewer than three tokens.
func parseNumber(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 3 {
		return ""
	}
	return fields[2]
}
