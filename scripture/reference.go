package scripture

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Reference is a scripture citation found inside a larger string.
type Reference struct {
	Span     [2]int // Byte offsets of Text within the scanned string
	Text     string // The matched substring, verbatim
	Prefix   string // Leading book numeral ("1", "2", "3"), or empty
	Name     string
	Chapter  int
	Verse    int // 0 for a chapter-only reference
	VerseEnd int // 0 unless a verse range was given
}

// IsChapter reports whether the reference names a whole chapter.
func (r Reference) IsChapter() bool {
	return r.Verse == 0
}

// String returns the normalized form sent to a resolver, e.g. "1 John 4:7-8".
func (r Reference) String() string {
	var sb strings.Builder
	if r.Prefix != "" {
		sb.WriteString(r.Prefix)
		sb.WriteByte(' ')
	}
	sb.WriteString(r.Name)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(r.Chapter))
	if r.Verse > 0 {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(r.Verse))
		if r.VerseEnd > 0 {
			sb.WriteByte('-')
			sb.WriteString(strconv.Itoa(r.VerseEnd))
		}
	}
	return sb.String()
}

// referenceLexer tokenizes free text for reference scanning.
var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "Word", Pattern: `[A-Za-z]+`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `[^\sA-Za-z0-9:-]+`},
})

var (
	tokInt        = referenceLexer.Symbols()["Int"]
	tokWord       = referenceLexer.Symbols()["Word"]
	tokColon      = referenceLexer.Symbols()["Colon"]
	tokDash       = referenceLexer.Symbols()["Dash"]
	tokWhitespace = referenceLexer.Symbols()["Whitespace"]
)

// FindReferences returns every reference in s, left to right.
// References never overlap.
func FindReferences(s string) []Reference {
	lex, err := referenceLexer.LexString("", s)
	if err != nil {
		return nil
	}
	all, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil
	}
	toks := all[:0]
	for _, t := range all {
		if t.Type != lexer.EOF {
			toks = append(toks, t)
		}
	}

	var refs []Reference
	for i := 0; i < len(toks); {
		if ref, next, ok := matchReference(s, toks, i); ok {
			refs = append(refs, ref)
			i = next
			continue
		}
		i++
	}
	return refs
}

// FindReference returns the first reference in s.
func FindReference(s string) (Reference, bool) {
	refs := FindReferences(s)
	if len(refs) == 0 {
		return Reference{}, false
	}
	return refs[0], true
}

// matchReference tries to match a reference starting at toks[i]. On success
// it returns the reference and the index of the first token after it.
func matchReference(s string, toks []lexer.Token, i int) (Reference, int, bool) {
	var ref Reference
	is := func(j int, typ lexer.TokenType) bool {
		return j < len(toks) && toks[j].Type == typ
	}

	j := i
	if is(j, tokInt) && isBookNumeral(toks[j].Value) && (is(j+1, tokWord) || is(j+1, tokWhitespace) && is(j+2, tokWord)) {
		ref.Prefix = toks[j].Value
		j++
		if is(j, tokWhitespace) {
			j++
		}
	}

	if !is(j, tokWord) {
		return ref, 0, false
	}
	ref.Name = toks[j].Value
	j++

	if !is(j, tokWhitespace) || !is(j+1, tokInt) {
		return ref, 0, false
	}
	chapter, ok := atoi(toks[j+1].Value)
	if !ok {
		return ref, 0, false
	}
	ref.Chapter = chapter
	j += 2

	if is(j, tokColon) && is(j+1, tokInt) {
		verse, ok := atoi(toks[j+1].Value)
		if !ok {
			return ref, 0, false
		}
		ref.Verse = verse
		j += 2
		if is(j, tokDash) && is(j+1, tokInt) {
			if end, ok := atoi(toks[j+1].Value); ok && end >= verse {
				ref.VerseEnd = end
				j += 2
			}
		}
	} else if !IsKnownBook(ref.Name) {
		return ref, 0, false
	}

	last := toks[j-1]
	ref.Span = [2]int{toks[i].Pos.Offset, last.Pos.Offset + len(last.Value)}
	ref.Text = s[ref.Span[0]:ref.Span[1]]
	return ref, j, true
}

func isBookNumeral(v string) bool {
	return v == "1" || v == "2" || v == "3"
}

func atoi(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
