package export

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/jadenpxrk/codeshelf/internal/logging"
)

// RemoveComments strips comments from code using the lexer chosen by
// filename. Preprocessor directives survive; docstrings do not. A comment is
// replaced by the newlines it spanned so line structure is kept. Code in a
// language without a lexer is returned unchanged.
func RemoveComments(code, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		return code
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, code)
	if err != nil {
		logging.Debug("tokenization failed, keeping comments",
			logging.String("file", filename), logging.Err(err))
		return code
	}

	tokens := iterator.Tokens()
	docstrings := strings.HasPrefix(lexer.Config().Name, "Python")

	var b strings.Builder
	b.Grow(len(code))
	lineStart := true
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if isComment(token.Type) {
			nl := strings.Repeat("\n", strings.Count(token.Value, "\n"))
			b.WriteString(nl)
			lineStart = stillAtLineStart(lineStart, nl)
			continue
		}
		if docstrings && lineStart {
			if end := docstringEnd(tokens, i); end > 0 {
				for _, t := range tokens[i:end] {
					b.WriteString(strings.Repeat("\n", strings.Count(t.Value, "\n")))
				}
				i = end - 1
				lineStart = false
				continue
			}
		}
		b.WriteString(token.Value)
		lineStart = stillAtLineStart(lineStart, token.Value)
	}

	out := b.String()
	// Lexers may append a final newline the input never had.
	if !strings.HasSuffix(code, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

func isComment(t chroma.TokenType) bool {
	if t == chroma.LiteralStringDoc {
		return true
	}
	return t.InCategory(chroma.Comment) && !t.InSubCategory(chroma.CommentPreproc)
}

// docstringEnd returns the index just past a triple-quoted string starting at
// tokens[i], or -1 when tokens[i] does not open one.
func docstringEnd(tokens []chroma.Token, i int) int {
	if !tokens[i].Type.InSubCategory(chroma.LiteralString) {
		return -1
	}
	if tokens[i].Type == chroma.LiteralStringAffix {
		i++
	}
	if i >= len(tokens) {
		return -1
	}
	v := tokens[i].Value
	var delim string
	switch {
	case strings.HasPrefix(v, `"""`):
		delim = `"""`
	case strings.HasPrefix(v, "'''"):
		delim = "'''"
	default:
		return -1
	}
	body := v[len(delim):]
	for !strings.HasSuffix(body, delim) {
		i++
		if i >= len(tokens) || !tokens[i].Type.InSubCategory(chroma.LiteralString) {
			return -1
		}
		body += tokens[i].Value
	}
	return i + 1
}

// stillAtLineStart reports whether only whitespace follows the last newline
// once text has been written.
func stillAtLineStart(atStart bool, text string) bool {
	if n := strings.LastIndex(text, "\n"); n >= 0 {
		return strings.TrimSpace(text[n+1:]) == ""
	}
	return atStart && strings.TrimSpace(text) == ""
}
