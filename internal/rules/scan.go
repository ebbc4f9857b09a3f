package rules

// maskLiteralsAndComments returns a boolean slice the same length as text,
// true at byte offsets that sit in ordinary Java code and false at offsets
// inside a string literal, character literal, line comment, or block
// comment. Brace-sensitive rules (indentation, brace-style) consult this
// mask so a '{' or '}' written inside a literal or comment is never
// mistaken for a structural brace.
func maskLiteralsAndComments(text []byte) []bool {
	mask := make([]bool, len(text))

	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
		stateChar
	)

	state := stateCode

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch state {
		case stateLineComment:
			if c == '\n' {
				state = stateCode
				mask[i] = true
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				i++
				state = stateCode
			}
		case stateString:
			switch {
			case c == '\\' && i+1 < len(text):
				i++
			case c == '"':
				state = stateCode
			}
		case stateChar:
			switch {
			case c == '\\' && i+1 < len(text):
				i++
			case c == '\'':
				state = stateCode
			}
		default: // stateCode
			switch {
			case c == '/' && i+1 < len(text) && text[i+1] == '/':
				state = stateLineComment
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				state = stateBlockComment
				i++
			case c == '"':
				state = stateString
			case c == '\'':
				state = stateChar
			default:
				mask[i] = true
			}
		}
	}

	return mask
}

// lineStartOf returns the byte offset where the line containing offset
// begins (one past the previous newline, or 0 at the start of the file).
func lineStartOf(text []byte, offset int) int {
	for i := offset - 1; i >= 0; i-- {
		if text[i] == '\n' {
			return i + 1
		}
	}

	return 0
}

// leadingWhitespace returns the run of spaces/tabs starting at lineStart,
// the line's indentation.
func leadingWhitespace(text []byte, lineStart int) string {
	end := lineStart
	for end < len(text) && isHorizontalSpace(text[end]) {
		end++
	}

	return string(text[lineStart:end])
}

func isHorizontalSpace(b byte) bool { return b == ' ' || b == '\t' }
