package analysis

import "strings"

// SymbolAt extracts the token under the cursor at (line, character), both
// zero-based. The first pass uses identifier characters. When that pass
// yields a purely numeric token, the search reruns with a non-whitespace
// class so a fragment like the 154 in `NOption(154,Node003,004` resolves to
// the whole compound reference rather than the bare number.
func SymbolAt(text string, line, character int) (string, bool) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return "", false
	}
	l := strings.TrimRight(lines[line], "\r")
	if character < 0 {
		return "", false
	}

	token := tokenAround(l, character, isWordByte)
	if token != "" && allDigits(token) {
		if wide := tokenAround(l, character, isGraphByte); wide != "" {
			token = wide
		}
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// CallContext inspects the line text left of the cursor for an enclosing
// call and reports the callee name together with the zero-based index of the
// argument the cursor sits in. Used for signature help.
func CallContext(lineText string, character int) (string, int, bool) {
	if character > len(lineText) {
		character = len(lineText)
	}
	depth, active := 0, 0
	for i := character - 1; i >= 0; i-- {
		switch lineText[i] {
		case ')':
			depth++
		case ',':
			if depth == 0 {
				active++
			}
		case '(':
			if depth > 0 {
				depth--
				continue
			}
			name := tokenAround(lineText, i, isWordByte)
			if name == "" {
				return "", 0, false
			}
			return name, active, true
		}
	}
	return "", 0, false
}

// tokenAround returns the maximal run of member bytes covering the cursor:
// leftward from the character before the cursor, rightward from the cursor
// itself. A cursor with no trailing non-member byte extends to end of line.
func tokenAround(l string, character int, member func(byte) bool) string {
	if character > len(l) {
		character = len(l)
	}
	left := character
	for left > 0 && member(l[left-1]) {
		left--
	}
	right := character
	for right < len(l) && member(l[right]) {
		right++
	}
	return l[left:right]
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func isGraphByte(b byte) bool {
	return b != ' ' && b != '\t' && b != '\r' && b != '\n'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
