package analysis

import "strings"

const (
	docOpen  = "/**"
	docClose = "*/"
)

// docBefore returns the structured doc for a declaration starting at offset,
// provided a /** ... */ block closes on the line directly above it. Anything
// else (blank line in between, plain /* comment, no comment at all) yields
// nil and the symbol stays undocumented.
func docBefore(text string, declStart int) *StructuredDoc {
	prefix := text[:declStart]
	if !strings.HasSuffix(prefix, "\n") {
		return nil
	}
	trimmed := strings.TrimRight(prefix[:len(prefix)-1], " \t")
	if !strings.HasSuffix(trimmed, docClose) {
		return nil
	}
	open := strings.LastIndex(trimmed, docOpen)
	if open < 0 {
		return nil
	}
	return parseDocBlock(trimmed[open:])
}

// parseDocBlock splits a /** ... */ block into description, @param entries,
// and an optional @ret type.
func parseDocBlock(block string) *StructuredDoc {
	body := strings.TrimPrefix(block, docOpen)
	body = strings.TrimSuffix(body, docClose)

	doc := &StructuredDoc{}
	var desc []string
	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "@param"):
			fields := strings.Fields(strings.TrimPrefix(line, "@param"))
			param := DocParam{}
			if len(fields) > 0 {
				param.Name = fields[0]
			}
			if len(fields) > 1 {
				param.Type = fields[1]
			}
			if param.Name != "" {
				doc.Params = append(doc.Params, param)
			}
		case strings.HasPrefix(line, "@ret"):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				doc.Ret = fields[1]
			}
		default:
			desc = append(desc, line)
		}
	}
	doc.Description = strings.Join(desc, "\n")
	return doc
}
