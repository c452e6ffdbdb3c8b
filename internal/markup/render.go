package markup

import "strings"

const codeIndent = "    "

// Terminal renders text for a plain terminal: math as $...$, single-line code in
// backticks and multi-line code as an indented block on its own lines.
func Terminal(input string) string {
	var b strings.Builder
	for _, segment := range Split(input) {
		switch segment.Kind {
		case MathExpression:
			b.WriteString("$" + segment.Text + "$")
		case CodeBlock:
			code := strings.Trim(segment.Text, "\n")
			if !strings.Contains(code, "\n") {
				b.WriteString("`" + code + "`")
				continue
			}
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
			for _, line := range strings.Split(code, "\n") {
				b.WriteString(codeIndent + line + "\n")
			}
		default:
			b.WriteString(segment.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
