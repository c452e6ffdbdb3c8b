package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitMixedSegments(t *testing.T) {
	got := Split("x <math>a+b</math> y")
	require.Equal(t, []Segment{
		{Kind: PlainText, Text: "x "},
		{Kind: MathExpression, Text: "a+b"},
		{Kind: PlainText, Text: " y"},
	}, got)
}

func TestSplitWithoutMarkupReturnsSingleTextSegment(t *testing.T) {
	for _, input := range []string{"plain question?", "", "a < b > c", "</math> stray"} {
		got := Split(input)
		require.Equal(t, []Segment{{Kind: PlainText, Text: input}}, got, "input %q", input)
	}
}

func TestSplitCodeAndMathInOrder(t *testing.T) {
	got := Split("<code>print(1)</code> then <math>x^2</math>")
	require.Equal(t, []Segment{
		{Kind: CodeBlock, Text: "print(1)"},
		{Kind: PlainText, Text: " then "},
		{Kind: MathExpression, Text: "x^2"},
	}, got)
}

func TestSplitUnterminatedTagIsPlainText(t *testing.T) {
	got := Split("solve <math>x+1 = 2")
	require.Equal(t, []Segment{{Kind: PlainText, Text: "solve <math>x+1 = 2"}}, got)

	got = Split("<math>a</math> and <code>oops")
	require.Equal(t, []Segment{
		{Kind: MathExpression, Text: "a"},
		{Kind: PlainText, Text: " and <code>oops"},
	}, got)
}

func TestSplitDoesNotNest(t *testing.T) {
	got := Split("<math>a<code>b</code>c</math>")
	require.Equal(t, []Segment{{Kind: MathExpression, Text: "a<code>b</code>c"}}, got)
}

func TestSplitKeepsEmptyTaggedSegment(t *testing.T) {
	got := Split("a<math></math>b")
	require.Equal(t, []Segment{
		{Kind: PlainText, Text: "a"},
		{Kind: MathExpression, Text: ""},
		{Kind: PlainText, Text: "b"},
	}, got)
}

func TestSplitIsLossless(t *testing.T) {
	inputs := []string{
		"x <math>a+b</math> y",
		"<code>for i in range(3):\n    print(i)</code>",
		"no markup at all",
		"broken <code>start",
	}
	for _, input := range inputs {
		var rebuilt strings.Builder
		for _, segment := range Split(input) {
			switch segment.Kind {
			case MathExpression:
				rebuilt.WriteString("<math>" + segment.Text + "</math>")
			case CodeBlock:
				rebuilt.WriteString("<code>" + segment.Text + "</code>")
			default:
				rebuilt.WriteString(segment.Text)
			}
		}
		require.Equal(t, input, rebuilt.String())
	}
}

func TestTerminalRendering(t *testing.T) {
	require.Equal(t, "Evaluate $a+b$ now", Terminal("Evaluate <math>a+b</math> now"))
	require.Equal(t, "Run `ls -la`", Terminal("Run <code>ls -la</code>"))
	require.Equal(t,
		"Output of:\n    x = 1\n    print(x)",
		Terminal("Output of:<code>\nx = 1\nprint(x)\n</code>"),
	)
}
