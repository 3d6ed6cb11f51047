package pattern

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		labels []Label
	}{
		{
			name: "plain domain",
			raw:  "example.com",
			labels: []Label{
				{Kind: LabelLiteral, Text: "example"},
				{Kind: LabelLiteral, Text: "com"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
		{
			name: "leading and trailing dots stripped",
			raw:  ".example.com.",
			labels: []Label{
				{Kind: LabelLiteral, Text: "example"},
				{Kind: LabelLiteral, Text: "com"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
		{
			name: "surrounding whitespace stripped",
			raw:  "  example.com. ",
			labels: []Label{
				{Kind: LabelLiteral, Text: "example"},
				{Kind: LabelLiteral, Text: "com"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
		{
			name: "sole star is a wildcard",
			raw:  "*.www.fint.me",
			labels: []Label{
				{Kind: LabelWildcard},
				{Kind: LabelLiteral, Text: "www"},
				{Kind: LabelLiteral, Text: "fint"},
				{Kind: LabelLiteral, Text: "me"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
		{
			name: "leading star glued to text is literal",
			raw:  "*xxx.example.com",
			labels: []Label{
				{Kind: LabelLiteral, Text: "*xxx"},
				{Kind: LabelLiteral, Text: "example"},
				{Kind: LabelLiteral, Text: "com"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
		{
			name: "trailing star glued to text is literal",
			raw:  "xxx*.example.com",
			labels: []Label{
				{Kind: LabelLiteral, Text: "xxx*"},
				{Kind: LabelLiteral, Text: "example"},
				{Kind: LabelLiteral, Text: "com"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
		{
			name: "question marks stay in the literal text",
			raw:  "fin?.me",
			labels: []Label{
				{Kind: LabelLiteral, Text: "fin?"},
				{Kind: LabelLiteral, Text: "me"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
		{
			name: "empty interior label kept",
			raw:  "a..b",
			labels: []Label{
				{Kind: LabelLiteral, Text: "a"},
				{Kind: LabelLiteral, Text: ""},
				{Kind: LabelLiteral, Text: "b"},
				{Kind: LabelLiteral, Text: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse(tt.raw)
			assert.Equal(t, tt.raw, p.Source)
			assert.Equal(t, tt.labels, p.Labels)
		})
	}
}

func TestParseRootLabelAlwaysLast(t *testing.T) {
	for _, raw := range []string{"example.com", "*", "a.*.c", "..", ""} {
		p := Parse(raw)
		require.NotEmpty(t, p.Labels, "raw=%q", raw)
		last := p.Labels[len(p.Labels)-1]
		assert.Equal(t, LabelLiteral, last.Kind, "raw=%q", raw)
		assert.Empty(t, last.Text, "raw=%q", raw)
	}
}

func TestValidate(t *testing.T) {
	long := strings.Repeat("a", MaxLabelLength)

	assert.NoError(t, Parse(long+".com").Validate())

	err := Parse(long + "a.com").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 63 bytes")
}

func TestWireLength(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"example.com", 13}, // 1+7 + 1+3 + 1
		{"me", 4},           // 1+2 + 1
		{"", 2},             // two empty labels: 1 + 1
		{"*.b.c", 5},        // wildcard excluded: 1+1 + 1+1 + 1
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.raw).WireLength(), "raw=%q", tt.raw)
	}
}
