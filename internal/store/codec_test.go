package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeRowPlainFieldsUnchanged(t *testing.T) {
	got := encodeRow("ACC001", "CUST001", "SavingsAccount", "1000.00", "Main", "", "")
	require.Equal(t, "ACC001|CUST001|SavingsAccount|1000.00|Main||", got)
}

func TestRowEscaping(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		line   string
	}{
		{"delimiter", []string{"a|b", "c"}, `a\|b|c`},
		{"backslash", []string{`C:\dir`, "x"}, `C:\\dir|x`},
		{"backslash before delimiter", []string{`a\`, "b"}, `a\\|b`},
		{"newline", []string{"Plot 5\nGaborone"}, `Plot 5\nGaborone`},
		{"carriage return", []string{"a\r\nb"}, `a\r\nb`},
		{"empty fields", []string{"", "", ""}, "||"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := encodeRow(tt.fields...)
			require.Equal(t, tt.line, line)
			require.Equal(t, tt.fields, splitRow(line))
		})
	}
}

func TestSplitRowLenient(t *testing.T) {
	require.Equal(t, []string{`a\qb`, "c"}, splitRow(`a\qb|c`))
	require.Equal(t, []string{"a", `b\`}, splitRow(`a|b\`))
	require.Equal(t, []string{""}, splitRow(""))
}
