package store

import "strings"

const delimiter = '|'

var fieldEscaper = strings.NewReplacer(
	`\`, `\\`,
	`|`, `\|`,
	"\n", `\n`,
	"\r", `\r`,
)

// encodeRow joins fields with the delimiter. Backslash, delimiter and line
// breaks inside a field are escaped so every record stays on one line.
func encodeRow(fields ...string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(delimiter)
		}
		b.WriteString(fieldEscaper.Replace(f))
	}
	return b.String()
}

// splitRow is the inverse of encodeRow. It splits on unescaped delimiters
// only. Unknown escapes and a trailing lone backslash are kept literally.
func splitRow(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			switch line[i] {
			case '\\':
				cur.WriteByte('\\')
			case delimiter:
				cur.WriteByte(delimiter)
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			default:
				cur.WriteByte('\\')
				cur.WriteByte(line[i])
			}
		case c == delimiter:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}
