package config

import (
	"fmt"
	"strings"
)

var strftime = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'j': "002",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// GoLayout converts a strftime format such as "%Y%m%d_%H%M%S" to a Go time
// layout. Strings without '%' are taken to be Go layouts already.
func GoLayout(format string) (string, error) {
	if !strings.Contains(format, "%") {
		return format, nil
	}
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(format) {
			return "", fmt.Errorf("timestamp format %q ends with a lone %%", format)
		}
		i++
		repl, ok := strftime[format[i]]
		if !ok {
			return "", fmt.Errorf("timestamp format %q: unsupported directive %%%c", format, format[i])
		}
		b.WriteString(repl)
	}
	return b.String(), nil
}
