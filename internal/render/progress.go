package render

import "strings"

// ExtractProgress pulls a best-effort completion percentage out of a renderer
// output line. The editor's movie pipeline output is not stable across engine
// versions, so three loose shapes are recognized: a number before a '%' sign,
// an X/Y frame counter, and progress:NN / progress=NN tokens. Returns false
// when the line carries no recognizable progress.
func ExtractProgress(line string) (int, bool) {
	// A number directly before '%'
	if i := strings.IndexByte(line, '%'); i > 0 {
		j := i - 1
		for j >= 0 && line[j] >= '0' && line[j] <= '9' {
			j--
		}
		if digits := line[j+1 : i]; digits != "" {
			if v, ok := atoiClamped(digits); ok && v <= 100 {
				return v, true
			}
		}
	}

	// An X/Y token, e.g. "Frame 120/480" or "(3/12)"
	cleaned := strings.NewReplacer("(", " ", ")", " ", "[", " ", "]", " ").Replace(line)
	for _, tok := range strings.Fields(cleaned) {
		slash := strings.IndexByte(tok, '/')
		if slash <= 0 || slash == len(tok)-1 {
			continue
		}
		a, okA := atoiClamped(tok[:slash])
		b, okB := atoiClamped(tok[slash+1:])
		if okA && okB && b > 0 {
			v := a * 100 / b
			if v > 100 {
				v = 100
			}
			return v, true
		}
	}

	// progress:NN or progress=NN
	low := strings.ToLower(line)
	for _, sep := range []string{":", "="} {
		key := "progress" + sep
		idx := strings.Index(low, key)
		if idx < 0 {
			continue
		}
		tail := strings.TrimSpace(low[idx+len(key):])
		end := 0
		for end < len(tail) && tail[end] >= '0' && tail[end] <= '9' {
			end++
		}
		if end > 0 {
			if v, ok := atoiClamped(tail[:end]); ok {
				if v > 100 {
					v = 100
				}
				return v, true
			}
		}
	}

	return 0, false
}

// atoiClamped parses a short run of ASCII digits. Overlong runs (timestamps,
// frame hashes) are rejected rather than clamped.
func atoiClamped(s string) (int, bool) {
	if s == "" || len(s) > 6 {
		return 0, false
	}
	v := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + int(s[i]-'0')
	}
	return v, true
}
