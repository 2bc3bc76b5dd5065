package parser

import "bytes"

// lineSplitter is a bufio.SplitFunc source that ends lines at "\n", "\r\n"
// or a lone "\r". Lines of max bytes or more are dropped and counted rather
// than failing the scan.
type lineSplitter struct {
	max      int
	skipping bool
	oversize int
}

func (l *lineSplitter) split(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' {
			switch {
			case i+1 < len(data):
				if data[i+1] == '\n' {
					advance++
				}
			case !atEOF && len(data) < l.max:
				// A "\n" may follow in the next read.
				return 0, nil, nil
			}
		}
		if l.skipping {
			l.skipping = false
			return advance, nil, nil
		}
		return advance, data[:i], nil
	}

	if atEOF {
		if l.skipping {
			l.skipping = false
			return len(data), nil, nil
		}
		return len(data), data, nil
	}

	if len(data) >= l.max {
		if !l.skipping {
			l.skipping = true
			l.oversize++
		}
		return len(data), nil, nil
	}

	return 0, nil, nil
}
