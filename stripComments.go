package main

// StripComments blanks out `//` and `/* */` comments while preserving string and
// template literals. Comment bytes are replaced with spaces and line breaks are
// kept, so the result has the same length and line layout as the input.
func StripComments(code []byte) []byte {
	result := make([]byte, len(code))
	copy(result, code)

	n := len(code)
	i := 0

	inSingleQuoteString := false
	inDoubleQuoteString := false
	inTemplateLiteral := false
	inLineComment := false
	inBlockComment := false

	for i < n {
		if inLineComment {
			if code[i] == '\n' || code[i] == '\r' {
				inLineComment = false
			} else {
				result[i] = ' '
			}
			i++
			continue
		}

		if inBlockComment {
			if i+1 < n && code[i] == '*' && code[i+1] == '/' {
				inBlockComment = false
				result[i] = ' '
				result[i+1] = ' '
				i += 2
				continue
			}
			if code[i] != '\n' && code[i] != '\r' {
				result[i] = ' '
			}
			i++
			continue
		}

		if code[i] == '`' && !inSingleQuoteString && !inDoubleQuoteString && !isEscaped(code, i) {
			inTemplateLiteral = !inTemplateLiteral
			i++
			continue
		}

		if !inTemplateLiteral {
			if code[i] == '\'' && !inDoubleQuoteString && !isEscaped(code, i) {
				inSingleQuoteString = !inSingleQuoteString
			} else if code[i] == '"' && !inSingleQuoteString && !isEscaped(code, i) {
				inDoubleQuoteString = !inDoubleQuoteString
			} else if code[i] == '\n' {
				// unterminated quote, recover on the next line
				inSingleQuoteString = false
				inDoubleQuoteString = false
			}
		}

		if !inSingleQuoteString && !inDoubleQuoteString && !inTemplateLiteral && i+1 < n && code[i] == '/' {
			if code[i+1] == '/' {
				inLineComment = true
				result[i] = ' '
				result[i+1] = ' '
				i += 2
				continue
			}
			if code[i+1] == '*' {
				inBlockComment = true
				result[i] = ' '
				result[i+1] = ' '
				i += 2
				continue
			}
		}

		i++
	}

	return result
}

// isEscaped reports whether code[i] is preceded by an odd number of backslashes.
func isEscaped(code []byte, i int) bool {
	count := 0
	for j := i - 1; j >= 0 && code[j] == '\\'; j-- {
		count++
	}
	return count%2 == 1
}
