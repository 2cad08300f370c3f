package schema

import (
	"strings"
	"unicode"
)

// SplitStatements breaks a SQL script into individual statements on every
// semicolon outside quotes, comments and trigger bodies. A trigger body runs
// from BEGIN to the END that closes it; CASE ... END pairs inside the body
// are skipped. Trailing semicolons are dropped and fragments holding only
// comments or whitespace are discarded.
func SplitStatements(script string) []string {
	var (
		stmts   []string
		current strings.Builder
		word    strings.Builder
		trigger triggerState
		hasCode bool
	)

	endWord := func() {
		if word.Len() == 0 {
			return
		}
		trigger.observe(word.String())
		word.Reset()
	}

	flush := func() {
		endWord()
		stmt := strings.TrimSpace(current.String())
		if hasCode && stmt != "" {
			stmts = append(stmts, stmt)
		}
		current.Reset()
		trigger = triggerState{}
		hasCode = false
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if isWordRune(r) {
			word.WriteRune(r)
			current.WriteRune(r)
			hasCode = true
			continue
		}
		endWord()

		switch {
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			end := i
			for end < len(runes) && runes[end] != '\n' {
				end++
			}
			current.WriteString(string(runes[i:end]))
			i = end - 1
			continue
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			end := i + 2
			for end+1 < len(runes) && !(runes[end] == '*' && runes[end+1] == '/') {
				end++
			}
			end = min(end+2, len(runes))
			current.WriteString(string(runes[i:end]))
			i = end - 1
			continue
		case r == '\'' || r == '"' || r == '`':
			end := i + 1
			for end < len(runes) {
				if runes[end] == r {
					// Doubled quote is an escaped quote.
					if end+1 < len(runes) && runes[end+1] == r {
						end += 2
						continue
					}
					break
				}
				end++
			}
			end = min(end+1, len(runes))
			current.WriteString(string(runes[i:end]))
			hasCode = true
			i = end - 1
			continue
		case r == ';':
			if trigger.inBody() {
				current.WriteRune(r)
				continue
			}
			flush()
			continue
		}

		current.WriteRune(r)
		if !unicode.IsSpace(r) {
			hasCode = true
		}
	}
	flush()

	return stmts
}

// triggerState follows the bare keywords of one statement to tell whether a
// semicolon falls inside a CREATE [TEMP] TRIGGER body.
type triggerState struct {
	words   int
	create  bool
	trigger bool
	body    bool
	cases   int
}

func (s *triggerState) observe(word string) {
	word = strings.ToUpper(word)
	s.words++

	switch {
	case s.words == 1:
		s.create = word == "CREATE"
	case s.create:
		if s.words == 2 && (word == "TEMP" || word == "TEMPORARY") {
			return
		}
		s.create = false
		s.trigger = word == "TRIGGER"
	case !s.trigger:
	case !s.body:
		s.body = word == "BEGIN"
	case word == "CASE":
		s.cases++
	case word == "END":
		if s.cases > 0 {
			s.cases--
			return
		}
		s.body = false
		s.trigger = false
	}
}

func (s *triggerState) inBody() bool {
	return s.trigger && s.body
}

func isWordRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
