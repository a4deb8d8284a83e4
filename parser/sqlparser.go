package parser

import (
	"strings"
	"unicode"
)

// 以这些关键字开头的语句不返回结果行（除非带 RETURNING 子句）。
// 其余语句一律按查询执行，CALL、FETCH、CHECK TABLE 等的结果集不会丢失。
var writeKeywords = map[string]bool{
	"INSERT":     true,
	"UPDATE":     true,
	"DELETE":     true,
	"REPLACE":    true,
	"MERGE":      true,
	"UPSERT":     true,
	"CREATE":     true,
	"DROP":       true,
	"ALTER":      true,
	"TRUNCATE":   true,
	"RENAME":     true,
	"COMMENT":    true,
	"GRANT":      true,
	"REVOKE":     true,
	"BEGIN":      true,
	"START":      true,
	"COMMIT":     true,
	"END":        true,
	"ROLLBACK":   true,
	"SAVEPOINT":  true,
	"RELEASE":    true,
	"SET":        true,
	"USE":        true,
	"LOCK":       true,
	"UNLOCK":     true,
	"VACUUM":     true,
	"REINDEX":    true,
	"ATTACH":     true,
	"DETACH":     true,
	"DECLARE":    true,
	"CLOSE":      true,
	"MOVE":       true,
	"PREPARE":    true,
	"DEALLOCATE": true,
	"DISCARD":    true,
	"LISTEN":     true,
	"UNLISTEN":   true,
	"NOTIFY":     true,
	"DO":         true,
	"FLUSH":      true,
	"REFRESH":    true,
	"CLUSTER":    true,
	"COPY":       true,
	"LOAD":       true,
}

// ReturnsRows 判断语句是否应按查询执行。
// 首个关键字是已知写操作且没有 RETURNING 子句（字符串字面量与注释除外）时返回 false，
// 空语句也返回 false，其余返回 true。
func ReturnsRows(sql string) bool {
	words := keywords(sql)
	if len(words) == 0 {
		return false
	}
	if !writeKeywords[words[0]] {
		return true
	}
	for _, w := range words[1:] {
		if w == "RETURNING" {
			return true
		}
	}
	return false
}

func keywords(sql string) []string {
	s := &scanner{src: sql}
	var words []string
	for {
		w, ok := s.next()
		if !ok {
			return words
		}
		words = append(words, w)
	}
}

// scanner 逐个读取语句中的单词，跳过注释、引号内容与标点
type scanner struct {
	src string
	pos int
}

func (s *scanner) next() (string, bool) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '-' && s.peek(1) == '-':
			s.skipLine()
		case c == '/' && s.peek(1) == '*':
			s.skipBlock()
		case c == '\'' || c == '"' || c == '`':
			s.skipQuoted(c)
		case isWordStart(c):
			start := s.pos
			for s.pos < len(s.src) && isWordPart(s.src[s.pos]) {
				s.pos++
			}
			return strings.ToUpper(s.src[start:s.pos]), true
		default:
			s.pos++
		}
	}
	return "", false
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *scanner) skipLine() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *scanner) skipBlock() {
	end := strings.Index(s.src[s.pos+2:], "*/")
	if end < 0 {
		s.pos = len(s.src)
		return
	}
	s.pos += end + 4
}

func (s *scanner) skipQuoted(q byte) {
	s.pos++
	for s.pos < len(s.src) {
		if s.src[s.pos] == q {
			// 连续两个引号为转义
			if s.peek(1) == q {
				s.pos += 2
				continue
			}
			s.pos++
			return
		}
		s.pos++
	}
}

func isWordStart(c byte) bool {
	return c == '_' || c < unicode.MaxASCII && unicode.IsLetter(rune(c))
}

func isWordPart(c byte) bool {
	return isWordStart(c) || c >= '0' && c <= '9' || c == '$'
}
