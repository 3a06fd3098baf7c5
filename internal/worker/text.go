package worker

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "pre": true, "blockquote": true, "table": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true, "template": true,
}

// looksLikeHTML 根据 Content-Type 或内容前缀判断
func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.Contains(head, []byte("<html"))
}

// ExtractText 去掉标签，块级元素之间以空行分隔
func ExtractText(contentType string, body []byte) string {
	if !looksLikeHTML(contentType, body) {
		return normalizeParagraphs(string(body))
	}

	var b strings.Builder
	z := html.NewTokenizer(bytes.NewReader(body))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF 或解析错误，返回已提取部分
			return normalizeParagraphs(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && tt == html.StartTagToken {
				skip++
			}
			if blockTags[tag] {
				b.WriteString("\n\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipTags[tag] && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteString("\n\n")
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// normalizeParagraphs 折叠段内空白，段落间保留一个空行
func normalizeParagraphs(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var paras []string
	for _, block := range strings.Split(s, "\n\n") {
		p := strings.Join(strings.Fields(block), " ")
		if p != "" {
			paras = append(paras, p)
		}
	}
	return strings.Join(paras, "\n\n")
}

// SplitSections 按段落边界切分，每段不超过 max 个字符；超长段落在空白处硬切
func SplitSections(text string, max int) []string {
	if max <= 0 {
		max = 1500
	}
	var (
		sections []string
		cur      strings.Builder
		curLen   int
	)
	flush := func() {
		if curLen > 0 {
			sections = append(sections, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, piece := range hardSplit(para, max) {
			if piece == "" {
				continue
			}
			n := utf8.RuneCountInString(piece)
			sep := 0
			if curLen > 0 {
				sep = 2
			}
			if curLen+sep+n > max {
				flush()
				sep = 0
			}
			if sep > 0 {
				cur.WriteString("\n\n")
			}
			cur.WriteString(piece)
			curLen += sep + n
		}
	}
	flush()
	return sections
}

func hardSplit(para string, max int) []string {
	runes := []rune(para)
	if len(runes) <= max {
		return []string{para}
	}
	var out []string
	for len(runes) > max {
		cut := max
		for i := max; i > max/2; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// sectionTitle 取首句前若干字符作为标题
func sectionTitle(section string, max int) string {
	line := section
	if i := strings.IndexAny(line, "\n.!?"); i > 0 {
		line = line[:i]
	}
	runes := []rune(strings.TrimSpace(line))
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return string(runes)
}
