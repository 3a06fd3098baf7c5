package worker

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"certgo_backend/internal/model"
	"certgo_backend/internal/util"
)

const (
	minKeywordRunes  = 4
	minSentenceWords = 5
	clozeBlank       = "_____"
)

var optionIDs = []string{"A", "B", "C", "D"}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func splitSentences(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if sent := strings.TrimSpace(s[start:i]); sent != "" {
				out = append(out, sent)
			}
			start = i + utf8.RuneLen(r)
		}
	}
	if sent := strings.TrimSpace(s[start:]); sent != "" {
		out = append(out, sent)
	}
	return out
}

// keyword 句中最长的词，长度相同取先出现者
func keyword(sentence string) string {
	best := ""
	for _, w := range splitWords(sentence) {
		if utf8.RuneCountInString(w) > utf8.RuneCountInString(best) {
			best = w
		}
	}
	if utf8.RuneCountInString(best) < minKeywordRunes {
		return ""
	}
	return best
}

// vocabulary 全文中可作干扰项的词，按长度降序、字典序稳定排序
func vocabulary(sections []model.ContentSection) []string {
	seen := map[string]bool{}
	var words []string
	for _, s := range sections {
		for _, w := range splitWords(s.SectionText) {
			key := strings.ToLower(w)
			if utf8.RuneCountInString(w) < minKeywordRunes || seen[key] {
				continue
			}
			seen[key] = true
			words = append(words, w)
		}
	}
	sort.SliceStable(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li > lj
		}
		return words[i] < words[j]
	})
	return words
}

func distractors(vocab []string, answer string, n int) []string {
	out := make([]string, 0, n)
	for _, w := range vocab {
		if strings.EqualFold(w, answer) {
			continue
		}
		out = append(out, w)
		if len(out) == n {
			break
		}
	}
	return out
}

// BuildClozeQuizzes 每个分段取一个句子，挖去关键词生成四选一填空题
func BuildClozeQuizzes(content *model.LearningContent, difficulty model.QuizDifficulty, count int) []model.Quiz {
	if difficulty == "" {
		difficulty = model.DifficultyNormal
	}
	vocab := vocabulary(content.Sections)
	var quizzes []model.Quiz

	for _, section := range content.Sections {
		if len(quizzes) >= count {
			break
		}
		for _, sent := range splitSentences(section.SectionText) {
			if len(splitWords(sent)) < minSentenceWords {
				continue
			}
			answer := keyword(sent)
			if answer == "" {
				continue
			}
			wrong := distractors(vocab, answer, len(optionIDs)-1)
			if len(wrong) < len(optionIDs)-1 {
				continue
			}

			correctAt := len(quizzes) % len(optionIDs)
			options := make([]model.QuizOption, 0, len(optionIDs))
			w := 0
			for i, id := range optionIDs {
				text := answer
				if i != correctAt {
					text = wrong[w]
					w++
				}
				options = append(options, model.QuizOption{ID: id, Text: text})
			}

			contentID := content.ID
			quizzes = append(quizzes, model.Quiz{
				ContentID:       &contentID,
				CertificateID:   content.CertificateID,
				QuestionText:    strings.Replace(sent, answer, clozeBlank, 1),
				Options:         options,
				CorrectAnswerID: optionIDs[correctAt],
				ExplanationText: util.StringPtr(sent),
				Difficulty:      difficulty,
				QuestionType:    model.QuestionMultiple,
				GeneratedByAI:   true,
			})
			break
		}
	}
	return quizzes
}
