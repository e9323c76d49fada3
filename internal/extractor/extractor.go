// Package extractor segments loosely formatted question documents (plain
// text or markdown) into question/answer records.
//
// The parser is a line scanner with three states: no record in progress,
// collecting question text, and collecting answer text. Boundary cues come
// from boundaryRules, answer cues from answerMarkers. Rule order decides
// classification and must stay fixed.
package extractor

import (
	"strings"
	"unicode"

	"github.com/stemsi/qbank-backend/internal/model"
)

// AnswerPlaceholder replaces answers that are missing or empty.
const AnswerPlaceholder = "待补充"

// Record is one segmented question/answer pair.
type Record struct {
	Question   string             `json:"question"`
	Answer     string             `json:"answer"`
	Type       model.QuestionType `json:"question_type"`
	Difficulty model.Difficulty   `json:"difficulty"`
}

// Empty reports whether the record has no question text and must not be
// persisted.
func (r Record) Empty() bool {
	return strings.TrimSpace(r.Question) == ""
}

type scanState int

const (
	stateIdle scanState = iota
	stateQuestion
	stateAnswer
)

type draft struct {
	qtype    model.QuestionType
	question []string
	answer   []string
}

type parser struct {
	override model.QuestionType
	state    scanState
	cur      *draft
	records  []Record
}

// Extract parses text and applies answer cleanup. override, when not empty,
// is used as the type of every record instead of keyword inference.
func Extract(text string, override model.QuestionType) []Record {
	return Clean(Parse(text, override))
}

// Parse segments text into raw records in document order. Answers are not
// cleaned; see Clean.
func Parse(text string, override model.QuestionType) []Record {
	p := &parser{override: override}
	lines := splitLines(text)

	for i := 0; i < len(lines); {
		prev := ""
		if i > 0 {
			prev = lines[i-1]
		}
		if p.step(lines[i], prev) {
			i++
		}
	}
	p.finalize()
	return p.records
}

// Clean strips leading answer labels from every answer and fills empty
// answers with AnswerPlaceholder. Records with an empty question are kept;
// callers decide whether to drop them.
func Clean(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Answer = cleanAnswer(r.Answer, r.Type.IsLongForm())
		out[i] = r
	}
	return out
}

// step consumes one line. It returns false when the same line has to be
// scanned again because it closed the previous record.
func (p *parser) step(line, prev string) bool {
	if p.state == stateAnswer {
		return p.answerLine(line)
	}
	if rule := detectBoundary(line, prev); rule != nil {
		p.startRecord(line, rule)
		return true
	}
	p.questionLine(line)
	return true
}

func (p *parser) startRecord(line string, rule *boundaryRule) {
	p.finalize()
	p.open(line)

	content := strings.TrimSpace(rule.strip(line))
	if pos := findAnswerMarker(content); pos > 0 {
		p.cur.question = append(p.cur.question, strings.TrimSpace(content[:pos]))
		p.beginAnswer(content[pos:])
		return
	}
	p.cur.question = append(p.cur.question, content)
}

func (p *parser) questionLine(line string) {
	if p.cur == nil {
		if isBlank(line) {
			return
		}
		p.open(line)
	}

	if pos, ok := p.answerCue(line); ok {
		if before := strings.TrimSpace(line[:pos]); before != "" {
			p.cur.question = append(p.cur.question, before)
		}
		p.beginAnswer(line[pos:])
		return
	}
	p.cur.question = append(p.cur.question, strings.TrimSpace(line))
}

func (p *parser) answerLine(line string) bool {
	if isBlank(line) {
		p.state = stateQuestion
		return true
	}
	if p.splitsOnHeading() && h4Re.MatchString(line) {
		p.finalize()
		return false
	}
	if p.cur.qtype.IsLongForm() {
		p.cur.answer = append(p.cur.answer, line)
	} else {
		p.cur.answer = append(p.cur.answer, strings.TrimSpace(line))
	}
	return true
}

// answerCue locates an answer label that switches the current record to its
// answer. Term and long-form questions also accept a bold label mid-line.
func (p *parser) answerCue(line string) (int, bool) {
	if hasAnswerPrefix(line) {
		return len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace)), true
	}
	if p.splitsOnHeading() {
		if loc := inlineAnswerRe.FindStringIndex(line); loc != nil {
			return loc[0], true
		}
	}
	return 0, false
}

func (p *parser) beginAnswer(text string) {
	p.state = stateAnswer
	text = stripAnswerMarker(strings.TrimLeftFunc(text, unicode.IsSpace))
	if !p.cur.qtype.IsLongForm() {
		text = strings.TrimSpace(text)
	}
	p.cur.answer = append(p.cur.answer, text)
}

// splitsOnHeading reports whether a #### heading may cut the current answer
// short and open the next question.
func (p *parser) splitsOnHeading() bool {
	t := p.cur.qtype
	return t == model.QuestionTypeTermExplanation || t.IsLongForm()
}

func (p *parser) open(line string) {
	qtype := p.override
	if qtype == "" {
		qtype = inferType(line)
	}
	p.cur = &draft{qtype: qtype}
	p.state = stateQuestion
}

func (p *parser) finalize() {
	if p.cur == nil {
		return
	}
	p.records = append(p.records, Record{
		Question:   strings.TrimSpace(strings.Join(p.cur.question, "\n")),
		Answer:     strings.Join(p.cur.answer, "\n"),
		Type:       p.cur.qtype,
		Difficulty: model.DifficultyMedium,
	})
	p.cur = nil
	p.state = stateIdle
}
