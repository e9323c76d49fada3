package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/qbank-backend/internal/model"
)

func TestSplitLines(t *testing.T) {
	got := splitLines("\n\nfirst  \r\n\n\n  \nsecond\t\n\nthird")

	assert.Equal(t, []string{"first", "", "second", "", "third"}, got)
}

func TestDetectBoundary(t *testing.T) {
	tests := []struct {
		line string
		prev string
		want string
	}{
		{line: "1. 题目", want: "number"},
		{line: "12、题目", want: "number"},
		{line: "3) 题目", want: "number"},
		{line: "1\u3000题目", want: "number"},
		{line: "(4) 题目", want: "paren-number"},
		{line: "(5)\u3000题目", want: "paren-number"},
		{line: "二\u3000题目", want: "chinese-number"},
		{line: "-\u30006. 题目", want: "bullet-number"},
		{line: "####\u3000题目", want: "h4-heading"},
		{line: "五、题目", want: "chinese-number"},
		{line: "- 6. 题目", want: "bullet-number"},
		{line: "#### 题目", want: "h4-heading"},
		{line: "7、题目", prev: "### 简答", want: "number"},
		{line: "请完成以下判断题", want: "type-keyword"},
		{line: "8.", want: "small-number"},
		{line: "A. 选项", want: ""},
		{line: "### 三级标题", want: ""},
		{line: "十分重要的内容", want: ""},
		{line: "答案：B", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rule := detectBoundary(tt.line, tt.prev)
			if tt.want == "" {
				assert.Nil(t, rule)
				return
			}
			if assert.NotNil(t, rule) {
				assert.Equal(t, tt.want, rule.name)
			}
		})
	}
}

func TestStripPrefixes(t *testing.T) {
	assert.Equal(t, "题目", stripNumbering("1. 题目"))
	assert.Equal(t, "题目", stripNumbering("(2) 题目"))
	assert.Equal(t, "题目", stripNumbering("三、题目"))
	assert.Equal(t, "题目", stripNumbering("1\u3000\u3000题目"))
	assert.Equal(t, "题目", stripNumbering("四\u3000题目"))
	assert.Equal(t, "题目", stripHeading("####\u3000题目"))
	assert.Equal(t, "题目", stripHeading("####   题目"))
	assert.Equal(t, "题目", stripRe(bulletPrefixRe)("  * 9、题目"))
}

func TestInferType(t *testing.T) {
	tests := []struct {
		line string
		want model.QuestionType
	}{
		{"名词解释与简答题混排", model.QuestionTypeTermExplanation},
		{"请简要说明原因", model.QuestionTypeShortAnswer},
		{"试论述市场经济", model.QuestionTypeEssay},
		{"请详细阐述", model.QuestionTypeEssay},
		{"填空题", model.QuestionTypeFillBlank},
		{"不定项选择题", model.QuestionTypeChoice},
		{"多选题", model.QuestionTypeChoice},
		{"判断题", model.QuestionTypeTrueFalse},
		{"问答题", model.QuestionTypeQA},
		{"普通题目", model.QuestionTypeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, inferType(tt.line), tt.line)
	}
}

func TestAnswerMarkers(t *testing.T) {
	for _, line := range []string{
		"答案：A", "答案:A", "答：A", "解：A", "解析: A", "参考答案：A",
		"正确答案：A", "解答：A", "**答案：** A", "**答案**：A", "    **答案:** A",
	} {
		assert.True(t, hasAnswerPrefix(line), line)
	}

	for _, line := range []string{"答案要点", "解释一下", "回答问题", "A. 答案：B"} {
		assert.False(t, hasAnswerPrefix(line), line)
	}
}

func TestFindAnswerMarker(t *testing.T) {
	assert.Equal(t, -1, findAnswerMarker("没有标记"))
	assert.Equal(t, len("题目 "), findAnswerMarker("题目 答：B"))
	assert.Equal(t, len("简述"), findAnswerMarker("简述解答：略"))
	assert.Equal(t, -1, findAnswerMarker("谈谈你的了解："))
	assert.Equal(t, len("你的了解："), findAnswerMarker("你的了解：答案：无"))
}
