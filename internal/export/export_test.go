package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/stemsi/qbank-backend/internal/model"
)

func paperQuestion(order int, qtype model.QuestionType, q, a string) model.PaperQuestion {
	return model.PaperQuestion{
		Question: model.Question{
			ID:           uuid.New(),
			QuestionText: q,
			AnswerText:   a,
			QuestionType: qtype,
			Difficulty:   model.DifficultyMedium,
		},
		Order: order,
	}
}

func samplePaper() *model.Paper {
	return &model.Paper{
		ID:          uuid.New(),
		Title:       "期中测验",
		LibraryName: "操作系统",
		Questions: []model.PaperQuestion{
			paperQuestion(1, model.QuestionTypeChoice, "哪个是进程状态？\nA. 就绪\nB. 关闭", "A"),
			paperQuestion(2, model.QuestionTypeChoice, "哪个不是调度算法？", "C"),
			paperQuestion(3, model.QuestionTypeShortAnswer, "简述死锁的条件", "互斥\n请求与保持"),
		},
	}
}

func TestChineseNumeral(t *testing.T) {
	cases := map[int]string{1: "一", 9: "九", 10: "十", 11: "十一", 20: "二十", 35: "三十五", 99: "九十九", 0: "", 100: ""}
	for n, want := range cases {
		assert.Equal(t, want, chineseNumeral(n), "n=%d", n)
	}
}

func TestBuildSections(t *testing.T) {
	sections := buildSections(samplePaper())

	require.Len(t, sections, 2)
	assert.Equal(t, "一、选择题", sections[0].Heading)
	assert.Len(t, sections[0].Questions, 2)
	assert.Equal(t, "二、简答题", sections[1].Heading)
}

func TestMarkdownRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown{}.Render(&buf, samplePaper()))

	want := "# 期中测验\n\n" +
		"题库：操作系统\n\n" +
		"## 一、选择题\n\n" +
		"1. 哪个是进程状态？\n   A. 就绪\n   B. 关闭\n\n" +
		"2. 哪个不是调度算法？\n\n" +
		"## 二、简答题\n\n" +
		"1. 简述死锁的条件\n\n" +
		"---\n\n## 参考答案\n\n" +
		"### 一、选择题\n\n" +
		"1. A\n\n" +
		"2. C\n\n" +
		"### 二、简答题\n\n" +
		"1. 互斥\n   请求与保持\n\n"
	assert.Equal(t, want, buf.String())
}

func TestXLSXRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX{}.Render(&buf, samplePaper()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(questionSheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "期中测验", rows[0][0])
	assert.Equal(t, []string{"大题", "题号", "难度", "题目"}, rows[2])
	assert.Equal(t, []string{"二、简答题", "1", "中等", "简述死锁的条件"}, rows[5])

	answers, err := f.GetRows(answerSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"一、选择题", "2", "C"}, answers[4])
}

func TestNew(t *testing.T) {
	r, err := New(model.ExportFormatMarkdown, Options{})
	require.NoError(t, err)
	assert.Equal(t, ".md", r.Extension())

	_, err = New(model.ExportFormatPDF, Options{})
	assert.ErrorIs(t, err, ErrPDFFontRequired)

	_, err = New("docx", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPDFRender_MissingFont(t *testing.T) {
	r := PDF{FontPath: filepath.Join(t.TempDir(), "missing.ttf")}

	err := r.Render(&bytes.Buffer{}, samplePaper())
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	p := &model.Paper{Title: " 2024/期末: A卷 "}
	assert.Equal(t, "2024_期末_ A卷.xlsx", Filename(p, XLSX{}))
	assert.Equal(t, "paper.md", Filename(&model.Paper{}, Markdown{}))
}
