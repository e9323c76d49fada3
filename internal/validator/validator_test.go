package validator

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/qbank-backend/internal/model"
)

func newValidate() *govalidator.Validate {
	v := govalidator.New()
	v.SetTagName("binding") // match gin's binding engine
	register(v)
	return v
}

func TestQuestionTypeTag(t *testing.T) {
	v := newValidate()

	ok := model.PaperSection{QuestionType: "short_answer", Count: 2}
	assert.NoError(t, v.Struct(ok))

	label := model.PaperSection{QuestionType: "名词解释", Count: 1}
	assert.NoError(t, v.Struct(label))

	bad := model.PaperSection{QuestionType: "poetry", Count: 1}
	err := v.Struct(bad)
	require.Error(t, err)

	fields := TranslateErrors(err)
	assert.Equal(t, "question_type must be a known question type", fields["question_type"])
}

func TestTranslateErrors_NonValidation(t *testing.T) {
	fields := TranslateErrors(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), fields["detail"])
}
