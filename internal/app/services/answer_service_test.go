package services

import (
	"context"
	"testing"

	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, err := env.svc.Auth.Signup(ctx, signupForm("owner"))
	require.NoError(t, err)
	other, err := env.svc.Auth.Signup(ctx, signupForm("other"))
	require.NoError(t, err)

	q, err := env.svc.Question.Create(ctx, owner.ID, dto.QuestionForm{Subject: "s", Content: "c"}, nil)
	require.NoError(t, err)

	_, err = env.svc.Answer.Create(ctx, 9999, owner.ID, dto.AnswerForm{Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrQuestionNotFound)

	a, err := env.svc.Answer.Create(ctx, q.ID, other.ID, dto.AnswerForm{Content: "first"})
	require.NoError(t, err)
	assert.Nil(t, a.ModifyDate)

	refused, err := env.svc.Answer.Update(ctx, a.ID, owner.ID, dto.AnswerForm{Content: "hijack"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	require.NotNil(t, refused)
	assert.Equal(t, q.ID, refused.QuestionID)

	_, err = env.svc.Answer.Delete(ctx, a.ID, owner.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	updated, err := env.svc.Answer.Update(ctx, a.ID, other.ID, dto.AnswerForm{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.NotNil(t, updated.ModifyDate)

	detail, err := env.svc.Question.Detail(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, detail.Answers, 1)
	assert.Equal(t, "edited", detail.Answers[0].Content)
	assert.Equal(t, "other", detail.Answers[0].Author)

	deleted, err := env.svc.Answer.Delete(ctx, a.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, deleted.QuestionID)

	_, err = env.svc.Answer.GetForEdit(ctx, a.ID, other.ID)
	assert.ErrorIs(t, err, apperrors.ErrAnswerNotFound)
}
