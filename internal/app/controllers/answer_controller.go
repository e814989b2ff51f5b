package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/services"
	"github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

// AnswerController handles answers to questions
type AnswerController struct {
	pageController
	answerService   *services.AnswerService
	questionService *services.QuestionService
}

// NewAnswerController creates a new AnswerController
func NewAnswerController(sessions *session.Manager, answerService *services.AnswerService, questionService *services.QuestionService) *AnswerController {
	return &AnswerController{
		pageController:  pageController{sessions: sessions},
		answerService:   answerService,
		questionService: questionService,
	}
}

// answerRedirect is the detail page of the answer's question, or the board when unknown
func answerRedirect(answer *models.Answer) string {
	if answer == nil {
		return QuestionListPath
	}
	return questionDetailPath(answer.QuestionID)
}

// Create adds an answer. Invalid input re-renders the question page with the errors.
func (c *AnswerController) Create(ctx *gin.Context) {
	questionID, ok := pathID(ctx, "question_id")
	if !ok {
		return
	}

	var form dto.AnswerForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		question, err := c.questionService.Detail(ctx.Request.Context(), questionID)
		if err != nil {
			middleware.HandleError(ctx, err)
			return
		}
		c.render(ctx, http.StatusBadRequest, "question_detail.html", gin.H{
			"Title":    question.Subject,
			"Question": question,
			"Form":     form,
			"Errors":   errs,
		})
		return
	}

	answer, err := c.answerService.Create(ctx.Request.Context(), questionID, middleware.CurrentUserID(ctx), form)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s#answer_%d", questionDetailPath(questionID), answer.ID))
}

// ModifyForm renders the edit form of an owned answer
func (c *AnswerController) ModifyForm(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	answer, err := c.answerService.GetForEdit(ctx.Request.Context(), id, middleware.CurrentUserID(ctx))
	if err != nil {
		if !c.refused(ctx, err, "You do not have permission to edit this answer.", answerRedirect(answer)) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	c.render(ctx, http.StatusOK, "answer_form.html", gin.H{
		"Title":  "Edit answer",
		"Answer": answer,
		"Form":   dto.AnswerForm{Content: answer.Content},
	})
}

// Modify saves an edit of an owned answer
func (c *AnswerController) Modify(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(ctx)
	answer, err := c.answerService.GetForEdit(ctx.Request.Context(), id, userID)
	if err != nil {
		if !c.refused(ctx, err, "You do not have permission to edit this answer.", answerRedirect(answer)) {
			middleware.HandleError(ctx, err)
		}
		return
	}

	var form dto.AnswerForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		c.render(ctx, http.StatusBadRequest, "answer_form.html", gin.H{
			"Title":  "Edit answer",
			"Answer": answer,
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	updated, err := c.answerService.Update(ctx.Request.Context(), id, userID, form)
	if err != nil {
		if !c.refused(ctx, err, "You do not have permission to edit this answer.", answerRedirect(updated)) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	ctx.Redirect(http.StatusFound, fmt.Sprintf("%s#answer_%d", questionDetailPath(updated.QuestionID), updated.ID))
}

// Delete removes an owned answer
func (c *AnswerController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	answer, err := c.answerService.Delete(ctx.Request.Context(), id, middleware.CurrentUserID(ctx))
	if err != nil {
		if !c.refused(ctx, err, "You do not have permission to delete this answer.", answerRedirect(answer)) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	ctx.Redirect(http.StatusFound, answerRedirect(answer))
}
