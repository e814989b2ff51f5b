package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/services"
	"github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/helpers"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

// QuestionListPath is the question board
const QuestionListPath = "/question/list/"

func questionDetailPath(id int64) string {
	return fmt.Sprintf("/question/detail/%d/", id)
}

// QuestionController handles the question board
type QuestionController struct {
	pageController
	questionService *services.QuestionService
}

// NewQuestionController creates a new QuestionController
func NewQuestionController(sessions *session.Manager, questionService *services.QuestionService) *QuestionController {
	return &QuestionController{
		pageController:  pageController{sessions: sessions},
		questionService: questionService,
	}
}

// List renders one page of questions, newest first
func (c *QuestionController) List(ctx *gin.Context) {
	page, err := c.questionService.List(ctx.Request.Context(), helpers.ParsePage(ctx))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	offset, _ := helpers.CalculateOffsetLimit(page.Pagination.CurrentPage, page.Pagination.PageSize)
	c.render(ctx, http.StatusOK, "question_list.html", gin.H{
		"Title":  "Questions",
		"Page":   page,
		"Offset": int(offset) + 1,
	})
}

// Detail renders a question with its answers and the answer form
func (c *QuestionController) Detail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	question, err := c.questionService.Detail(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	c.render(ctx, http.StatusOK, "question_detail.html", gin.H{
		"Title":    question.Subject,
		"Question": question,
		"Form":     dto.AnswerForm{},
	})
}

// CreateForm renders an empty question form
func (c *QuestionController) CreateForm(ctx *gin.Context) {
	c.renderForm(ctx, http.StatusOK, nil, dto.QuestionForm{}, nil)
}

// Create posts a new question with an optional image
func (c *QuestionController) Create(ctx *gin.Context) {
	var form dto.QuestionForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		c.renderForm(ctx, http.StatusBadRequest, nil, form, errs)
		return
	}

	_, err := c.questionService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), form, formFile(ctx, "image"))
	if err != nil {
		if fe, ok := fieldErrors(err); ok {
			c.renderForm(ctx, http.StatusBadRequest, nil, form, fe)
			return
		}
		middleware.HandleError(ctx, err)
		return
	}
	c.redirect(ctx, session.FlashSuccess, "Your question was posted.", QuestionListPath)
}

// ModifyForm renders the edit form of an owned question
func (c *QuestionController) ModifyForm(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	question, err := c.questionService.GetForEdit(ctx.Request.Context(), id, middleware.CurrentUserID(ctx))
	if err != nil {
		if !c.refused(ctx, err, "You do not have permission to edit this question.", questionDetailPath(id)) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	c.renderForm(ctx, http.StatusOK, question, dto.QuestionForm{Subject: question.Subject, Content: question.Content}, nil)
}

// Modify saves an edit of an owned question
func (c *QuestionController) Modify(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(ctx)
	question, err := c.questionService.GetForEdit(ctx.Request.Context(), id, userID)
	if err != nil {
		if !c.refused(ctx, err, "You do not have permission to edit this question.", questionDetailPath(id)) {
			middleware.HandleError(ctx, err)
		}
		return
	}

	var form dto.QuestionForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	if errs.HasErrors() {
		c.renderForm(ctx, http.StatusBadRequest, question, form, errs)
		return
	}

	if _, err := c.questionService.Update(ctx.Request.Context(), id, userID, form, formFile(ctx, "image")); err != nil {
		if fe, ok := fieldErrors(err); ok {
			c.renderForm(ctx, http.StatusBadRequest, question, form, fe)
			return
		}
		if !c.refused(ctx, err, "You do not have permission to edit this question.", questionDetailPath(id)) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	ctx.Redirect(http.StatusFound, questionDetailPath(id))
}

// Delete removes an owned question and its answers
func (c *QuestionController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.questionService.Delete(ctx.Request.Context(), id, middleware.CurrentUserID(ctx)); err != nil {
		if !c.refused(ctx, err, "You do not have permission to delete this question.", questionDetailPath(id)) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	c.redirect(ctx, session.FlashSuccess, "The question was deleted.", QuestionListPath)
}

func (c *QuestionController) renderForm(ctx *gin.Context, status int, question *models.Question, form dto.QuestionForm, errs dto.FieldErrors) {
	title := "Ask a question"
	if question != nil {
		title = "Edit question"
	}
	data := gin.H{"Title": title, "Form": form}
	if question != nil {
		data["Question"] = question
	}
	if errs != nil {
		data["Errors"] = errs
	}
	c.render(ctx, status, "question_form.html", data)
}
