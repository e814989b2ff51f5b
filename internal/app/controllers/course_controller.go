package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oneday/onedayclass/internal/app/models"
	"github.com/oneday/onedayclass/internal/app/models/dto"
	"github.com/oneday/onedayclass/internal/app/services"
	"github.com/oneday/onedayclass/internal/middleware"
	"github.com/oneday/onedayclass/internal/pkg/apperrors"
	"github.com/oneday/onedayclass/internal/pkg/session"
)

// Course page locations
const (
	WorkspacePath       = "/course/workspace"
	CourseCreatePath    = "/course/create"
	PublishedCoursePath = WorkspacePath + "?tab=" + dto.TabCompleted
)

func courseManagePath(id int64) string {
	return fmt.Sprintf("/course/%d/manage", id)
}

// CourseController handles the course workspace, course management and uploaded images
type CourseController struct {
	pageController
	courseService *services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(sessions *session.Manager, courseService *services.CourseService) *CourseController {
	return &CourseController{
		pageController: pageController{sessions: sessions},
		courseService:  courseService,
	}
}

// Index sends /course to the workspace
func (c *CourseController) Index(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, WorkspacePath)
}

// Workspace renders one tab of the course list
func (c *CourseController) Workspace(ctx *gin.Context) {
	workspace, err := c.courseService.Workspace(ctx.Request.Context(), ctx.Query("tab"))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	c.render(ctx, http.StatusOK, "course_workspace.html", gin.H{"Title": "Classes", "Workspace": workspace})
}

// CreateForm renders the new-course form
func (c *CourseController) CreateForm(ctx *gin.Context) {
	c.renderCreate(ctx, http.StatusOK, dto.CourseCreateForm{}, nil)
}

// Create publishes a course with its primary image and up to four extra images
func (c *CourseController) Create(ctx *gin.Context) {
	var form dto.CourseCreateForm
	errs, ok := bindForm(ctx, &form)
	if !ok {
		return
	}
	for field, msg := range form.Check() {
		errs.Add(field, msg)
	}
	if errs.HasErrors() {
		c.renderCreate(ctx, http.StatusBadRequest, form, errs)
		return
	}

	_, err := c.courseService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), form,
		formFile(ctx, "image"), formFiles(ctx, "images"))
	if err != nil {
		if fe, ok := fieldErrors(err); ok {
			c.renderCreate(ctx, http.StatusBadRequest, form, fe)
			return
		}
		if apperrors.IsConflict(err) {
			c.redirect(ctx, session.FlashWarning, apperrors.Message(err, "That class ID already exists."), CourseCreatePath)
			return
		}
		middleware.HandleError(ctx, err)
		return
	}
	c.redirect(ctx, session.FlashSuccess, "Your class was published.", PublishedCoursePath)
}

func (c *CourseController) renderCreate(ctx *gin.Context, status int, form dto.CourseCreateForm, errs dto.FieldErrors) {
	data := gin.H{"Title": "New class", "Form": form}
	if errs != nil {
		data["Errors"] = errs
	}
	c.render(ctx, status, "course_create.html", data)
}

// Manage renders the edit page of a course the user created
func (c *CourseController) Manage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.courseService.GetForManage(ctx.Request.Context(), id, middleware.CurrentUserID(ctx))
	if err != nil {
		if !c.refused(ctx, err, "You can only manage classes you created.", WorkspacePath) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	c.renderEdit(ctx, http.StatusOK, course, nil)
}

// Edit applies field changes, image removals and new images in one submission
func (c *CourseController) Edit(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var form dto.CourseEditForm
	if _, ok := bindForm(ctx, &form); !ok {
		return
	}

	course, err := c.courseService.Update(ctx.Request.Context(), id, middleware.CurrentUserID(ctx), form, formFiles(ctx, "images"))
	if err != nil {
		if c.refused(ctx, err, "You can only manage classes you created.", WorkspacePath) {
			return
		}
		if fe, ok := fieldErrors(err); ok && course != nil {
			c.renderEdit(ctx, http.StatusBadRequest, course, fe)
			return
		}
		if apperrors.IsConflict(err) {
			c.redirect(ctx, session.FlashWarning, apperrors.Message(err, "That class ID already exists."), courseManagePath(id))
			return
		}
		middleware.HandleError(ctx, err)
		return
	}
	c.redirect(ctx, session.FlashSuccess, "The class was updated.", courseManagePath(course.ID))
}

func (c *CourseController) renderEdit(ctx *gin.Context, status int, course *models.Course, errs dto.FieldErrors) {
	data := gin.H{"Title": "Manage " + course.ClassID, "Course": course}
	if errs != nil {
		data["Errors"] = errs
	}
	c.render(ctx, status, "course_edit.html", data)
}

// Delete removes a course the user created, with its images
func (c *CourseController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.courseService.Delete(ctx.Request.Context(), id, middleware.CurrentUserID(ctx)); err != nil {
		if !c.refused(ctx, err, "You can only delete classes you created.", WorkspacePath) {
			middleware.HandleError(ctx, err)
		}
		return
	}
	c.redirect(ctx, session.FlashSuccess, "The class was deleted.", PublishedCoursePath)
}

// Upload streams a stored file by its path relative to the upload root
func (c *CourseController) Upload(ctx *gin.Context) {
	full, err := c.courseService.ResolveUpload(ctx.Param("filepath"))
	if err != nil {
		middleware.HandleError(ctx, err)
		return
	}
	ctx.File(full)
}
