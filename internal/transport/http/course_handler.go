package handlers

import (
	"net/http"

	"careermate/internal/application/usecase"
	"careermate/internal/domain"

	"github.com/gin-gonic/gin"
)

// CourseHandler serves enrollment, progress and quiz endpoints.
type CourseHandler struct {
	enrollment *usecase.EnrollmentUseCase
	progress   *usecase.ProgressUseCase
}

func NewCourseHandler(e *usecase.EnrollmentUseCase, p *usecase.ProgressUseCase) *CourseHandler {
	return &CourseHandler{enrollment: e, progress: p}
}

type courseReq struct {
	CourseID string `json:"courseId"`
}

// lesson ids and numeric fields arrive as either JSON strings or numbers
type saveProgressReq struct {
	CourseID     string `json:"courseId"`
	LastLessonID any    `json:"lastLessonId"`
	LastPosition any    `json:"lastPosition"`
}

type lessonReq struct {
	CourseID string `json:"courseId"`
	LessonID any    `json:"lessonId"`
}

type bookmarkReq struct {
	CourseID string `json:"courseId"`
	Note     any    `json:"note"`
	Position any    `json:"position"`
}

type quizReq struct {
	CourseID string `json:"courseId"`
	Score    any    `json:"score"`
	Total    any    `json:"total"`
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing courseId")
		return
	}

	courses, err := h.enrollment.Enroll(c, caller, req.CourseID)
	if err != nil {
		respondError(c, err, "Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Enrolled", "enrolledCourses": courses})
}

func (h *CourseHandler) Unenroll(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing courseId")
		return
	}

	if err := h.enrollment.Unenroll(c, caller.UserID, req.CourseID); err != nil {
		respondError(c, err, "Error during unenrollment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unenrolled successfully"})
}

func (h *CourseHandler) Enrolled(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	courses, err := h.enrollment.ListEnrolled(c, caller.UserID)
	if err != nil {
		respondError(c, err, "Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrolledCourses": courses})
}

// GetProgress answers {"progress": null} when nothing is recorded for the course.
func (h *CourseHandler) GetProgress(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}

	progress, err := h.progress.GetProgress(c, caller.UserID, c.Param("courseId"))
	if err != nil {
		respondError(c, err, "Error fetching progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (h *CourseHandler) SaveProgress(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req saveProgressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing courseId")
		return
	}

	lessonID, _ := domain.NormalizeLessonID(req.LastLessonID)
	progress, err := h.progress.SaveProgress(c, caller.UserID, req.CourseID, lessonID, domain.NumberOf(req.LastPosition))
	if err != nil {
		respondError(c, err, "Error saving progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Progress saved", "progress": progress})
}

func (h *CourseHandler) CompleteLesson(c *gin.Context) {
	caller, req, ok := h.bindLesson(c)
	if !ok {
		return
	}
	lessonID, _ := domain.NormalizeLessonID(req.LessonID)

	completed, err := h.progress.CompleteLesson(c, caller.UserID, req.CourseID, lessonID)
	if err != nil {
		respondError(c, err, "Error completing lesson")
		return
	}
	c.JSON(http.StatusOK, gin.H{"completedLessons": completed})
}

func (h *CourseHandler) UncompleteLesson(c *gin.Context) {
	caller, req, ok := h.bindLesson(c)
	if !ok {
		return
	}
	lessonID, _ := domain.NormalizeLessonID(req.LessonID)

	completed, err := h.progress.UncompleteLesson(c, caller.UserID, req.CourseID, lessonID)
	if err != nil {
		respondError(c, err, "Error updating lesson")
		return
	}
	c.JSON(http.StatusOK, gin.H{"completedLessons": completed})
}

func (h *CourseHandler) AddBookmark(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req bookmarkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing courseId")
		return
	}

	note, _ := domain.NormalizeLessonID(req.Note)
	bookmarks, err := h.progress.AddBookmark(c, caller.UserID, req.CourseID, note, domain.NumberOf(req.Position))
	if err != nil {
		respondError(c, err, "Error adding bookmark")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

func (h *CourseHandler) SubmitQuiz(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req quizReq
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == "" || req.Score == nil || req.Total == nil {
		badRequest(c, "Missing fields")
		return
	}

	quiz, err := h.progress.SubmitQuiz(c, caller.UserID, req.CourseID, domain.NumberOf(req.Score), domain.NumberOf(req.Total))
	if err != nil {
		respondError(c, err, "Error saving quiz")
		return
	}
	c.JSON(http.StatusOK, gin.H{"passed": quiz.Passed, "quiz": quiz})
}

func (h *CourseHandler) bindLesson(c *gin.Context) (domain.Identity, lessonReq, bool) {
	var req lessonReq
	caller, ok := requireIdentity(c)
	if !ok {
		return caller, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == "" || req.LessonID == nil {
		badRequest(c, "Missing fields")
		return caller, req, false
	}
	return caller, req, true
}
