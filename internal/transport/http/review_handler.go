package handlers

import (
	"fmt"
	"math"
	"net/http"

	"careermate/internal/application/usecase"
	"careermate/internal/domain"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *usecase.ReviewUseCase
}

func NewReviewHandler(reviews *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type reviewReq struct {
	CourseID string `json:"courseId"`
	Rating   any    `json:"rating"`
	Comment  any    `json:"comment"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil || req.CourseID == "" || req.Rating == nil {
		badRequest(c, "Missing fields")
		return
	}

	rating := domain.NumberOf(req.Rating)
	if rating != math.Trunc(rating) {
		respondError(c, domain.ValidateRating(0), "")
		return
	}
	comment, _ := domain.NormalizeLessonID(req.Comment)

	review, err := h.reviews.AddReview(c, caller, req.CourseID, int(rating), comment)
	if err != nil {
		respondError(c, err, "Error adding review")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review added", "review": review})
}

func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviews.ListReviews(c, c.Param("courseId"))
	if err != nil {
		respondError(c, err, "Error fetching reviews")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// Summary renders the average with one decimal, as a string.
func (h *ReviewHandler) Summary(c *gin.Context) {
	summary, err := h.reviews.Summary(c, c.Param("courseId"))
	if err != nil {
		respondError(c, err, "Error fetching summary")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"avg":   fmt.Sprintf("%.1f", summary.Average),
		"count": summary.Count,
	})
}
