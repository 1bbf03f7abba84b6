package handlers

import (
	"net/http"

	"careermate/internal/application/usecase"
	"careermate/internal/domain"

	"github.com/gin-gonic/gin"
)

type CertificateHandler struct {
	certs *usecase.CertificateUseCase
}

func NewCertificateHandler(certs *usecase.CertificateUseCase) *CertificateHandler {
	return &CertificateHandler{certs: certs}
}

type issueReq struct {
	CourseID string `json:"courseId"`
	Score    any    `json:"score"`
	Total    any    `json:"total"`
}

func (h *CertificateHandler) Issue(c *gin.Context) {
	caller, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req issueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing courseId")
		return
	}

	issue := usecase.IssueRequest{CourseID: req.CourseID}
	if req.Score != nil && req.Total != nil {
		score, total := domain.NumberOf(req.Score), domain.NumberOf(req.Total)
		issue.Score, issue.Total = &score, &total
	}

	cert, err := h.certs.Issue(c, caller, issue)
	if err != nil {
		respondError(c, err, "Error issuing certificate")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": cert.Code, "certificate": cert})
}

func (h *CertificateHandler) Lookup(c *gin.Context) {
	cert, err := h.certs.Lookup(c, c.Param("code"))
	if err != nil {
		respondError(c, err, "Error fetching certificate")
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificate": cert})
}
