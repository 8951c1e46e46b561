package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jax-labs/apexflow/errors"
	"github.com/jax-labs/apexflow/workflow"
)

// handleExecute runs a workflow posted as JSON and returns the full
// execution result. A run that fails inside the graph is still a successful
// API call; the outcome is carried in the result body.
func (s *Server) handleExecute(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("Unable to read request body."))
		return
	}

	wf, err := workflow.Parse(body)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordExecutionStart(c.Request.Context())
	}
	result := s.deps.Engine.Execute(c.Request.Context(), wf)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordExecutionEnd(c.Request.Context(), wf.ID, result.Success, result.Duration)
	}
	RespondOK(c, result)
}

// validateResponse is the body returned by the validate endpoint.
type validateResponse struct {
	Valid  bool             `json:"valid"`
	Issues []workflow.Issue `json:"issues"`
}

// handleValidate checks a posted workflow without executing it.
func (s *Server) handleValidate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput("Unable to read request body."))
		return
	}

	wf, err := workflow.Parse(body)
	if err != nil {
		RespondWithError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	issues := workflow.Validate(wf)
	valid := true
	for _, issue := range issues {
		if issue.Level == workflow.LevelError {
			valid = false
			break
		}
	}
	if issues == nil {
		issues = []workflow.Issue{}
	}
	c.JSON(http.StatusOK, DataResponse{Data: validateResponse{Valid: valid, Issues: issues}})
}
