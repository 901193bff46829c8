package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"signal-agent/internal/types"
)

type actResponse struct {
	Action     types.Action      `json:"action"`
	Reasoning  string            `json:"reasoning"`
	Confidence float64           `json:"confidence"`
	Metrics    types.Observation `json:"metrics"`
}

// stepRequest accepts the action as a name ("Buy") or a numeric code (1).
type stepRequest struct {
	Symbol string   `json:"symbol"`
	Action any      `json:"action"`
	Price  *float64 `json:"price"`
}

type resetRequest struct {
	Symbol string `json:"symbol"`
}

type resetResponse struct {
	Observation types.Observation `json:"observation"`
	Account     types.Account     `json:"account"`
}

// bindJSON decodes an optional JSON body. An empty body leaves v untouched;
// anything undecodable is answered with 422.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

func (s *Server) handleAct(c *gin.Context) {
	var req types.ActRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := s.engine.Act(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, actResponse{
		Action:     d.Action,
		Reasoning:  d.Reasoning,
		Confidence: d.Confidence,
		Metrics:    d.Observation,
	})
}

func (s *Server) handleEvolve(c *gin.Context) {
	status, err := s.engine.Evolve(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (s *Server) handleStep(c *gin.Context) {
	var req stepRequest
	if !bindJSON(c, &req) {
		return
	}

	var action string
	switch v := req.Action.(type) {
	case string:
		action = v
	case float64:
		action = strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "action is required"})
		return
	default:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": fmt.Sprintf("action must be a string or number, got %T", v)})
		return
	}

	res, err := s.engine.Step(c.Request.Context(), types.StepRequest{
		Symbol: req.Symbol,
		Action: action,
		Price:  req.Price,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleReset(c *gin.Context) {
	var req resetRequest
	if !bindJSON(c, &req) {
		return
	}

	obs, acc, err := s.engine.Reset(c.Request.Context(), req.Symbol)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resetResponse{Observation: obs, Account: acc})
}

func (s *Server) handleAccount(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Account(c.Request.Context()))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.info.Version,
		"decider": s.info.Decider,
		"market_data": gin.H{
			"source":   s.info.Source,
			"exchange": s.info.Exchange,
			"fallback": s.info.Fallback,
		},
	})
}
