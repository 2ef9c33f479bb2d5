// Package handler exposes the story platform over HTTP.
package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storychain-server/internal/service"
	"storychain-server/pkg/authutils"
)

// StoryHandler handles HTTP requests for stories, turns, upvotes and
// comments.
type StoryHandler struct {
	storyService   service.StoryService
	turnService    service.TurnService
	upvoteService  service.UpvoteService
	commentService service.CommentService
	verifier       *authutils.JWTVerifier
	logger         *zap.Logger
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(
	storyService service.StoryService,
	turnService service.TurnService,
	upvoteService service.UpvoteService,
	commentService service.CommentService,
	verifier *authutils.JWTVerifier,
	logger *zap.Logger,
) *StoryHandler {
	return &StoryHandler{
		storyService:   storyService,
		turnService:    turnService,
		upvoteService:  upvoteService,
		commentService: commentService,
		verifier:       verifier,
		logger:         logger.Named("StoryHandler"),
	}
}

// RegisterRoutes attaches all routes to the router. Reads are public, writes
// require a verified token.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/stories", h.listStories)
		api.GET("/stories/newer", h.listNewerStories)
		api.GET("/stories/:story_id", h.getStory)
		api.GET("/stories/:story_id/turns", h.listTurns)
	}

	protected := router.Group("/api")
	protected.Use(h.AuthMiddleware())
	{
		protected.POST("/stories", h.createStory)
		protected.POST("/stories/:story_id/turns", h.addTurn)
		protected.POST("/stories/:story_id/comments", h.addComment)
		protected.POST("/turns/:turn_id/upvote", h.toggleUpvote)
	}
}
