package controller

import (
	"studybot_backend/internal/service"
	"studybot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

func (c *QuizController) ListSubjects(ctx *gin.Context) {
	util.Success(ctx, c.QuizService.Subjects())
}

type StartQuizRequest struct {
	Subject string `json:"subject" binding:"required"`
}

func (c *QuizController) StartQuiz(ctx *gin.Context) {
	var req StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.QuizService.StartQuiz(ctx.Param("id"), req.Subject)
	if err == util.ErrQuizSubjectUnknown {
		util.NotFound(ctx, err.Error())
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

func (c *QuizController) CurrentQuestion(ctx *gin.Context) {
	view, err := c.QuizService.CurrentQuestion(ctx.Param("id"))
	switch err {
	case nil:
		util.Success(ctx, view)
	case util.ErrNoActiveQuiz, util.ErrQuizFinished:
		util.NotFound(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

type SubmitAnswerRequest struct {
	Option *int `json:"option" binding:"required"`
}

func (c *QuizController) SubmitAnswer(ctx *gin.Context) {
	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	result, err := c.QuizService.SubmitAnswer(ctx.Param("id"), *req.Option)
	switch err {
	case nil:
		util.Success(ctx, result)
	case util.ErrNoActiveQuiz, util.ErrQuizFinished:
		util.NotFound(ctx, err.Error())
	case util.ErrBadOption:
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
