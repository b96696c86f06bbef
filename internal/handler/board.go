package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"projectly/internal/middleware"
	"projectly/internal/model"
	"projectly/internal/service"
)

type BoardHandler struct {
	boards *service.BoardService
	auth   *service.AuthService
}

func NewBoardHandler(boards *service.BoardService, auth *service.AuthService) *BoardHandler {
	return &BoardHandler{boards: boards, auth: auth}
}

// GET /projects/:id/boards/
func (h *BoardHandler) ListBoards(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	boards, err := h.boards.ListBoards(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(boards, model.NewBoardResponse))
}

// POST /projects/:id/boards/
func (h *BoardHandler) CreateBoard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.BoardRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.boards.CreateBoard(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewBoardResponse(*b))
}

// GET /projects/:id/board/
func (h *BoardHandler) DefaultBoard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.boards.DefaultBoard(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewBoardResponse(*b))
}

// GET /boards/:id/
func (h *BoardHandler) GetBoard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	b, err := h.boards.GetBoard(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewBoardResponse(*b))
}

// PUT /boards/:id/
func (h *BoardHandler) UpdateBoard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.BoardRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.boards.UpdateBoard(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewBoardResponse(*b))
}

// DELETE /boards/:id/
func (h *BoardHandler) DeleteBoard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.boards.DeleteBoard(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /boards/:id/lists/
func (h *BoardHandler) ListLists(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	lists, err := h.boards.ListLists(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(lists, model.NewBoardListResponse))
}

// POST /boards/:id/lists/
func (h *BoardHandler) CreateList(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.BoardListRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.boards.CreateList(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewBoardListResponse(*l))
}

// GET /lists/:id/
func (h *BoardHandler) GetList(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	l, err := h.boards.GetList(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewBoardListResponse(*l))
}

// PUT /lists/:id/
func (h *BoardHandler) UpdateList(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.BoardListRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.boards.UpdateList(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewBoardListResponse(*l))
}

// DELETE /lists/:id/
func (h *BoardHandler) DeleteList(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.boards.DeleteList(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /lists/:id/cards/
func (h *BoardHandler) ListCards(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	cards, err := h.boards.ListCards(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(cards, model.NewCardResponse))
}

// POST /lists/:id/cards/
func (h *BoardHandler) CreateCard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.CardRequest
	if !bindJSON(c, &req) {
		return
	}
	card, err := h.boards.CreateCard(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewCardResponse(*card))
}

// GET /cards/:id/
func (h *BoardHandler) GetCard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	card, err := h.boards.GetCard(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewCardResponse(*card))
}

// PUT, PATCH /cards/:id/
func (h *BoardHandler) UpdateCard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.CardRequest
	if !bindJSON(c, &req) {
		return
	}
	card, err := h.boards.UpdateCard(c.Request.Context(), caller(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewCardResponse(*card))
}

// DELETE /cards/:id/
func (h *BoardHandler) DeleteCard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.boards.DeleteCard(c.Request.Context(), caller(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/public/boards/:id/lists/
func (h *BoardHandler) PublicLists(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	lists, err := h.boards.PublicLists(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Render(lists, model.NewBoardListWithCards))
}

// POST /api/public/lists/:id/cards/
func (h *BoardHandler) PublicCreateCard(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req model.CardRequest
	if !bindJSON(c, &req) {
		return
	}
	creator, ok := middleware.UserID(c)
	if !ok {
		u, err := h.auth.FirstUser(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		creator = u.ID
	}
	card, err := h.boards.PublicCreateCard(c.Request.Context(), id, creator, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewCardResponse(*card))
}
