package handlers

import (
	"net/http"

	"github.com/ligadelmazo/backend/middleware"
	"github.com/ligadelmazo/backend/services"
)

type NewsHandler struct {
	newsService services.NewsService
}

func NewNewsHandler(newsService services.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", "1")
	limit := queryInt(r, "limit", "10")

	list, err := h.newsService.List(r.Context(), page, limit)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"noticias":   list.Items,
		"pagination": list.Pagination,
	})
}

func (h *NewsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	items, err := h.newsService.ListRecent(r.Context(), queryInt(r, "limit", "3"))
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"noticias": items})
}

func (h *NewsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	news, err := h.newsService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"noticia": news})
}

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.UserFromContext(r.Context())

	var input services.NewsInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	news, err := h.newsService.Create(r.Context(), claims.ID, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{
		"message": "Noticia creada correctamente",
		"noticia": news,
	})
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	var input services.NewsInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	news, err := h.newsService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"message": "Noticia actualizada correctamente",
		"noticia": news,
	})
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.newsService.Delete(r.Context(), id); err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "Noticia eliminada correctamente"})
}
