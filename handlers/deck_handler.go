package handlers

import (
	"net/http"

	"github.com/ligadelmazo/backend/services"
)

const maxImageUploadSize = 5 << 20

type DeckHandler struct {
	deckService services.DeckService
}

func NewDeckHandler(deckService services.DeckService) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckService.List(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"mazos": decks})
}

func (h *DeckHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	deck, err := h.deckService.GetWithCards(r.Context(), id)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"mazo": deck})
}

func (h *DeckHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.deckService.ListSeries(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"series": series})
}

func (h *DeckHandler) ListGroupedBySeries(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.deckService.ListGroupedBySeries(r.Context())
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"series": grouped})
}

func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.DeckInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	deck, err := h.deckService.Create(r.Context(), input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{
		"message": "Mazo creado correctamente",
		"mazo":    deck,
	})
}

func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	var input services.DeckInput
	if err := readJSON(w, r, &input); err != nil {
		respondBadRequest(w)
		return
	}

	deck, err := h.deckService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"message": "Mazo actualizado correctamente",
		"mazo":    deck,
	})
}

// UploadImage expects a multipart form with the file under "imagen".
func (h *DeckHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "Imagen demasiado grande o formulario inválido")
		return
	}

	file, header, err := r.FormFile("imagen")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Se requiere un archivo en el campo \"imagen\"")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		respondError(w, http.StatusBadRequest, "Formato de imagen no soportado")
		return
	}

	url, err := h.deckService.UploadImage(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"message": "Imagen subida correctamente",
		"imagen":  url,
	})
}

func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		respondBadRequest(w)
		return
	}

	if err := h.deckService.Delete(r.Context(), id); err != nil {
		mapServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": "Mazo eliminado correctamente"})
}
