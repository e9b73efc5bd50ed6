package handlers

import (
	"net/http"

	"github.com/FedericoSorianox/TorneoBJJ/models"
	"github.com/FedericoSorianox/TorneoBJJ/services"
)

const maxPhotoBytes = 10 << 20 // 10MB

type AthleteHandler struct {
	athleteService services.AthleteService
}

func NewAthleteHandler(athleteService services.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: athleteService}
}

func (h *AthleteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var athlete models.Athlete
	if err := readJSON(w, r, &athlete); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.athleteService.Create(r.Context(), &athlete); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	athletes, err := h.athleteService.List(r.Context(), limit, offset)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athletes": athletes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)

	athletes, err := h.athleteService.Leaderboard(r.Context(), limit)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": athletes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var athlete models.Athlete
	if err := readJSON(w, r, &athlete); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	athlete.ID = id

	if err := h.athleteService.Update(r.Context(), &athlete); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.athleteService.UploadPhoto(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"photo_url": url}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.athleteService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
