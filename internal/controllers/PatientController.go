package controllers

import (
	"net/http"
	"vihub/internal/biometrics"
	"vihub/internal/models"
	"vihub/internal/providers"
	"vihub/internal/services"
)

type PatientController struct {
	logger  providers.Logger
	service services.PatientServiceInterface
}

type biometricEdit struct {
	ID     uint32 `json:"id"`
	Finger string `json:"finger"`
	Data   string `json:"data"`
}

type photoResponse struct {
	ID  uint32 `json:"id"`
	Src string `json:"src"`
}

func NewPatientController(logger providers.Logger, service services.PatientServiceInterface) *PatientController {
	return &PatientController{
		logger:  logger,
		service: service,
	}
}

func (pc *PatientController) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pc.service.LoadAll())
}

func (pc *PatientController) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.Patient
	if err := decodeBody(w, r, &draft); err != nil {
		writeError(w, err)
		return
	}
	draft.ID = 0

	created, err := pc.service.Create(draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (pc *PatientController) Update(w http.ResponseWriter, r *http.Request) {
	var patient models.Patient
	if err := decodeBody(w, r, &patient); err != nil {
		writeError(w, err)
		return
	}

	if err := pc.service.Update(patient); err != nil {
		writeError(w, err)
		return
	}
	updated, err := pc.service.Get(patient.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (pc *PatientController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := pc.service.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Photo returns the facial payload as an embeddable data URI.
func (pc *PatientController) Photo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := pc.service.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, photoResponse{ID: p.ID, Src: biometrics.InferImageSrc(p.FacialBiometric)})
}

func (pc *PatientController) EditBiometric(w http.ResponseWriter, r *http.Request) {
	var edit biometricEdit
	if err := decodeBody(w, r, &edit); err != nil {
		writeError(w, err)
		return
	}

	p, err := pc.service.SetBiometric(edit.ID, edit.Finger, edit.Data)
	if err != nil {
		pc.logger.Warnf(providers.TypePost, "Biometric edit of patient %d rejected: %s", edit.ID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
