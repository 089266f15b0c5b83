package controllers

import (
	"net/http"
	"strings"
	"vihub/internal/models"
	"vihub/internal/providers"
	"vihub/internal/services"

	json "github.com/goccy/go-json"
)

type ReconciliationController struct {
	logger     providers.Logger
	patients   services.PatientServiceInterface
	reconciler services.ReconciliationServiceInterface
	cache      providers.CacheProviderInterface
}

type cardImport struct {
	CardNumber string `json:"cardNumber"`
}

func NewReconciliationController(
	logger providers.Logger,
	patients services.PatientServiceInterface,
	reconciler services.ReconciliationServiceInterface,
	cache providers.CacheProviderInterface,
) *ReconciliationController {
	return &ReconciliationController{
		logger:     logger,
		patients:   patients,
		reconciler: reconciler,
		cache:      cache,
	}
}

// serveFromCacheOrCompute caches successful results only.
func (rc *ReconciliationController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := rc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (rc *ReconciliationController) SearchBeneficiaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := models.SearchParams{
		Guarantor: strings.TrimSpace(q.Get("guarantor")),
		Modality:  q.Get("modality"),
		Proposal:  q.Get("proposal"),
		Contract:  q.Get("contract"),
	}
	key := strings.Join([]string{"search", strings.ToLower(params.Guarantor), params.Modality, params.Proposal, params.Contract}, ":")

	rc.serveFromCacheOrCompute(w, key, func() (any, error) {
		return rc.reconciler.SearchBeneficiaries(r.Context(), params)
	})
}

func (rc *ReconciliationController) ImportCard(w http.ResponseWriter, r *http.Request) {
	var body cardImport
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	draft, err := rc.reconciler.ImportFromCardSearch(r.Context(), body.CardNumber)
	if err != nil {
		rc.logger.Warnf(providers.TypeDirectory, "Import of card %s failed: %s", body.CardNumber, err)
		writeError(w, err)
		return
	}
	rc.create(w, draft)
}

func (rc *ReconciliationController) ImportBeneficiary(w http.ResponseWriter, r *http.Request) {
	var beneficiary models.Beneficiary
	if err := decodeBody(w, r, &beneficiary); err != nil {
		writeError(w, err)
		return
	}

	draft, err := rc.reconciler.ImportFromBeneficiary(r.Context(), beneficiary)
	if err != nil {
		writeError(w, err)
		return
	}
	rc.create(w, draft)
}

func (rc *ReconciliationController) create(w http.ResponseWriter, draft models.Patient) {
	created, err := rc.patients.Create(draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Sync refreshes one patient. A failed synchronize is reported in the body,
// not as an HTTP error.
func (rc *ReconciliationController) Sync(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	patient, err := rc.patients.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	result := rc.reconciler.SyncOne(r.Context(), patient)
	if result.Success {
		if _, err := rc.patients.ApplySyncResults([]models.SyncResult{result}); err != nil {
			writeError(w, err)
			return
		}
		if latest, err := rc.patients.Get(id); err == nil {
			result.UpdatedPatient = &latest
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (rc *ReconciliationController) SyncAll(w http.ResponseWriter, r *http.Request) {
	results, err := rc.reconciler.SyncAllAndPersist(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
