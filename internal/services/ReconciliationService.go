package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"vihub/internal/directory"
	"vihub/internal/models"
	"vihub/internal/providers"

	"golang.org/x/sync/errgroup"
)

type ReconciliationServiceInterface interface {
	SearchBeneficiaries(ctx context.Context, params models.SearchParams) ([]models.Beneficiary, error)
	ImportFromCardSearch(ctx context.Context, cardNumber string) (models.Patient, error)
	ImportFromBeneficiary(ctx context.Context, beneficiary models.Beneficiary) (models.Patient, error)
	SyncOne(ctx context.Context, patient models.Patient) models.SyncResult
	SyncAll(ctx context.Context, patients []models.Patient) []models.SyncResult
	SyncAllAndPersist(ctx context.Context) ([]models.SyncResult, error)
}

// ReconciliationService builds and refreshes patients from the benefits
// directory. It never mutates a patient in place and, except for
// SyncAllAndPersist, never writes to the store.
type ReconciliationService struct {
	directory directory.ClientInterface
	patients  PatientServiceInterface
	pacer     Pacer
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewReconciliationService(
	directory directory.ClientInterface,
	patients PatientServiceInterface,
	pacer Pacer,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) ReconciliationServiceInterface {
	return &ReconciliationService{
		directory: directory,
		patients:  patients,
		pacer:     pacer,
		logger:    logger,
		metrics:   metrics,
	}
}

func (rs *ReconciliationService) SearchBeneficiaries(ctx context.Context, params models.SearchParams) ([]models.Beneficiary, error) {
	return rs.directory.Search(ctx, params)
}

// ImportFromCardSearch resolves the card through the detail endpoint and
// returns an unsaved draft (ID 0).
func (rs *ReconciliationService) ImportFromCardSearch(ctx context.Context, cardNumber string) (models.Patient, error) {
	if strings.TrimSpace(cardNumber) == "" {
		return models.Patient{}, fmt.Errorf("%w: cardNumber", directory.ErrMissingRequiredField)
	}

	beneficiary, err := rs.directory.Detail(ctx, cardNumber)
	if err != nil {
		return models.Patient{}, fmt.Errorf("beneficiary detail for %s: %w", cardNumber, err)
	}
	return rs.ImportFromBeneficiary(ctx, beneficiary)
}

// ImportFromBeneficiary fetches biometrics for an already resolved
// beneficiary and returns an unsaved draft (ID 0). Missing biometrics do not
// fail the import.
func (rs *ReconciliationService) ImportFromBeneficiary(ctx context.Context, beneficiary models.Beneficiary) (models.Patient, error) {
	wallet := beneficiary.Wallet()

	var (
		fingerprints []models.Fingerprint
		facial       string
	)
	var wg sync.WaitGroup
	wg.Go(func() {
		fingerprints = rs.directory.Fingerprints(ctx, wallet)
	})
	wg.Go(func() {
		facial = rs.directory.Facial(ctx, wallet)
	})
	wg.Wait()

	draft := models.Patient{
		Name:              beneficiary.Name,
		Wallet:            wallet,
		FacialBiometric:   facial,
		DigitalBiometrics: models.DigitalBiometricsFrom(fingerprints),
		Imported:          true,
	}
	rs.logger.Infof(providers.TypeDirectory, "Prepared import of %s: %d fingerprints, facial=%t",
		wallet, len(draft.DigitalBiometrics), facial != "")
	return draft, nil
}

// SyncOne refreshes an imported patient. Detail, fingerprints and facial
// image are fetched concurrently and any failure fails the whole refresh.
func (rs *ReconciliationService) SyncOne(ctx context.Context, patient models.Patient) models.SyncResult {
	result := rs.syncOne(ctx, patient)
	rs.metrics.IncSyncResults(result.Success)
	return result
}

func (rs *ReconciliationService) syncOne(ctx context.Context, patient models.Patient) models.SyncResult {
	if !patient.Imported {
		return models.SyncResult{
			PatientID: patient.ID,
			Message:   fmt.Sprintf("patient %d was not imported from the directory", patient.ID),
		}
	}

	var (
		beneficiary  models.Beneficiary
		fingerprints []models.Fingerprint
		facial       string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		beneficiary, err = rs.directory.Detail(gctx, patient.Wallet)
		return err
	})
	g.Go(func() error {
		var err error
		fingerprints, err = rs.directory.FetchFingerprints(gctx, patient.Wallet)
		return err
	})
	g.Go(func() error {
		var err error
		facial, err = rs.directory.FetchFacial(gctx, patient.Wallet)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.SyncResult{
			PatientID: patient.ID,
			Message:   fmt.Sprintf("synchronize patient %d failed: %s", patient.ID, err),
		}
	}

	updated := patient.Refreshed(
		beneficiary.Name,
		beneficiary.CompleteCardNumber,
		facial,
		models.DigitalBiometricsFrom(fingerprints),
	)
	return models.SyncResult{
		PatientID:      patient.ID,
		Success:        true,
		Message:        fmt.Sprintf("patient %d synchronized with %d fingerprints", patient.ID, len(updated.DigitalBiometrics)),
		UpdatedPatient: &updated,
		SyncedWallet:   patient.Wallet,
	}
}

// SyncAll synchronizes imported patients one at a time, pacing successive
// calls. One failure never aborts the batch.
func (rs *ReconciliationService) SyncAll(ctx context.Context, patients []models.Patient) []models.SyncResult {
	imported := make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		if p.Imported {
			imported = append(imported, p)
		}
	}
	if len(imported) == 0 {
		return []models.SyncResult{{Message: "no imported patients to synchronize"}}
	}

	results := make([]models.SyncResult, 0, len(imported))
	for i, p := range imported {
		if i > 0 {
			if err := rs.pacer.Wait(ctx); err != nil {
				results = append(results, models.SyncResult{
					PatientID: p.ID,
					Message:   fmt.Sprintf("synchronize patient %d skipped: %s", p.ID, err),
				})
				continue
			}
		}

		r := rs.SyncOne(ctx, p)
		if r.Success {
			rs.logger.Infof(providers.TypeSync, "%s", r.Message)
		} else {
			rs.logger.Warnf(providers.TypeSync, "%s", r.Message)
		}
		results = append(results, r)
	}
	return results
}

// SyncAllAndPersist runs SyncAll over the current store contents and
// applies every successful result in a single write.
func (rs *ReconciliationService) SyncAllAndPersist(ctx context.Context) ([]models.SyncResult, error) {
	results := rs.SyncAll(ctx, rs.patients.LoadAll())

	applied, err := rs.patients.ApplySyncResults(results)
	if err != nil {
		return results, fmt.Errorf("persist synchronized patients: %w", err)
	}
	rs.logger.Infof(providers.TypeSync, "Batch synchronize finished: %d of %d applied", applied, len(results))
	return results, nil
}
