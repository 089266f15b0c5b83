package services

import (
	"fmt"
	"sync"
	"vihub/internal/biometrics"
	"vihub/internal/models"
	"vihub/internal/providers"
)

// PersisterInterface is the durable store collaborator. Writes always
// replace the whole list.
type PersisterInterface interface {
	LoadAll() ([]models.Patient, error)
	SaveAll(patients []models.Patient) error
}

type PatientServiceInterface interface {
	Restore() error
	LoadAll() []models.Patient
	Get(id uint32) (models.Patient, error)
	Create(draft models.Patient) (models.Patient, error)
	Update(patient models.Patient) error
	Delete(id uint32) error
	ApplySyncResults(results []models.SyncResult) (int, error)
	SetBiometric(id uint32, finger, payload string) (models.Patient, error)
	Persist() error
}

// PatientService owns the authoritative patient list. Every mutation is
// followed by a whole-list write; there is no rollback if the write fails.
type PatientService struct {
	mu        sync.RWMutex
	patients  []models.Patient
	persister PersisterInterface
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewPatientService(persister PersisterInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PatientServiceInterface {
	return &PatientService{
		patients:  make([]models.Patient, 0),
		persister: persister,
		logger:    logger,
		metrics:   metrics,
	}
}

func (ps *PatientService) Restore() error {
	patients, err := ps.persister.LoadAll()
	if err != nil {
		return err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.patients = make([]models.Patient, 0, len(patients))
	for _, p := range patients {
		ps.patients = append(ps.patients, p.WithoutEmptyBiometrics())
	}
	ps.metrics.SetPatientsTotal(len(ps.patients))
	ps.logger.Infof(providers.TypeApp, "Restored %d patients", len(ps.patients))
	return nil
}

func (ps *PatientService) LoadAll() []models.Patient {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.snapshot()
}

func (ps *PatientService) Get(id uint32) (models.Patient, error) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	i := ps.indexOf(id)
	if i < 0 {
		return models.Patient{}, fmt.Errorf("%w: id %d", models.ErrNotFound, id)
	}
	return ps.patients[i].Clone(), nil
}

// Create assigns the next id (highest existing id + 1, starting at 1),
// appends the record and persists.
func (ps *PatientService) Create(draft models.Patient) (models.Patient, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p := draft.WithoutEmptyBiometrics()
	p.ID = ps.nextID()
	ps.patients = append(ps.patients, p)
	ps.logger.Infof(providers.TypePost, "Created patient %d (imported=%t)", p.ID, p.Imported)

	return p.Clone(), ps.persistLocked()
}

func (ps *PatientService) Update(patient models.Patient) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	i := ps.indexOf(patient.ID)
	if i < 0 || patient.ID == 0 {
		return fmt.Errorf("%w: id %d", models.ErrNotFound, patient.ID)
	}
	ps.patients[i] = patient.WithoutEmptyBiometrics()
	return ps.persistLocked()
}

func (ps *PatientService) Delete(id uint32) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	i := ps.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", models.ErrNotFound, id)
	}
	ps.patients = append(ps.patients[:i], ps.patients[i+1:]...)
	ps.logger.Infof(providers.TypePost, "Deleted patient %d", id)
	return ps.persistLocked()
}

// ApplySyncResults merges successful results into the current list and
// persists once. A result is skipped when its patient was deleted in the
// meantime, is no longer imported, or now carries a different wallet.
// The merge runs against the latest record, so edits made while the batch
// was running keep their name.
func (ps *PatientService) ApplySyncResults(results []models.SyncResult) (int, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	applied := 0
	for _, r := range results {
		if !r.Success || r.UpdatedPatient == nil {
			continue
		}
		upd := r.UpdatedPatient
		i := ps.indexOf(upd.ID)
		if i < 0 {
			ps.logger.Warnf(providers.TypeSync, "Patient %d disappeared before sync could be applied", upd.ID)
			continue
		}
		latest := ps.patients[i]
		if !latest.Imported {
			ps.logger.Warnf(providers.TypeSync, "Patient %d is no longer imported, sync result dropped", upd.ID)
			continue
		}
		if r.SyncedWallet != "" && latest.Wallet != r.SyncedWallet {
			ps.logger.Warnf(providers.TypeSync, "Patient %d wallet changed during sync, result dropped", upd.ID)
			continue
		}
		ps.patients[i] = ps.patients[i].Refreshed(upd.Name, upd.Wallet, upd.FacialBiometric, upd.DigitalBiometrics)
		applied++
	}

	if applied == 0 {
		return 0, nil
	}
	return applied, ps.persistLocked()
}

// SetBiometric replaces a hand-edited payload. An empty finger targets the
// facial image; an empty payload clears the target. Invalid payloads leave
// the record untouched.
func (ps *PatientService) SetBiometric(id uint32, finger, payload string) (models.Patient, error) {
	data, err := biometrics.ValidateEditable(payload)
	if err != nil {
		return models.Patient{}, err
	}
	if finger != "" && !models.IsFingerLabel(finger) {
		return models.Patient{}, fmt.Errorf("%w: unknown finger %q", biometrics.ErrInvalidPayload, finger)
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	i := ps.indexOf(id)
	if i < 0 {
		return models.Patient{}, fmt.Errorf("%w: id %d", models.ErrNotFound, id)
	}

	p := ps.patients[i].Clone()
	if finger == "" {
		p.FacialBiometric = data
	} else {
		p.DigitalBiometrics = replaceFinger(p.DigitalBiometrics, finger, data)
	}
	ps.patients[i] = p.WithoutEmptyBiometrics()
	ps.logger.Infof(providers.TypePost, "Edited biometric of patient %d (finger=%q)", id, finger)

	return ps.patients[i].Clone(), ps.persistLocked()
}

func replaceFinger(in []models.DigitalBiometric, finger, data string) []models.DigitalBiometric {
	for i, d := range in {
		if d.Finger == finger {
			in[i].Data = data
			return in
		}
	}
	return append(in, models.DigitalBiometric{Finger: finger, Data: data})
}

func (ps *PatientService) Persist() error {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.persistLocked()
}

// persistLocked must be called with ps.mu held.
func (ps *PatientService) persistLocked() error {
	ps.metrics.SetPatientsTotal(len(ps.patients))
	if err := ps.persister.SaveAll(ps.snapshot()); err != nil {
		ps.logger.Errorf(providers.TypeApp, "Error while persisting patients: %s", err)
		return err
	}
	return nil
}

func (ps *PatientService) snapshot() []models.Patient {
	out := make([]models.Patient, len(ps.patients))
	for i, p := range ps.patients {
		out[i] = p.Clone()
	}
	return out
}

func (ps *PatientService) indexOf(id uint32) int {
	for i, p := range ps.patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (ps *PatientService) nextID() uint32 {
	var highest uint32
	for _, p := range ps.patients {
		if p.ID > highest {
			highest = p.ID
		}
	}
	return highest + 1
}
