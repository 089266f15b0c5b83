package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"vihub/internal/models"
	"vihub/internal/providers"
	"vihub/internal/storage/interfaces"
	"vihub/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// patientRecord is the on-disk shape of a patient.
type patientRecord struct {
	ID                uint32            `json:"id"`
	Name              string            `json:"name"`
	Wallet            string            `json:"wallet"`
	FacialBiometric   string            `json:"facial_biometric"`
	DigitalBiometrics []biometricRecord `json:"digital_biometrics"`
	Imported          bool              `json:"imported"`
}

type biometricRecord struct {
	Finger string `json:"finger"`
	Data   string `json:"data"`
}

var (
	nameKeys     = []string{"name", "full_name", "fullName", "nome"}
	facialKeys   = []string{"facial_biometric", "facialBiometric"}
	digitalKeys  = []string{"digital_biometrics", "digitalBiometrics"}
	seedPatients = []models.Patient{
		{ID: 1, Name: "Ana Silva", Wallet: "9876543210123456", DigitalBiometrics: []models.DigitalBiometric{}},
		{ID: 2, Name: "Bruno Costa", Wallet: "1234567890654321", DigitalBiometrics: []models.DigitalBiometric{}},
	}
)

// FileManager is the durable patient store: one JSON document holding the
// whole list, optionally zstd compressed, replaced atomically on every write.
type FileManager struct {
	config     *structures.Config
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(config *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		config:     config,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *FileManager) SaveAll(patients []models.Patient) error {
	start := time.Now()
	defer func() { f.metrics.ObservePersistenceDuration(time.Since(start)) }()

	records := make([]patientRecord, 0, len(patients))
	for _, p := range patients {
		records = append(records, toRecord(p))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if f.config.Persistence.Compress {
		if data, err = f.compressor.Compress(data); err != nil {
			return err
		}
	}

	return writeAtomic(f.config.Persistence.FilePath, data)
}

// LoadAll reads the patient file. A missing file yields the seed patients
// (written back immediately) or an empty list when seeding is off.
func (f *FileManager) LoadAll() ([]models.Patient, error) {
	fileName := f.config.Persistence.FilePath
	data, err := os.ReadFile(fileName)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if !f.config.Persistence.Seed {
			return []models.Patient{}, nil
		}
		f.logger.Infof(providers.TypeApp, "Patient file %s not found, creating it with default patients", fileName)
		seed := make([]models.Patient, len(seedPatients))
		for i, p := range seedPatients {
			seed[i] = p.Clone()
		}
		if err := f.SaveAll(seed); err != nil {
			return nil, err
		}
		return seed, nil
	}

	if isCompressed(data) {
		if data, err = f.compressor.Decompress(data); err != nil {
			return nil, fmt.Errorf("decompress %s: %w", fileName, err)
		}
	}
	if len(data) == 0 {
		return []models.Patient{}, nil
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}

	patients := make([]models.Patient, 0, len(raw))
	for _, r := range raw {
		patients = append(patients, fromRaw(r))
	}
	return patients, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

func toRecord(p models.Patient) patientRecord {
	digital := make([]biometricRecord, 0, len(p.DigitalBiometrics))
	for _, d := range p.DigitalBiometrics {
		digital = append(digital, biometricRecord{Finger: d.Finger, Data: d.Data})
	}
	return patientRecord{
		ID:                p.ID,
		Name:              p.Name,
		Wallet:            p.Wallet,
		FacialBiometric:   p.FacialBiometric,
		DigitalBiometrics: digital,
		Imported:          p.Imported,
	}
}

// fromRaw accepts snake_case and camelCase keys. Missing fields take their
// zero value.
func fromRaw(r map[string]any) models.Patient {
	p := models.Patient{
		ID:                cast.ToUint32(r["id"]),
		Name:              stringAt(r, nameKeys...),
		Wallet:            cast.ToString(r["wallet"]),
		FacialBiometric:   stringAt(r, facialKeys...),
		DigitalBiometrics: []models.DigitalBiometric{},
		Imported:          cast.ToBool(r["imported"]),
	}
	for _, k := range digitalKeys {
		items, ok := r[k].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			m := cast.ToStringMapString(item)
			p.DigitalBiometrics = append(p.DigitalBiometrics, models.DigitalBiometric{Finger: m["finger"], Data: m["data"]})
		}
		break
	}
	return p.WithoutEmptyBiometrics()
}

func stringAt(r map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := cast.ToString(r[k]); v != "" {
			return v
		}
	}
	return ""
}

func writeAtomic(fileName string, data []byte) error {
	if dir := filepath.Dir(fileName); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}
