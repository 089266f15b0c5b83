package models

import "errors"

// MaxDigitalBiometrics is the number of recognized finger labels.
const MaxDigitalBiometrics = 10

var ErrNotFound = errors.New("patient not found")

type DigitalBiometric struct {
	Finger string `json:"finger"`
	Data   string `json:"data"`
}

// Patient is a locally owned record. ID 0 means "not yet assigned".
type Patient struct {
	ID                uint32             `json:"id"`
	Name              string             `json:"name"`
	Wallet            string             `json:"wallet"`
	FacialBiometric   string             `json:"facialBiometric"`
	DigitalBiometrics []DigitalBiometric `json:"digitalBiometrics"`
	Imported          bool               `json:"imported"`
}

// Clone returns a copy that shares no slices with p.
func (p Patient) Clone() Patient {
	out := p
	if p.DigitalBiometrics != nil {
		out.DigitalBiometrics = make([]DigitalBiometric, len(p.DigitalBiometrics))
		copy(out.DigitalBiometrics, p.DigitalBiometrics)
	}
	return out
}

// WithoutEmptyBiometrics drops digital entries that carry no payload.
func (p Patient) WithoutEmptyBiometrics() Patient {
	out := p.Clone()
	out.DigitalBiometrics = FilterEmptyBiometrics(p.DigitalBiometrics)
	return out
}

// Refreshed applies the synchronize merge policy and returns a new value:
// the local name wins when set, a non-empty directory wallet replaces the
// local one, and both biometric fields are replaced unconditionally.
func (p Patient) Refreshed(directoryName, directoryWallet, facial string, digital []DigitalBiometric) Patient {
	out := p.Clone()
	if out.Name == "" {
		out.Name = directoryName
	}
	if directoryWallet != "" {
		out.Wallet = directoryWallet
	}
	out.FacialBiometric = facial
	out.DigitalBiometrics = FilterEmptyBiometrics(digital)
	return out
}

func FilterEmptyBiometrics(in []DigitalBiometric) []DigitalBiometric {
	out := make([]DigitalBiometric, 0, len(in))
	for _, d := range in {
		if d.Data == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SyncResult reports the outcome of one synchronize call. It is never stored.
type SyncResult struct {
	PatientID      uint32   `json:"patientId"`
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	UpdatedPatient *Patient `json:"updatedPatient,omitempty"`
	// SyncedWallet is the wallet the directory was queried with.
	SyncedWallet string `json:"-"`
}
