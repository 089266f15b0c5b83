package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importedPatient() Patient {
	return Patient{
		ID:              7,
		Name:            "Maria",
		Wallet:          "00010000000000042",
		FacialBiometric: "old-face",
		DigitalBiometrics: []DigitalBiometric{
			{Finger: "Polegar Direito", Data: "old"},
		},
		Imported: true,
	}
}

func TestPatient_Refreshed_LocalNameWins(t *testing.T) {
	p := importedPatient()
	out := p.Refreshed("Maria Souza", "", "face", nil)
	assert.Equal(t, "Maria", out.Name)
}

func TestPatient_Refreshed_EmptyNameTakesDirectory(t *testing.T) {
	p := importedPatient()
	p.Name = ""
	out := p.Refreshed("Maria Souza", "", "face", nil)
	assert.Equal(t, "Maria Souza", out.Name)
}

func TestPatient_Refreshed_Wallet(t *testing.T) {
	p := importedPatient()
	assert.Equal(t, "00020000000000099", p.Refreshed("", "00020000000000099", "", nil).Wallet)
	assert.Equal(t, p.Wallet, p.Refreshed("", "", "", nil).Wallet)
}

func TestPatient_Refreshed_ReplacesBiometricsUnconditionally(t *testing.T) {
	p := importedPatient()
	out := p.Refreshed("", "", "", []DigitalBiometric{
		{Finger: "Mínimo Direito", Data: "new"},
		{Finger: "Médio Direito", Data: ""},
	})

	assert.Equal(t, "", out.FacialBiometric)
	require.Len(t, out.DigitalBiometrics, 1)
	assert.Equal(t, "new", out.DigitalBiometrics[0].Data)
}

func TestPatient_Refreshed_DoesNotMutateReceiver(t *testing.T) {
	p := importedPatient()
	_ = p.Refreshed("x", "y", "z", []DigitalBiometric{{Finger: "a", Data: "b"}})

	assert.Equal(t, importedPatient(), p)
}

func TestPatient_Clone_Independent(t *testing.T) {
	p := importedPatient()
	c := p.Clone()
	c.DigitalBiometrics[0].Data = "changed"
	assert.Equal(t, "old", p.DigitalBiometrics[0].Data)
}

func TestPatient_WithoutEmptyBiometrics(t *testing.T) {
	p := Patient{DigitalBiometrics: []DigitalBiometric{{Finger: "a", Data: ""}, {Finger: "b", Data: "x"}}}
	out := p.WithoutEmptyBiometrics()
	require.Len(t, out.DigitalBiometrics, 1)
	assert.Equal(t, "b", out.DigitalBiometrics[0].Finger)
	assert.Len(t, p.DigitalBiometrics, 2)
}

func TestBeneficiary_Wallet(t *testing.T) {
	assert.Equal(t, "canon", Beneficiary{CompleteCardNumber: "canon"}.Wallet())
	assert.Equal(t, "00010000000000042", Beneficiary{HealthInsurer: "1", CardNumber: "42"}.Wallet())
}
