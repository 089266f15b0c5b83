package models

// Beneficiary is the normalized shape of one directory search or detail
// result. It is consumed immediately to build or refresh a Patient.
type Beneficiary struct {
	Name               string `json:"name"`
	HealthInsurer      string `json:"healthInsurer"`
	CardNumber         string `json:"cardNumber"`
	CompleteCardNumber string `json:"completeCardNumber,omitempty"`
}

// Wallet returns the directory-supplied canonical identifier, or builds one
// from the insurer code and card number.
func (b Beneficiary) Wallet() string {
	if b.CompleteCardNumber != "" {
		return b.CompleteCardNumber
	}
	return CanonicalWallet(b.HealthInsurer, b.CardNumber)
}

type Fingerprint struct {
	FingerCode int    `json:"fingerCode"`
	Biometry   string `json:"biometry"`
}

// SearchParams filters a beneficiary search. Guarantor is required.
type SearchParams struct {
	Guarantor string `json:"guarantor"`
	Modality  string `json:"modality,omitempty"`
	Proposal  string `json:"proposal,omitempty"`
	Contract  string `json:"contract,omitempty"`
}
