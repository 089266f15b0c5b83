package directory

import (
	"context"
	"strings"
	"time"
	"vihub/internal/biometrics"
	"vihub/internal/models"
	"vihub/internal/providers"

	"github.com/spf13/cast"
)

var (
	searchNameKeys = []string{"name", "cardName", "fullName", "nome"}
	detailNameKeys = []string{"cardName", "name"}
)

type ClientInterface interface {
	Search(ctx context.Context, params models.SearchParams) ([]models.Beneficiary, error)
	Detail(ctx context.Context, cardNumber string) (models.Beneficiary, error)
	// Fingerprints and Facial degrade to empty results on request failure.
	Fingerprints(ctx context.Context, wallet string) []models.Fingerprint
	Facial(ctx context.Context, wallet string) string
	// FetchFingerprints and FetchFacial propagate request failures.
	FetchFingerprints(ctx context.Context, wallet string) ([]models.Fingerprint, error)
	FetchFacial(ctx context.Context, wallet string) (string, error)
}

// Client normalizes directory responses into models.Beneficiary and
// models.Fingerprint values.
type Client struct {
	transport Transport
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewClient(transport Transport, logger providers.Logger, metrics providers.MetricsProviderInterface) ClientInterface {
	return &Client{
		transport: transport,
		logger:    logger,
		metrics:   metrics,
	}
}

func (c *Client) Search(ctx context.Context, params models.SearchParams) ([]models.Beneficiary, error) {
	if strings.TrimSpace(params.Guarantor) == "" {
		return nil, missingField("guarantor")
	}

	start := time.Now()
	items, err := c.transport.Search(ctx, params)
	c.observe("search", start, err)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(params.Guarantor)
	result := make([]models.Beneficiary, 0, len(items))
	for _, raw := range items {
		b := normalizeSearchItem(raw)
		if matchesGuarantor(b, needle) {
			result = append(result, b)
		}
	}
	c.logger.Debugf(providers.TypeDirectory, "Search %q: %d of %d results kept", params.Guarantor, len(result), len(items))
	return result, nil
}

func (c *Client) Detail(ctx context.Context, cardNumber string) (models.Beneficiary, error) {
	start := time.Now()
	raw, err := c.transport.Detail(ctx, models.DirectoryQueryID(cardNumber))
	c.observe("detail", start, err)
	if err != nil {
		return models.Beneficiary{}, err
	}
	return normalizeDetail(raw), nil
}

func (c *Client) Fingerprints(ctx context.Context, wallet string) []models.Fingerprint {
	fps, err := c.FetchFingerprints(ctx, wallet)
	if err != nil {
		c.logger.Warnf(providers.TypeDirectory, "Fingerprints for %s unavailable: %s", wallet, err)
		return []models.Fingerprint{}
	}
	return fps
}

func (c *Client) Facial(ctx context.Context, wallet string) string {
	photo, err := c.FetchFacial(ctx, wallet)
	if err != nil {
		c.logger.Warnf(providers.TypeDirectory, "Facial image for %s unavailable: %s", wallet, err)
		return ""
	}
	return photo
}

func (c *Client) FetchFingerprints(ctx context.Context, wallet string) ([]models.Fingerprint, error) {
	start := time.Now()
	items, err := c.transport.Fingerprints(ctx, wallet)
	c.observe("fingerprints", start, err)
	if err != nil {
		return nil, err
	}

	result := make([]models.Fingerprint, 0, len(items))
	for _, raw := range items {
		result = append(result, normalizeFingerprint(raw))
	}
	return result, nil
}

func (c *Client) FetchFacial(ctx context.Context, wallet string) (string, error) {
	start := time.Now()
	raw, err := c.transport.Facial(ctx, wallet)
	c.observe("facial", start, err)
	if err != nil {
		return "", err
	}
	return biometrics.Sanitize(raw), nil
}

func (c *Client) observe(op string, start time.Time, err error) {
	c.metrics.ObserveDirectoryDuration(op, time.Since(start))
	outcome := "ok"
	if err != nil {
		outcome = string(GetCategory(err))
	}
	c.metrics.IncDirectoryRequests(op, outcome)
}

func normalizeSearchItem(raw map[string]any) models.Beneficiary {
	b := models.Beneficiary{
		Name:               firstNonEmpty(raw, searchNameKeys...),
		HealthInsurer:      cast.ToString(raw["healthInsurer"]),
		CardNumber:         cast.ToString(raw["cardNumber"]),
		CompleteCardNumber: cast.ToString(raw["completeCardNumber"]),
	}
	if b.CompleteCardNumber == "" && b.CardNumber != "" {
		b.CompleteCardNumber = models.CanonicalWallet(b.HealthInsurer, b.CardNumber)
	}
	return b
}

func normalizeDetail(raw map[string]any) models.Beneficiary {
	name := firstNonEmpty(raw, detailNameKeys...)
	if name == "" {
		name = cast.ToString(cast.ToStringMap(raw["person"])["name"])
	}

	b := models.Beneficiary{
		Name:               name,
		HealthInsurer:      models.PadHealthInsurer(cast.ToString(raw["healthInsurer"])),
		CardNumber:         cast.ToString(raw["cardNumber"]),
		CompleteCardNumber: cast.ToString(raw["completeCardNumber"]),
	}
	if b.CompleteCardNumber == "" && b.CardNumber != "" {
		b.CompleteCardNumber = models.CanonicalWallet(b.HealthInsurer, b.CardNumber)
	}
	return b
}

func normalizeFingerprint(raw map[string]any) models.Fingerprint {
	return models.Fingerprint{
		FingerCode: cast.ToInt(raw["fingerCode"]),
		Biometry:   biometrics.Sanitize(raw["biometry"]),
	}
}

func firstNonEmpty(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(cast.ToString(raw[k])); v != "" {
			return v
		}
	}
	return ""
}

func matchesGuarantor(b models.Beneficiary, needle string) bool {
	for _, field := range []string{b.Name, b.HealthInsurer, b.CardNumber, b.CompleteCardNumber} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
