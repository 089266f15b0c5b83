package directory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"vihub/internal/models"
	"vihub/internal/providers"
	"vihub/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
)

const (
	searchPath      = "/dts/datasul-rest/resources/prg/hvp/v2/beneficiaries/subscriber"
	beneficiaryPath = "/dts/datasul-rest/resources/prg/portprest/v1/checkin/beneficiaries/"
	searchExpand    = "person,dependents,dependents.person,cancellationReason,dependents.cancellationReason"
	clinicHeader    = "x-totvs-hgp-portal-prestador-clinic"

	maxResponseSize = 32 << 20
	defaultTimeout  = 15 * time.Second
)

type itemsEnvelope struct {
	Items []map[string]any `json:"items"`
}

// HTTPTransport talks to the Datasul REST directory.
type HTTPTransport struct {
	conf    structures.DirectoryConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  providers.Logger
}

func NewHTTPTransport(conf *structures.Config, logger providers.Logger) Transport {
	timeout := conf.Directory.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	t := &HTTPTransport{
		conf:   conf.Directory,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
	t.conf.Timeout = timeout
	t.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "directory",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			switch GetCategory(err) {
			case CategoryNotFound, CategoryBadData:
				return true
			}
			return false
		},
		// A request abandoned by its caller says nothing about directory health.
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf(providers.TypeDirectory, "Circuit %s changed from %s to %s", name, from, to)
		},
	})
	return t
}

func (t *HTTPTransport) Search(ctx context.Context, params models.SearchParams) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("includeActive", "true")
	query.Set("includeInactive", "false")
	query.Set("includePending", "true")
	query.Set("guarantor", params.Guarantor)
	query.Set("page", "1")
	query.Set("expand", searchExpand)
	if params.Modality != "" {
		query.Set("modality", params.Modality)
	}
	if params.Proposal != "" {
		query.Set("proposal", params.Proposal)
	}
	if params.Contract != "" {
		query.Set("contract", params.Contract)
	}

	body, err := t.get(ctx, "search", searchPath, query, false)
	if err != nil {
		return nil, err
	}
	return decodeItems("search", body)
}

func (t *HTTPTransport) Detail(ctx context.Context, queryID string) (map[string]any, error) {
	body, err := t.get(ctx, "detail", beneficiaryPath+url.PathEscape(queryID), t.providerQuery(), true)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &RequestError{Op: "detail", Category: CategoryBadData, Err: err}
	}
	return raw, nil
}

func (t *HTTPTransport) Fingerprints(ctx context.Context, wallet string) ([]map[string]any, error) {
	body, err := t.get(ctx, "fingerprints", beneficiaryPath+url.PathEscape(wallet)+"/fingerPrints", t.providerQuery(), true)
	if err != nil {
		return nil, err
	}
	return decodeItems("fingerprints", body)
}

// Facial returns the photo body as a string, or the decoded JSON value when
// the directory wraps it.
func (t *HTTPTransport) Facial(ctx context.Context, wallet string) (any, error) {
	body, err := t.get(ctx, "facial", beneficiaryPath+url.PathEscape(wallet)+"/photo", t.providerQuery(), true)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '"') {
		var v any
		if err := json.Unmarshal(trimmed, &v); err == nil {
			return v, nil
		}
	}
	return string(trimmed), nil
}

func (t *HTTPTransport) providerQuery() url.Values {
	query := url.Values{}
	query.Set("provider", t.conf.ProviderCode)
	query.Set("providerHealthInsurer", t.conf.HealthInsurerCode)
	query.Set("clinic", t.conf.Clinic)
	return query
}

func (t *HTTPTransport) get(ctx context.Context, op, path string, query url.Values, withClinic bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.conf.Timeout)
	defer cancel()

	body, err := t.breaker.Execute(func() ([]byte, error) {
		return t.do(ctx, op, path, query, withClinic)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &RequestError{Op: op, Category: CategoryCircuitOpen, Err: err}
	}
	return body, err
}

func (t *HTTPTransport) do(ctx context.Context, op, path string, query url.Values, withClinic bool) ([]byte, error) {
	endpoint := strings.TrimRight(t.conf.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &RequestError{Op: op, Category: CategoryOutage, Err: err}
	}
	req.SetBasicAuth(t.conf.User, t.conf.Password)
	req.Header.Set("Accept", "application/json")
	if withClinic {
		req.Header.Set(clinicHeader, t.conf.Clinic)
	}

	t.logger.Debugf(providers.TypeDirectory, "GET %s", req.URL.Path)

	resp, err := t.client.Do(req)
	if err != nil {
		if callerCanceled(ctx, err) {
			return nil, &RequestError{Op: op, Category: CategoryOutage, Err: canceledErr(err)}
		}
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, &RequestError{Op: op, Category: CategoryTimeout, Err: err}
		}
		return nil, &RequestError{Op: op, Category: CategoryOutage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if callerCanceled(ctx, err) {
			return nil, &RequestError{Op: op, Category: CategoryOutage, Err: canceledErr(err)}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &RequestError{Op: op, Category: CategoryTimeout, Err: err}
		}
		return nil, &RequestError{Op: op, Category: CategoryOutage, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		t.logger.Warnf(providers.TypeDirectory, "%s failed: status=%d body=%.256s", op, resp.StatusCode, body)
		return nil, &RequestError{
			Op:         op,
			Category:   categoryForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return body, nil
}

func decodeItems(op string, body []byte) ([]map[string]any, error) {
	var env itemsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &RequestError{Op: op, Category: CategoryBadData, Err: err}
	}
	if env.Items == nil {
		return []map[string]any{}, nil
	}
	return env.Items, nil
}

func categoryForStatus(code int) Category {
	switch {
	case code == http.StatusNotFound:
		return CategoryNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return CategoryAuthentication
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return CategoryTimeout
	default:
		return CategoryOutage
	}
}

func callerCanceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

func canceledErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", context.Canceled, err)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
