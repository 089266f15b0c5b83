package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"vihub/internal/models"
	"vihub/internal/structures"
	"vihub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(baseURL string, timeout time.Duration) Transport {
	conf := &structures.Config{
		Directory: structures.DirectoryConfig{
			BaseURL:           baseURL + "/",
			User:              "user",
			Password:          "secret",
			Clinic:            "CL1",
			ProviderCode:      "P9",
			HealthInsurerCode: "0001",
			Timeout:           timeout,
		},
	}
	return NewHTTPTransport(conf, &testutil.MockLogger{})
}

func TestHTTPTransport_SearchRequest(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"items":[{"name":"João","cardNumber":42}]}`))
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, time.Second)
	items, err := tr.Search(context.Background(), models.SearchParams{Guarantor: "joão", Modality: "7"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "João", items[0]["name"])

	require.NotNil(t, got)
	assert.Equal(t, searchPath, got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "joão", q.Get("guarantor"))
	assert.Equal(t, "true", q.Get("includeActive"))
	assert.Equal(t, "false", q.Get("includeInactive"))
	assert.Equal(t, "true", q.Get("includePending"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, searchExpand, q.Get("expand"))
	assert.Equal(t, "7", q.Get("modality"))
	assert.False(t, q.Has("proposal"))

	user, pass, ok := got.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "user", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestHTTPTransport_SearchMissingItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	items, err := newTestTransport(srv.URL, time.Second).Search(context.Background(), models.SearchParams{Guarantor: "x"})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHTTPTransport_DetailRequest(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"cardName":"Maria","healthInsurer":1}`))
	}))
	defer srv.Close()

	raw, err := newTestTransport(srv.URL, time.Second).Detail(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Maria", raw["cardName"])

	assert.Equal(t, beneficiaryPath+"42", got.URL.Path)
	assert.Equal(t, "P9", got.URL.Query().Get("provider"))
	assert.Equal(t, "0001", got.URL.Query().Get("providerHealthInsurer"))
	assert.Equal(t, "CL1", got.URL.Query().Get("clinic"))
	assert.Equal(t, "CL1", got.Header.Get(clinicHeader))
}

func TestHTTPTransport_FingerprintsRequest(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"items":[{"fingerCode":1,"biometry":"AAAA"}]}`))
	}))
	defer srv.Close()

	items, err := newTestTransport(srv.URL, time.Second).Fingerprints(context.Background(), "00010000000000042")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, beneficiaryPath+"00010000000000042/fingerPrints", path)
}

func TestHTTPTransport_FacialPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, beneficiaryPath+"00010000000000042/photo", r.URL.Path)
		_, _ = w.Write([]byte("  /9j/AAAA\n"))
	}))
	defer srv.Close()

	v, err := newTestTransport(srv.URL, time.Second).Facial(context.Background(), "00010000000000042")
	require.NoError(t, err)
	assert.Equal(t, "/9j/AAAA", v)
}

func TestHTTPTransport_FacialJSONWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"photo":"iVBORAAAA"}`))
	}))
	defer srv.Close()

	v, err := newTestTransport(srv.URL, time.Second).Facial(context.Background(), "w")
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "iVBORAAAA", m["photo"])
}

func TestHTTPTransport_StatusErrors(t *testing.T) {
	tests := []struct {
		status   int
		category Category
	}{
		{http.StatusNotFound, CategoryNotFound},
		{http.StatusUnauthorized, CategoryAuthentication},
		{http.StatusInternalServerError, CategoryOutage},
		{http.StatusGatewayTimeout, CategoryTimeout},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		_, err := newTestTransport(srv.URL, time.Second).Detail(context.Background(), "42")
		srv.Close()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRequestFailed)
		assert.Equal(t, tt.category, GetCategory(err))

		var re *RequestError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, tt.status, re.StatusCode)
	}
}

func TestHTTPTransport_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newTestTransport(srv.URL, time.Second).Detail(context.Background(), "42")
	assert.Equal(t, CategoryBadData, GetCategory(err))
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestTransport(srv.URL, 50*time.Millisecond).Fingerprints(context.Background(), "w")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestHTTPTransport_MissingBaseURLFailsAtRequest(t *testing.T) {
	tr := NewHTTPTransport(&structures.Config{}, &testutil.MockLogger{})
	_, err := tr.Detail(context.Background(), "42")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestHTTPTransport_CircuitOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		_, _ = tr.Detail(context.Background(), "42")
	}
	_, err := tr.Detail(context.Background(), "42")

	assert.Equal(t, CategoryCircuitOpen, GetCategory(err))
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, int32(5), hits.Load())
}

func TestHTTPTransport_CallerCancellationDoesNotCountTowardsCircuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/slow"):
			<-r.Context().Done()
		case strings.HasSuffix(r.URL.Path, "/fail"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`{"name":"ok"}`))
		}
	}))
	defer srv.Close()

	tr := newTestTransport(srv.URL, 5*time.Second)
	abandon := func() {
		ctx, cancel := context.WithCancel(context.Background())
		timer := time.AfterFunc(20*time.Millisecond, cancel)
		defer timer.Stop()
		defer cancel()
		_, err := tr.Detail(ctx, "slow")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	}

	for i := 0; i < 6; i++ {
		abandon()
	}
	_, err := tr.Detail(context.Background(), "ok")
	require.NoError(t, err)

	// cancellations neither trip nor reset the failure streak
	for i := 0; i < 4; i++ {
		_, _ = tr.Detail(context.Background(), "fail")
	}
	abandon()
	abandon()
	_, _ = tr.Detail(context.Background(), "fail")

	_, err = tr.Detail(context.Background(), "ok")
	assert.Equal(t, CategoryCircuitOpen, GetCategory(err))
}
