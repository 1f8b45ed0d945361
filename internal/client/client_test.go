// internal/client/client_test.go
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencustoms/trade-portal/internal/config"
	"github.com/opencustoms/trade-portal/internal/models"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(config.UpstreamConfig{BaseURL: srv.URL, Timeout: 5})
	return c, srv
}

func TestSessionContextHeaders(t *testing.T) {
	var gotAuth, gotTin string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTin = r.Header.Get("X-Company-Tin")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 9})
	})
	defer srv.Close()

	sc := SessionContext{Token: "tok123", Tin: "12345678"}
	_, err := c.GetApplication(context.Background(), sc, 9)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "12345678", gotTin)
}

func TestCreateAndUpdatePaths(t *testing.T) {
	var paths []string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 41})
	})
	defer srv.Close()

	sc := SessionContext{Token: "t"}
	id, err := c.CreateApplication(context.Background(), sc, models.Record{"tin": "12345678"})
	require.NoError(t, err)
	assert.Equal(t, 41, id)

	// Update is a named POST operation, not PUT/PATCH.
	_, err = c.UpdateApplication(context.Background(), sc, 0, models.Record{})
	require.NoError(t, err)

	require.NoError(t, c.SubmitApplication(context.Background(), sc, 41))

	assert.Equal(t, []string{
		"POST /applications",
		"POST /applications/0/update",
		"POST /applications/41/submit",
	}, paths)
}

func TestUpstreamErrorMessagePassthrough(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "TPIN is not registered"})
	})
	defer srv.Close()

	_, err := c.CreateApplication(context.Background(), SessionContext{}, models.Record{})
	require.Error(t, err)
	assert.Equal(t, "TPIN is not registered", err.Error())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestUpstreamErrorGenericFallback(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway</html>"))
	})
	defer srv.Close()

	_, err := c.GetApplication(context.Background(), SessionContext{}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestUploadAttachmentMultipart(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("File")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "invoice.pdf", header.Filename)

		json.NewEncoder(w).Encode(UploadResult{AttachmentRecordID: 12, RelativePath: "docs/invoice.pdf"})
	})
	defer srv.Close()

	res, err := c.UploadAttachment(context.Background(), SessionContext{Token: "t"}, "invoice.pdf", "application/pdf", []byte("pdfdata"))
	require.NoError(t, err)
	assert.Equal(t, 12, res.AttachmentRecordID)
	assert.Equal(t, "docs/invoice.pdf", res.RelativePath)
}

func TestLookupAgent(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/agents", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AG007", body["agentCode"])

		json.NewEncoder(w).Encode(models.AgentInfo{
			AgentName:            "Border Logistics Ltd",
			AgentTpin:            "87654321",
			AgentTelephoneNumber: "0888123456",
		})
	})
	defer srv.Close()

	info, err := c.LookupAgent(context.Background(), SessionContext{}, "AG007")
	require.NoError(t, err)
	assert.Equal(t, "Border Logistics Ltd", info.AgentName)
	assert.Equal(t, "87654321", info.AgentTpin)
}

func TestReferenceLookups(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/attachment-types":
			json.NewEncoder(w).Encode([]models.AttachmentType{{ID: 1, Name: "Tax clearance", Required: true}})
		case "/districts":
			json.NewEncoder(w).Encode([]models.District{{ID: 3, Name: "Mzuzu"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	defer srv.Close()

	types, err := c.AttachmentTypes(context.Background(), SessionContext{})
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.True(t, types[0].Required)

	districts, err := c.Districts(context.Background(), SessionContext{})
	require.NoError(t, err)
	assert.Equal(t, "Mzuzu", districts[0].Name)
}
