package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"template-engine-service/models"
	"template-engine-service/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPlaceholderHandler builds a handler over the built-in catalog.
// The catalog is deterministic and in-memory, so tests run against the
// real engine instead of a mock.
func newTestPlaceholderHandler(t *testing.T) *PlaceholderHandler {
	t.Helper()
	engine := services.NewPlaceholderEngine(nil, 0, nil)
	return NewPlaceholderHandler(engine, nil)
}

func TestPlaceholderHandler_ParsePlaceholders(t *testing.T) {
	tests := []struct {
		name                 string
		body                 string
		expectedStatus       int
		expectedPlaceholders []string
	}{
		{
			name:                 "distinct placeholders in order of first appearance",
			body:                 `{"content":"Sehr geehrte/r @mieter.anrede @mieter.name, die Miete für @wohnung.adresse beträgt @wohnung.miete. Viele Grüße an @mieter.name"}`,
			expectedStatus:       http.StatusOK,
			expectedPlaceholders: []string{"@mieter.anrede", "@mieter.name", "@wohnung.adresse", "@wohnung.miete"},
		},
		{
			name:                 "empty content yields empty list",
			body:                 `{"content":""}`,
			expectedStatus:       http.StatusOK,
			expectedPlaceholders: []string{},
		},
		{
			name:                 "text without placeholders",
			body:                 `{"content":"Ein ganz normaler Satz ohne besondere Zeichen."}`,
			expectedStatus:       http.StatusOK,
			expectedPlaceholders: []string{},
		},
		{
			name:           "invalid request body",
			body:           `{"content":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			handler := newTestPlaceholderHandler(t)

			// Create request
			req := httptest.NewRequest("POST", "/api/v1/placeholders/parse", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			handler.ParsePlaceholders(w, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.ParsePlaceholdersResponse
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedPlaceholders, response.Placeholders)
				assert.Equal(t, len(tt.expectedPlaceholders), response.Count)
			}
		})
	}
}

func TestPlaceholderHandler_ValidatePlaceholders(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedValid  bool
		expectedErrors int
		expectedType   models.PlaceholderErrorType
	}{
		{
			name:           "known placeholders are valid",
			body:           `{"content":"Hallo @mieter.name, heute ist der @datum."}`,
			expectedStatus: http.StatusOK,
			expectedValid:  true,
			expectedErrors: 0,
		},
		{
			name:           "unknown placeholder is reported",
			body:           `{"content":"Hallo @nachbar.name!"}`,
			expectedStatus: http.StatusOK,
			expectedValid:  false,
			expectedErrors: 1,
			expectedType:   models.PlaceholderErrorUnknown,
		},
		{
			name:           "context requirements checked when contexts are supplied",
			body:           `{"content":"Die Miete beträgt @wohnung.miete.","available_context":["datum"]}`,
			expectedStatus: http.StatusOK,
			expectedValid:  false,
			expectedErrors: 1,
			expectedType:   models.PlaceholderErrorMissingContext,
		},
		{
			name:           "context requirements skipped when contexts are omitted",
			body:           `{"content":"Die Miete beträgt @wohnung.miete."}`,
			expectedStatus: http.StatusOK,
			expectedValid:  true,
			expectedErrors: 0,
		},
		{
			name:           "invalid request body",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			handler := newTestPlaceholderHandler(t)

			// Create request
			req := httptest.NewRequest("POST", "/api/v1/placeholders/validate", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			handler.ValidatePlaceholders(w, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.ValidatePlaceholdersResponse
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedValid, response.Valid)
				assert.Len(t, response.Errors, tt.expectedErrors)
				if tt.expectedErrors > 0 {
					assert.Equal(t, tt.expectedType, response.Errors[0].Type)
				}
			}
		})
	}
}

func TestPlaceholderHandler_Suggest(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedFirst  string
		expectedTotal  int
		checkTotal     bool
	}{
		{
			name:           "exact match ranks first",
			body:           `{"query":"@datum"}`,
			expectedStatus: http.StatusOK,
			expectedFirst:  "@datum",
		},
		{
			name:           "prefix query returns category entries first",
			body:           `{"query":"@mieter."}`,
			expectedStatus: http.StatusOK,
			expectedFirst:  "@mieter.name",
		},
		{
			name:           "max results caps the list",
			body:           `{"query":"@","max_results":3}`,
			expectedStatus: http.StatusOK,
			expectedTotal:  3,
			checkTotal:     true,
		},
		{
			name:           "query without leading at yields nothing",
			body:           `{"query":"mieter"}`,
			expectedStatus: http.StatusOK,
			expectedTotal:  0,
			checkTotal:     true,
		},
		{
			name:           "max results outside the window",
			body:           `{"query":"@datum","max_results":100}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid request body",
			body:           `{"query"`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			handler := newTestPlaceholderHandler(t)

			// Create request
			req := httptest.NewRequest("POST", "/api/v1/placeholders/suggest", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			handler.Suggest(w, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.SuggestResponse
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)
				assert.Equal(t, len(response.Suggestions), response.Total)
				if tt.checkTotal {
					assert.Equal(t, tt.expectedTotal, response.Total)
				}
				if tt.expectedFirst != "" {
					require.NotEmpty(t, response.Suggestions)
					assert.Equal(t, tt.expectedFirst, response.Suggestions[0].Placeholder.Key)
				}
			}
		})
	}
}

func TestPlaceholderHandler_CheckContext(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedValid  bool
		expectedErrors int
	}{
		{
			name:           "context satisfied",
			body:           `{"placeholders":["@mieter.name","@datum"],"available_context":["mieter"]}`,
			expectedStatus: http.StatusOK,
			expectedValid:  true,
			expectedErrors: 0,
		},
		{
			name:           "missing context reported",
			body:           `{"placeholders":["@wohnung.flaeche","@wohnung.miete"],"available_context":["mieter"]}`,
			expectedStatus: http.StatusOK,
			expectedValid:  false,
			expectedErrors: 2,
		},
		{
			name:           "unknown placeholders are ignored",
			body:           `{"placeholders":["@gibt.es.nicht"],"available_context":[]}`,
			expectedStatus: http.StatusOK,
			expectedValid:  true,
			expectedErrors: 0,
		},
		{
			name:           "invalid request body",
			body:           `[]`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			handler := newTestPlaceholderHandler(t)

			// Create request
			req := httptest.NewRequest("POST", "/api/v1/placeholders/context-check", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			handler.CheckContext(w, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.ContextCheckResponse
				err := json.Unmarshal(w.Body.Bytes(), &response)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedValid, response.Valid)
				assert.Len(t, response.Errors, tt.expectedErrors)
			}
		})
	}
}

func TestPlaceholderHandler_GetCatalog(t *testing.T) {
	tests := []struct {
		name             string
		query            string
		expectedCategory models.ContextType
		expectEmpty      bool
	}{
		{
			name: "full catalog",
		},
		{
			name:             "filtered by category",
			query:            "?category=wohnung",
			expectedCategory: models.ContextWohnung,
		},
		{
			name:        "unknown category yields empty list",
			query:       "?category=garage",
			expectEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			handler := newTestPlaceholderHandler(t)

			// Create request
			req := httptest.NewRequest("GET", "/api/v1/placeholders"+tt.query, nil)
			w := httptest.NewRecorder()

			// Execute
			handler.GetCatalog(w, req)

			// Assert
			assert.Equal(t, http.StatusOK, w.Code)

			var response models.CatalogResponse
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)
			assert.Equal(t, len(response.Placeholders), response.Total)

			if tt.expectEmpty {
				assert.Empty(t, response.Placeholders)
				return
			}

			assert.NotEmpty(t, response.Placeholders)
			if tt.expectedCategory != "" {
				for _, def := range response.Placeholders {
					assert.Equal(t, tt.expectedCategory, def.Category)
				}
			}
		})
	}
}

func TestPlaceholderHandler_GetPlaceholder(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		expectedStatus int
		expectedKey    string
	}{
		{
			name:           "lookup with at prefix",
			key:            "@datum",
			expectedStatus: http.StatusOK,
			expectedKey:    "@datum",
		},
		{
			name:           "lookup without at prefix",
			key:            "mieter.name",
			expectedStatus: http.StatusOK,
			expectedKey:    "@mieter.name",
		},
		{
			name:           "unknown placeholder",
			key:            "@gibt.es.nicht",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			handler := newTestPlaceholderHandler(t)

			// Create request
			req := httptest.NewRequest("GET", "/api/v1/placeholders/"+tt.key, nil)
			w := httptest.NewRecorder()

			// Setup mux vars
			req = mux.SetURLVars(req, map[string]string{"key": tt.key})

			// Execute
			handler.GetPlaceholder(w, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var def models.PlaceholderDefinition
				err := json.Unmarshal(w.Body.Bytes(), &def)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedKey, def.Key)
			}
		})
	}
}
