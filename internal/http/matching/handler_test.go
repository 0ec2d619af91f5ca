package matching_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	handler "github.com/MrJamesThe3rd/marketvest/internal/http/matching"
	"github.com/MrJamesThe3rd/marketvest/internal/matching"
)

func do(svc handler.Service, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/mappings", handler.NewHandler(svc).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	return rec
}

func TestHandler_Learn(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       string
		setupMock  func(svc *handler.MockService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "Created",
			body: `{"raw_pattern":"MV-7F3A","user_id":"` + userID.String() + `"}`,
			setupMock: func(svc *handler.MockService) {
				svc.EXPECT().Learn(gomock.Any(), "MV-7F3A", userID).
					Return(&matching.Mapping{ID: uuid.New(), RawPattern: "MV-7F3A", UserID: userID}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "Duplicate",
			body: `{"raw_pattern":"MV-7F3A","user_id":"` + userID.String() + `"}`,
			setupMock: func(svc *handler.MockService) {
				svc.EXPECT().Learn(gomock.Any(), "MV-7F3A", userID).Return(nil, matching.ErrDuplicatePattern)
			},
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE_PATTERN",
		},
		{
			name:       "Missing User",
			body:       `{"raw_pattern":"MV-7F3A"}`,
			setupMock:  func(svc *handler.MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "UNKNOWN_USER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := handler.NewMockService(ctrl)
			tt.setupMock(svc)

			rec := do(svc, http.MethodPost, "/mappings", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestHandler_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := handler.NewMockService(ctrl)
	userID := uuid.New()

	svc.EXPECT().Suggest(gomock.Any(), "TRF MV-7F3A ANA").Return(userID, true, nil)
	svc.EXPECT().Suggest(gomock.Any(), "TRF OUTRO").Return(uuid.Nil, false, nil)

	rec := do(svc, http.MethodGet, "/mappings/suggest?raw_description=TRF+MV-7F3A+ANA", "")
	assert.JSONEq(t, `{"raw_description":"TRF MV-7F3A ANA","user_id":"`+userID.String()+`"}`, rec.Body.String())

	rec = do(svc, http.MethodGet, "/mappings/suggest?raw_description=TRF+OUTRO", "")
	assert.JSONEq(t, `{"raw_description":"TRF OUTRO","user_id":null}`, rec.Body.String())

	rec = do(svc, http.MethodGet, "/mappings/suggest", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_Forget(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := handler.NewMockService(ctrl)
	id := uuid.New()
	svc.EXPECT().Forget(gomock.Any(), id).Return(nil)

	rec := do(svc, http.MethodDelete, "/mappings/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
