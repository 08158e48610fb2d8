package family

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/familyhub/familyhub/internal/rest"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *mux.Router {
	service, _, _ := setupService(t)
	handler := NewHandler(service)
	r := mux.NewRouter()
	r.HandleFunc("/api/family/member", handler.ListMembers).Methods("GET")
	r.HandleFunc("/api/family/member", handler.CreateMember).Methods("POST")
	r.HandleFunc("/api/family/member/{memberUid}", handler.GetMember).Methods("GET")
	r.HandleFunc("/api/family/member/{memberUid}", handler.UpdateMember).Methods("PUT")
	r.HandleFunc("/api/family/member/{memberUid}", handler.DeleteMember).Methods("DELETE")
	r.HandleFunc("/api/family/member/{memberUid}/avatar", handler.UploadAvatar).Methods("PUT")
	r.HandleFunc("/api/family/member/{memberUid}/avatar", handler.GetAvatar).Methods("GET")
	return r
}

func serve(r *mux.Router, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func createMember(t *testing.T, r *mux.Router, body string) FamilyMemberDTO {
	rr := serve(r, httptest.NewRequest(http.MethodPost, "/api/family/member", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created FamilyMemberDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	return created
}

func TestHandler_CreateMember(t *testing.T) {

	t.Run("should create and list a member", func(t *testing.T) {
		// given
		r := setupRouter(t)

		// when
		created := createMember(t, r, `{"name":"Sarah","color":"#BFD7EA","role":"Child"}`)

		// then
		assert.Equal(t, "Sarah", created.Name)
		assert.Equal(t, "Child", created.Role)

		rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/family/member", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		var members []FamilyMemberDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&members))
		assert.Len(t, members, 1)
	})

	t.Run("should return validation errors as JSON", func(t *testing.T) {
		r := setupRouter(t)

		rr := serve(r, httptest.NewRequest(http.MethodPost, "/api/family/member", strings.NewReader(`{"name":"","color":"#fff"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var body rest.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Invalid family member", body.Error)
	})
}

func TestHandler_GetMember(t *testing.T) {
	r := setupRouter(t)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/api/family/member/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_UpdateAndDeleteMember(t *testing.T) {
	// given
	r := setupRouter(t)
	created := createMember(t, r, `{"name":"Sarah","color":"#BFD7EA"}`)

	// when
	rr := serve(r, httptest.NewRequest(http.MethodPut, "/api/family/member/"+created.Uid, strings.NewReader(`{"name":"Sara","color":"#7DCFB6"}`)))

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var updated FamilyMemberDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))
	assert.Equal(t, "Sara", updated.Name)

	rr = serve(r, httptest.NewRequest(http.MethodDelete, "/api/family/member/"+created.Uid, nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = serve(r, httptest.NewRequest(http.MethodGet, "/api/family/member/"+created.Uid, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_UploadAvatar(t *testing.T) {
	// given
	r := setupRouter(t)
	created := createMember(t, r, `{"name":"Sarah","color":"#BFD7EA"}`)
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("avatar", "sarah.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPut, "/api/family/member/"+created.Uid+"/avatar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	// when
	rr := serve(r, req)

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	rr = serve(r, httptest.NewRequest(http.MethodGet, "/api/family/member/"+created.Uid+"/avatar", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, rr.Body.Bytes())
}
