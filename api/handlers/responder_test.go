package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/durjog-prohori/durjog-prohori-api/api/handlers"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	mocksdb "github.com/durjog-prohori/durjog-prohori-api/databases/mocks"
	"github.com/durjog-prohori/durjog-prohori-api/models"
)

func TestResponder_ResponderByIDHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/responder/1234", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"responder_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	db = &mocksdb.DatabaseHelper{}

	u := handlers.Responder{
		DB: databases.NewResponderDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ResponderByIDHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestResponder_ResponderCreateHandlerValidationError(t *testing.T) {
	body := strings.NewReader(`{"username": "station7", "password": "secret", "name": "Station 7", "role": "admin"}`)
	req, err := http.NewRequest("POST", "/api/v1/responder/create-responder", body)
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.Responder{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ResponderCreateHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to validate responder", Error: "validation failed on role: role must be firefighter or ngo"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestResponder_ResponderCreateHandlerDuplicateUsername(t *testing.T) {
	body := strings.NewReader(`{"username": "station7", "password": "secret", "name": "Station 7", "role": "firefighter", "station": "Mirpur Fire Station"}`)
	req, err := http.NewRequest("POST", "/api/v1/responder/create-responder", body)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}

	conn.(*mocksdb.CollectionHelper).On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "responders").Return(conn)

	u := handlers.Responder{
		DB: databases.NewResponderDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ResponderCreateHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	assert.Contains(t, rr.Body.String(), "username already taken")
}

func TestResponder_ResponderCreateHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"username": "brac-relief", "password": "secret", "name": "BRAC Relief", "role": "ngo", "registration": "NGO-4521"}`)
	req, err := http.NewRequest("POST", "/api/v1/responder/create-responder", body)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	conn = &mocksdb.CollectionHelper{}

	conn.(*mocksdb.CollectionHelper).On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	conn.(*mocksdb.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "responders").Return(conn)

	u := handlers.Responder{
		DB: databases.NewResponderDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ResponderCreateHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	var got models.Responder
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, models.RoleNGO, got.Role)
	assert.Equal(t, models.ResponderActive, got.Status)
	// the password hash never leaves the server
	assert.NotContains(t, rr.Body.String(), "secret")
	assert.NotContains(t, rr.Body.String(), "password")
}
