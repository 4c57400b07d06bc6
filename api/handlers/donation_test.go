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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/durjog-prohori/durjog-prohori-api/api/handlers"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	mocksdb "github.com/durjog-prohori/durjog-prohori-api/databases/mocks"
	"github.com/durjog-prohori/durjog-prohori-api/models"
)

func TestDonation_CreateDonationHandlerValidationError(t *testing.T) {
	body := strings.NewReader(`{"ngoId": "ngo-1", "type": "money", "amount": 0}`)
	req, err := http.NewRequest("POST", "/api/v1/donations/create", body)
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.Donation{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateDonationHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to validate donation", Error: "validation failed on amount: amount must be positive"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestDonation_CreateDonationHandlerMoneyCreditsBalance(t *testing.T) {
	body := strings.NewReader(`{"ngoId": "ngo-1", "type": "money", "amount": 2500, "donorName": "Anika"}`)
	req, err := http.NewRequest("POST", "/api/v1/donations/create", body)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var donationConn databases.CollectionHelper
	var balanceConn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	donationConn = &mocksdb.CollectionHelper{}
	balanceConn = &mocksdb.CollectionHelper{}

	donationConn.(*mocksdb.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)
	balanceConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "donations").Return(donationConn)
	db.(*mocksdb.DatabaseHelper).On("Collection", "ngo_balances").Return(balanceConn)

	u := handlers.Donation{
		DDB: databases.NewDonationDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateDonationHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	var got models.Donation
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "received", got.Status)
	assert.Equal(t, 2500.0, got.Amount)

	balanceConn.(*mocksdb.CollectionHelper).AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDonation_WithdrawHandlerInsufficientFunds(t *testing.T) {
	body := strings.NewReader(`{"ngoId": "ngo-1", "amount": 5000, "description": "flood relief supplies"}`)
	req, err := http.NewRequest("POST", "/api/v1/ngo-donations/withdraw", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var balanceConn databases.CollectionHelper
	var withdrawalConn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	balanceConn = &mocksdb.CollectionHelper{}
	withdrawalConn = &mocksdb.CollectionHelper{}

	var events []string
	var settleUpdate bson.M

	withdrawalConn.(*mocksdb.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil).Run(func(args mock.Arguments) {
		events = append(events, "record")
		w := args.Get(1).(models.Withdrawal)
		assert.Equal(t, "pending", w.Status)
	})
	withdrawalConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil).Run(func(args mock.Arguments) {
		events = append(events, "settle")
		settleUpdate = args.Get(2).(bson.M)
	})
	// the conditional debit matches nothing when totalremaining < amount
	balanceConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0}, nil).Run(func(args mock.Arguments) {
		events = append(events, "debit")
	})
	db.(*mocksdb.DatabaseHelper).On("Collection", "ngo_balances").Return(balanceConn)
	db.(*mocksdb.DatabaseHelper).On("Collection", "withdrawals").Return(withdrawalConn)

	u := handlers.Donation{
		DDB: databases.NewDonationDatabase(db),
		WDB: databases.NewWithdrawalDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.WithdrawHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "insufficient funds", Error: "withdrawal of 5000.00 exceeds remaining balance for ngo ngo-1"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}

	// the record lands before any funds move, and a rejected debit
	// settles it as failed rather than leaving it pending
	assert.Equal(t, []string{"record", "debit", "settle"}, events)
	assert.Equal(t, bson.M{"$set": bson.M{"status": "failed"}}, settleUpdate)
}

func TestDonation_WithdrawHandlerSuccess(t *testing.T) {
	body := strings.NewReader(`{"ngoId": "ngo-1", "amount": 1200, "description": "cyclone shelter repairs"}`)
	req, err := http.NewRequest("POST", "/api/v1/ngo-donations/withdraw", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var balanceConn databases.CollectionHelper
	var withdrawalConn databases.CollectionHelper

	db = &mocksdb.DatabaseHelper{}
	balanceConn = &mocksdb.CollectionHelper{}
	withdrawalConn = &mocksdb.CollectionHelper{}

	var settleUpdate bson.M

	withdrawalConn.(*mocksdb.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(&mocksdb.InsertOneResultHelper{}, nil)
	withdrawalConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil).Run(func(args mock.Arguments) {
		settleUpdate = args.Get(2).(bson.M)
	})
	balanceConn.(*mocksdb.CollectionHelper).On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	db.(*mocksdb.DatabaseHelper).On("Collection", "ngo_balances").Return(balanceConn)
	db.(*mocksdb.DatabaseHelper).On("Collection", "withdrawals").Return(withdrawalConn)

	u := handlers.Donation{
		DDB: databases.NewDonationDatabase(db),
		WDB: databases.NewWithdrawalDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.WithdrawHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusCreated)
	}

	var got models.Withdrawal
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 1200.0, got.Amount)
	assert.Equal(t, bson.M{"$set": bson.M{"status": "completed"}}, settleUpdate)
}

func TestDonation_WithdrawHandlerNegativeAmount(t *testing.T) {
	body := strings.NewReader(`{"ngoId": "ngo-1", "amount": -50}`)
	req, err := http.NewRequest("POST", "/api/v1/ngo-donations/withdraw", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	u := handlers.Donation{}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.WithdrawHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to validate withdrawal", Error: "validation failed on amount: amount must be positive"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), expected)
	}
}

func TestDonation_BalanceHandlerNoDonationsYet(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/ngo-donations/balance/ngo-1", nil)
	if err != nil {
		t.Fatal(err)
	}

	req = mux.SetURLVars(req, map[string]string{"ngo_id": "ngo-1"})
	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var balanceConn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &mocksdb.DatabaseHelper{}
	balanceConn = &mocksdb.CollectionHelper{}
	singleResultHelper = &mocksdb.SingleResultHelper{}

	singleResultHelper.(*mocksdb.SingleResultHelper).On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	balanceConn.(*mocksdb.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*mocksdb.DatabaseHelper).On("Collection", "ngo_balances").Return(balanceConn)

	u := handlers.Donation{
		DDB: databases.NewDonationDatabase(db),
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.BalanceHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	var got models.NgoBalance
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "ngo-1", got.NgoID)
	assert.Equal(t, 0.0, got.TotalReceived)
	assert.Equal(t, 0.0, got.TotalRemaining)
	assert.Equal(t, 0.0, got.TotalWithdrawn)
}
