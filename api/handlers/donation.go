package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/durjog-prohori/durjog-prohori-api/config"
	"github.com/durjog-prohori/durjog-prohori-api/databases"
	"github.com/durjog-prohori/durjog-prohori-api/models"
)

// Donation handles donation and withdrawal requests for NGO accounts
type Donation struct {
	DDB databases.DonationDatabase
	WDB databases.WithdrawalDatabase
}

// CreateDonationHandler records a donation. Money donations credit the
// NGO's running balance in the same request.
func (h Donation) CreateDonationHandler(w http.ResponseWriter, r *http.Request) {
	var donation models.Donation
	if err := json.NewDecoder(r.Body).Decode(&donation); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := donation.Validate(); err != nil {
		config.ErrorStatus("failed to validate donation", http.StatusBadRequest, w, err)
		return
	}

	donation.ID = primitive.NewObjectID()
	donation.Status = "received"
	donation.Timestamp = primitive.NewDateTimeFromTime(time.Now())

	if _, err := h.DDB.InsertOne(context.Background(), donation); err != nil {
		config.ErrorStatus("failed to create donation", http.StatusInternalServerError, w, err)
		return
	}

	if donation.Type == models.DonationMoney {
		if err := h.DDB.CreditBalance(context.Background(), donation.NgoID, donation.Amount); err != nil {
			config.ErrorStatus("failed to credit ngo balance", http.StatusInternalServerError, w, err)
			return
		}
	}

	b, err := json.Marshal(donation)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// DonationsByNgoIDHandler returns all donations recorded for an NGO
func (h Donation) DonationsByNgoIDHandler(w http.ResponseWriter, r *http.Request) {
	ngoID := mux.Vars(r)["ngo_id"]

	dbResp, err := h.DDB.Find(context.TODO(), bson.M{"ngoId": ngoID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get donations", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Donation{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// BloodDonorsHandler returns all blood-donor pledges
func (h Donation) BloodDonorsHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{"type": models.DonationBlood}
	if group := r.URL.Query().Get("bloodGroup"); group != "" {
		filter["bloodGroup"] = group
	}

	dbResp, err := h.DDB.Find(context.TODO(), filter)
	if err != nil {
		config.ErrorStatus("failed to get blood donors", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Donation{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type withdrawRequest struct {
	NgoID       string  `json:"ngoId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// WithdrawHandler debits the NGO's remaining balance and records the
// withdrawal. The debit is a single conditional write, so an overdraw or a
// concurrent withdrawal racing for the same funds is rejected rather than
// double-processed.
func (h Donation) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.NgoID == "" {
		config.ErrorStatus("failed to validate withdrawal", http.StatusBadRequest, w, &models.ValidationError{Field: "ngoId", Message: "ngoId is required"})
		return
	}
	if req.Amount <= 0 {
		config.ErrorStatus("failed to validate withdrawal", http.StatusBadRequest, w, &models.ValidationError{Field: "amount", Message: "amount must be positive"})
		return
	}

	// Record first, debit second. A debit with no record would move funds
	// invisibly; a pending record with no debit is reconcilable.
	withdrawal := models.Withdrawal{
		ID:          primitive.NewObjectID(),
		NgoID:       req.NgoID,
		Amount:      req.Amount,
		Description: req.Description,
		Status:      "pending",
		Date:        primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := h.WDB.InsertOne(context.Background(), withdrawal); err != nil {
		config.ErrorStatus("failed to record withdrawal", http.StatusInternalServerError, w, err)
		return
	}

	res, err := h.DDB.DebitBalance(context.Background(), req.NgoID, req.Amount)
	if err != nil {
		h.settleWithdrawal(withdrawal.ID, "failed")
		config.ErrorStatus("failed to debit ngo balance", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		h.settleWithdrawal(withdrawal.ID, "failed")
		config.ErrorStatus("insufficient funds", http.StatusConflict, w, &models.ConflictError{
			Message: fmt.Sprintf("withdrawal of %.2f exceeds remaining balance for ngo %s", req.Amount, req.NgoID),
		})
		return
	}

	h.settleWithdrawal(withdrawal.ID, "completed")
	withdrawal.Status = "completed"

	b, err := json.Marshal(withdrawal)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// settleWithdrawal moves a withdrawal record out of pending once the debit
// outcome is known. A record left pending means the settle write itself
// failed and is picked up by reconciliation.
func (h Donation) settleWithdrawal(id primitive.ObjectID, status string) {
	_, err := h.WDB.UpdateOne(context.Background(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		zap.S().Errorw("failed to settle withdrawal record", "withdrawalId", id.Hex(), "status", status, "error", err)
	}
}

// BalanceHandler returns the running totals for an NGO. An NGO with no
// recorded money donations has a zero balance rather than a missing one.
func (h Donation) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	ngoID := mux.Vars(r)["ngo_id"]

	balance, err := h.DDB.Balance(context.Background(), ngoID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			balance = &models.NgoBalance{NgoID: ngoID}
		} else {
			config.ErrorStatus("failed to get ngo balance", http.StatusInternalServerError, w, err)
			return
		}
	}

	b, err := json.Marshal(balance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
