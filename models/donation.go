package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DonationType distinguishes monetary donations from blood-donor pledges
type DonationType string

// Donation types
const (
	DonationMoney DonationType = "money"
	DonationBlood DonationType = "blood"
)

// Donation holds the structure for the donations collection in mongo.
// NgoID is the NGO registration number, a string key rather than a
// database reference, matching what the portals send.
type Donation struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	NgoID         string             `json:"ngoId" bson:"ngoId"`
	DonorName     string             `json:"donorName" bson:"donorName"`
	DonorPhone    string             `json:"donorPhone" bson:"donorPhone"`
	Amount        float64            `json:"amount" bson:"amount"`
	Type          DonationType       `json:"type" bson:"type"`
	BloodGroup    string             `json:"bloodGroup,omitempty" bson:"bloodGroup,omitempty"`
	PaymentMethod string             `json:"paymentMethod" bson:"paymentMethod"`
	TransactionID string             `json:"transactionId" bson:"transactionId"`
	Status        string             `json:"status" bson:"status"`
	Timestamp     primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// Validate checks the donation payload
func (d Donation) Validate() error {
	if d.NgoID == "" {
		return &ValidationError{Field: "ngoId", Message: "ngoId is required"}
	}
	switch d.Type {
	case DonationMoney:
		if d.Amount <= 0 {
			return &ValidationError{Field: "amount", Message: "amount must be positive"}
		}
	case DonationBlood:
		if d.BloodGroup == "" {
			return &ValidationError{Field: "bloodGroup", Message: "bloodGroup is required for blood donations"}
		}
	default:
		return &ValidationError{Field: "type", Message: "type must be money or blood"}
	}
	return nil
}

// Withdrawal holds the structure for the withdrawals collection in mongo
type Withdrawal struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	NgoID       string             `json:"ngoId" bson:"ngoId"`
	Amount      float64            `json:"amount" bson:"amount"`
	Description string             `json:"description" bson:"description"`
	Status      string             `json:"status" bson:"status"`
	Date        primitive.DateTime `json:"date" bson:"date"`
}

// NgoBalance is the running-total document per NGO, maintained atomically so
// that totalReceived == totalRemaining + totalWithdrawn holds at all times.
type NgoBalance struct {
	NgoID          string  `json:"ngoId" bson:"_id"`
	TotalReceived  float64 `json:"totalreceived" bson:"totalreceived"`
	TotalRemaining float64 `json:"totalremaining" bson:"totalremaining"`
	TotalWithdrawn float64 `json:"totalwithdraw" bson:"totalwithdraw"`
}
