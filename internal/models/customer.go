package models

import "github.com/mehanizm/airtable"

// SubscriptionStatus is the customer's plan in the customer store
type SubscriptionStatus string

const (
	SubscriptionFree    SubscriptionStatus = "free"
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionPremium SubscriptionStatus = "premium"
)

// CustomerData is the profile captured from an OAuth sign-in
type CustomerData struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	GoogleID       string `json:"googleId"`
	ProfilePicture string `json:"profilePicture"`
}

// Customer is a full record from the customer store
type Customer struct {
	CustomerData
	ID                 string             `json:"id"`
	CreatedAt          string             `json:"createdAt"`
	LastLoginAt        string             `json:"lastLoginAt"`
	LoginCount         int                `json:"loginCount"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
}

// AirtableRecordToCustomer maps a raw Airtable record onto a Customer
func AirtableRecordToCustomer(record *airtable.Record) *Customer {
	c := &Customer{
		ID:                 record.ID,
		SubscriptionStatus: SubscriptionFree,
	}

	c.Email = stringField(record, "email")
	c.Name = stringField(record, "name")
	c.GoogleID = stringField(record, "googleId")
	c.ProfilePicture = stringField(record, "profilePicture")
	c.CreatedAt = stringField(record, "createdAt")
	c.LastLoginAt = stringField(record, "lastLoginAt")

	if v, ok := record.Fields["loginCount"].(float64); ok {
		c.LoginCount = int(v)
	}
	if v := stringField(record, "subscriptionStatus"); v != "" {
		c.SubscriptionStatus = SubscriptionStatus(v)
	}

	return c
}

func stringField(record *airtable.Record, name string) string {
	if v, ok := record.Fields[name].(string); ok {
		return v
	}
	return ""
}
