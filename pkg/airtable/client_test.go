package airtable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
)

func init() {
	_ = logger.Initialize(logger.Config{
		Level:       "error",
		Environment: "development",
	})
}

func TestNewClient_RequiresCredentialsWhenOnline(t *testing.T) {
	_, err := NewClient("", "appBase", "Customers", false)
	assert.ErrorContains(t, err, "API key")

	_, err = NewClient("key", "", "Customers", false)
	assert.ErrorContains(t, err, "base ID")
}

func TestNewClient_DefaultsTableName(t *testing.T) {
	client, err := NewClient("", "", "", true)
	assert.NoError(t, err)
	assert.Equal(t, CustomersTableName, client.tableName)
}

func TestClient_OfflineModeLookupsReturnUnknown(t *testing.T) {
	client, err := NewClient("", "", "Customers", true)
	assert.NoError(t, err)

	customer, err := client.GetCustomerByGoogleID(context.Background(), "g-1001")
	assert.NoError(t, err)
	assert.Nil(t, customer)

	customer, err = client.GetCustomerByEmail(context.Background(), "ada@example.com")
	assert.NoError(t, err)
	assert.Nil(t, customer)
}

func TestClient_OfflineModeCreateReturnsStubRecord(t *testing.T) {
	client, err := NewClient("", "", "Customers", true)
	assert.NoError(t, err)

	data := models.CustomerData{
		Email:    "ada@example.com",
		Name:     "Ada Lovelace",
		GoogleID: "g-1001",
	}
	customer, err := client.CreateCustomer(context.Background(), data)
	assert.NoError(t, err)
	assert.Equal(t, "rec_dev_test", customer.ID)
	assert.Equal(t, 1, customer.LoginCount)
	assert.Equal(t, models.SubscriptionFree, customer.SubscriptionStatus)

	assert.NoError(t, client.UpdateCustomerLogin(context.Background(), customer.ID, 2, data))
}
