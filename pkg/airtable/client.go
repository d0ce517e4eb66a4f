// Package airtable is the client for the customer datastore.
package airtable

import (
	"context"
	"fmt"
	"time"

	"github.com/mehanizm/airtable"
	"github.com/sony/gobreaker"
	"github.com/tesseract-integrations/tesseract-api/internal/models"
	"github.com/tesseract-integrations/tesseract-api/pkg/circuitbreaker"
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
	"github.com/tesseract-integrations/tesseract-api/pkg/metrics"
	"github.com/tesseract-integrations/tesseract-api/pkg/retry"
	"go.uber.org/zap"
)

const CustomersTableName = "Customers"

// Client wraps the Airtable API with circuit breaker protection
type Client struct {
	client         *airtable.Client
	baseID         string
	tableName      string
	workOffline    bool
	circuitBreaker *gobreaker.CircuitBreaker
}

// NewClient creates a new Airtable client for the customer base
func NewClient(apiKey, baseID, tableName string, workOffline bool) (*Client, error) {
	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("airtable"))

	if tableName == "" {
		tableName = CustomersTableName
	}

	if workOffline {
		logger.Info("Airtable client initialized in offline mode")
		return &Client{
			baseID:         baseID,
			tableName:      tableName,
			workOffline:    true,
			circuitBreaker: cb,
		}, nil
	}

	if apiKey == "" {
		return nil, fmt.Errorf("empty API key provided")
	}
	if baseID == "" {
		return nil, fmt.Errorf("empty base ID provided")
	}

	client := airtable.NewClient(apiKey)

	logger.Info("Airtable client initialized",
		zap.String("base_id", baseID),
		zap.String("table", tableName))

	return &Client{
		client:         client,
		baseID:         baseID,
		tableName:      tableName,
		workOffline:    workOffline,
		circuitBreaker: cb,
	}, nil
}

// GetCustomerByGoogleID fetches a customer record by Google account ID.
// Returns (nil, nil) when no record matches.
func (c *Client) GetCustomerByGoogleID(ctx context.Context, googleID string) (*models.Customer, error) {
	return c.findCustomer(ctx, "getCustomerByGoogleID", fmt.Sprintf("{googleId} = '%s'", googleID))
}

// GetCustomerByEmail fetches a customer record by email address.
// Returns (nil, nil) when no record matches.
func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return c.findCustomer(ctx, "getCustomerByEmail", fmt.Sprintf("{email} = '%s'", email))
}

func (c *Client) findCustomer(ctx context.Context, operation, formula string) (*models.Customer, error) {
	if c.workOffline {
		return nil, nil
	}

	return circuitbreaker.ExecuteWithFallback(
		c.circuitBreaker,
		func() (*models.Customer, error) {
			return c.fetchCustomer(ctx, operation, formula)
		},
		func() (*models.Customer, error) {
			logger.Warn("Circuit breaker open for Airtable, treating customer as unknown")
			return nil, nil
		},
	)
}

func (c *Client) fetchCustomer(ctx context.Context, operation, formula string) (*models.Customer, error) {
	start := time.Now()

	retryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	records, err := retry.DoWithResult(retryCtx, retry.CustomerStoreConfig(), operation, func() (*airtable.Records, error) {
		table := c.client.GetTable(c.baseID, c.tableName)

		records, err := table.GetRecords().
			WithFilterFormula(formula).
			MaxRecords(1).
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to query customers: %w", err)
		}
		return records, nil
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.CustomerStoreRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.CustomerStoreRequestTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}

	metrics.CustomerStoreRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.CustomerStoreRequestTotal.WithLabelValues(operation, "success").Inc()

	if len(records.Records) == 0 {
		return nil, nil
	}

	return models.AirtableRecordToCustomer(records.Records[0]), nil
}

// CreateCustomer inserts a new customer record and returns it.
func (c *Client) CreateCustomer(ctx context.Context, data models.CustomerData) (*models.Customer, error) {
	if c.workOffline {
		logger.Info("Skipping customer creation in offline mode", zap.String("email", data.Email))
		return &models.Customer{ID: "rec_dev_test", CustomerData: data, LoginCount: 1, SubscriptionStatus: models.SubscriptionFree}, nil
	}

	start := time.Now()
	operation := "createCustomer"

	retryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var created *airtable.Record

	err := retry.Do(retryCtx, retry.CustomerStoreConfig(), operation, func() error {
		table := c.client.GetTable(c.baseID, c.tableName)

		records := &airtable.Records{
			Records: []*airtable.Record{
				{
					Fields: map[string]interface{}{
						"email":              data.Email,
						"name":               data.Name,
						"googleId":           data.GoogleID,
						"profilePicture":     data.ProfilePicture,
						"lastLoginAt":        time.Now().UTC().Format(time.RFC3339),
						"loginCount":         1,
						"subscriptionStatus": string(models.SubscriptionFree),
					},
				},
			},
		}

		createdRecords, err := table.AddRecords(records)
		if err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		if len(createdRecords.Records) == 0 {
			return fmt.Errorf("no record returned from Airtable")
		}

		created = createdRecords.Records[0]
		return nil
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.CustomerStoreRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.CustomerStoreRequestTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}

	metrics.CustomerStoreRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.CustomerStoreRequestTotal.WithLabelValues(operation, "success").Inc()

	return models.AirtableRecordToCustomer(created), nil
}

// UpdateCustomerLogin bumps login bookkeeping fields on an existing record
// and refreshes the name and picture in case they changed upstream.
func (c *Client) UpdateCustomerLogin(ctx context.Context, recordID string, loginCount int, data models.CustomerData) error {
	if c.workOffline {
		logger.Info("Skipping customer update in offline mode", zap.String("record_id", recordID))
		return nil
	}

	start := time.Now()
	operation := "updateCustomerLogin"

	retryCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := retry.Do(retryCtx, retry.CustomerStoreConfig(), operation, func() error {
		table := c.client.GetTable(c.baseID, c.tableName)

		records := &airtable.Records{
			Records: []*airtable.Record{
				{
					ID: recordID,
					Fields: map[string]interface{}{
						"lastLoginAt":    time.Now().UTC().Format(time.RFC3339),
						"loginCount":     loginCount,
						"name":           data.Name,
						"profilePicture": data.ProfilePicture,
					},
				},
			},
		}

		_, err := table.UpdateRecordsPartial(records)
		if err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		return nil
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.CustomerStoreRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.CustomerStoreRequestTotal.WithLabelValues(operation, "error").Inc()
		return err
	}

	metrics.CustomerStoreRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.CustomerStoreRequestTotal.WithLabelValues(operation, "success").Inc()

	return nil
}
